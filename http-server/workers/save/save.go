package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"tender-backend/internal/lib/api"
	"tender-backend/internal/service/workforce"
	"tender-backend/internal/storage"
)

type WorkerCreator interface {
	CreateWorker(ctx context.Context, in workforce.WorkerInput) (*storage.ContractWorker, error)
}

func Create(log *slog.Logger, workers WorkerCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var in workforce.WorkerInput
		if err := api.Decode(r, &in); err != nil {
			log.Warn("failed to decode request body", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		worker, err := workers.CreateWorker(ctx, in)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to create worker", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		log.Info("worker created", slog.String("worker_id", worker.WorkerID))

		api.OK(w, r, http.StatusCreated, worker)
	}
}
