package update

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tender-backend/internal/lib/api"
	"tender-backend/internal/service/workforce"
	"tender-backend/internal/storage"
)

type WorkerUpdater interface {
	UpdateWorker(ctx context.Context, workerID string, in workforce.WorkerInput) (*storage.ContractWorker, error)
}

func Update(log *slog.Logger, workers WorkerUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.Update"

		workerID := chi.URLParam(r, "worker_id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("worker_id", workerID),
		)

		var in workforce.WorkerInput
		if err := api.Decode(r, &in); err != nil {
			log.Warn("failed to decode request body", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		worker, err := workers.UpdateWorker(ctx, workerID, in)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to update worker", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		api.OK(w, r, http.StatusOK, worker)
	}
}
