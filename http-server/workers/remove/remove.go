package remove

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tender-backend/internal/lib/api"
)

type WorkerDeleter interface {
	DeleteWorker(ctx context.Context, workerID string) error
}

func Delete(log *slog.Logger, workers WorkerDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.Delete"

		workerID := chi.URLParam(r, "worker_id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := workers.DeleteWorker(ctx, workerID); err != nil {
			log.Log(ctx, api.Level(err), "failed to delete worker",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("worker_id", workerID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		log.Info("worker deleted", slog.String("op", op), slog.String("worker_id", workerID))

		api.OK(w, r, http.StatusOK, map[string]string{"worker_id": workerID})
	}
}
