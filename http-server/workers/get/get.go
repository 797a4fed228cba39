package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tender-backend/internal/lib/api"
	"tender-backend/internal/storage"
)

type WorkerProvider interface {
	GetWorker(ctx context.Context, workerID string) (*storage.ContractWorker, error)
	ListWorkers(ctx context.Context, page storage.Page) ([]storage.ContractWorker, int, error)
}

func List(log *slog.Logger, workers WorkerProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.List"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, total, err := workers.ListWorkers(ctx, api.PageFromRequest(r))
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to list workers",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.List(w, r, total, list)
	}
}

func Details(log *slog.Logger, workers WorkerProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.Details"

		workerID := chi.URLParam(r, "worker_id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		worker, err := workers.GetWorker(ctx, workerID)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to get worker",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("worker_id", workerID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.OK(w, r, http.StatusOK, worker)
	}
}
