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

type WorkOrderProvider interface {
	Get(ctx context.Context, requestID string) (*storage.WorkOrder, error)
	List(ctx context.Context, projectID string, page storage.Page) ([]storage.WorkOrder, int, error)
}

// List serves one page of a project's work orders; count is the total across pages.
func List(log *slog.Logger, orders WorkOrderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workorder.List"

		projectID := chi.URLParam(r, "project_id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, total, err := orders.List(ctx, projectID, api.PageFromRequest(r))
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to list work orders",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("project_id", projectID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.List(w, r, total, list)
	}
}

func Details(log *slog.Logger, orders WorkOrderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workorder.Details"

		requestID := chi.URLParam(r, "request_id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		wo, err := orders.Get(ctx, requestID)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to get work order",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("work_order_id", requestID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.OK(w, r, http.StatusOK, wo)
	}
}
