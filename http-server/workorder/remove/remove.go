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

type WorkOrderDeleter interface {
	Delete(ctx context.Context, requestID string) error
}

func Delete(log *slog.Logger, orders WorkOrderDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workorder.Delete"

		requestID := chi.URLParam(r, "request_id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := orders.Delete(ctx, requestID); err != nil {
			log.Log(ctx, api.Level(err), "failed to delete work order",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("work_order_id", requestID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		log.Info("work order deleted", slog.String("op", op), slog.String("work_order_id", requestID))

		api.OK(w, r, http.StatusOK, map[string]string{"requestId": requestID})
	}
}
