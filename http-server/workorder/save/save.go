package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tender-backend/internal/lib/api"
	"tender-backend/internal/service/workorder"
	"tender-backend/internal/storage"
)

type WorkOrderCreator interface {
	Create(ctx context.Context, d workorder.Draft) (*storage.WorkOrder, error)
}

type QuotationAdder interface {
	AddQuotation(ctx context.Context, requestID string, q workorder.Quotation) (*storage.WorkOrder, error)
}

func Create(log *slog.Logger, orders WorkOrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workorder.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var draft workorder.Draft
		if err := api.Decode(r, &draft); err != nil {
			log.Warn("failed to decode request body", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		wo, err := orders.Create(ctx, draft)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to create work order", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		log.Info("work order created", slog.String("work_order_id", wo.RequestID))

		api.OK(w, r, http.StatusCreated, wo)
	}
}

// AddQuotation appends a vendor quotation to the work order in the path.
func AddQuotation(log *slog.Logger, orders QuotationAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workorder.AddQuotation"

		requestID := chi.URLParam(r, "request_id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("work_order_id", requestID),
		)

		var q workorder.Quotation
		if err := api.Decode(r, &q); err != nil {
			log.Warn("failed to decode request body", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		wo, err := orders.AddQuotation(ctx, requestID, q)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to add quotation", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		api.OK(w, r, http.StatusCreated, wo)
	}
}
