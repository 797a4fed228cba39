package update

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

type WorkOrderUpdater interface {
	SelectVendor(ctx context.Context, requestID, vendorName string) (*storage.WorkOrder, error)
	UpdateStatus(ctx context.Context, requestID, status string) error
}

type VendorRequest struct {
	VendorName string `json:"vendorName"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

func SelectVendor(log *slog.Logger, orders WorkOrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workorder.SelectVendor"

		requestID := chi.URLParam(r, "request_id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("work_order_id", requestID),
		)

		var req VendorRequest
		if err := api.Decode(r, &req); err != nil {
			log.Warn("failed to decode request body", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		wo, err := orders.SelectVendor(ctx, requestID, req.VendorName)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to select vendor", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		log.Info("vendor selected", slog.String("vendor", wo.SelectedVendor))

		api.OK(w, r, http.StatusOK, wo)
	}
}

func UpdateStatus(log *slog.Logger, orders WorkOrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workorder.UpdateStatus"

		requestID := chi.URLParam(r, "request_id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("work_order_id", requestID),
		)

		var req StatusRequest
		if err := api.Decode(r, &req); err != nil {
			log.Warn("failed to decode request body", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := orders.UpdateStatus(ctx, requestID, req.Status); err != nil {
			log.Log(ctx, api.Level(err), "failed to update work order status", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		api.OK(w, r, http.StatusOK, req)
	}
}
