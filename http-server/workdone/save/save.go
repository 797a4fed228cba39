package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"tender-backend/internal/lib/api"
	"tender-backend/internal/service/workdone"
	"tender-backend/internal/storage"
)

type WorkDoneRecorder interface {
	RecordWorkDone(ctx context.Context, d workdone.Draft) (*storage.WorkDoneReport, error)
}

// Create records a daily work-done report and deducts its materials from the work order.
func Create(log *slog.Logger, rec WorkDoneRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workdone.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var draft workdone.Draft
		if err := api.Decode(r, &draft); err != nil {
			log.Warn("failed to decode request body", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report, err := rec.RecordWorkDone(ctx, draft)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to record work done",
				slog.String("tender_id", draft.TenderID),
				slog.String("work_order_id", draft.WorkOrderID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		log.Info("work done recorded",
			slog.String("work_done_id", report.WorkDoneID),
			slog.Int("items", report.TotalWorkDone),
		)

		api.OK(w, r, http.StatusCreated, report)
	}
}
