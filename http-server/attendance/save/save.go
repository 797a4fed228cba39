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

type AttendanceMarker interface {
	Mark(ctx context.Context, b workforce.Batch) ([]storage.Attendance, error)
}

// Mark upserts one day of attendance for a tender.
func Mark(log *slog.Logger, attendance AttendanceMarker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.Mark"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var batch workforce.Batch
		if err := api.Decode(r, &batch); err != nil {
			log.Warn("failed to decode request body", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		records, err := attendance.Mark(ctx, batch)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to mark attendance",
				slog.String("tender_id", batch.TenderID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.List(w, r, len(records), records)
	}
}
