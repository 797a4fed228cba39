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

type AttendanceProvider interface {
	List(ctx context.Context, tenderID, from, to string) ([]storage.Attendance, error)
	Summary(ctx context.Context, tenderID, from, to string) ([]storage.AttendanceSummary, error)
}

// List serves attendance records of a tender between ?from and ?to (YYYY-MM-DD).
func List(log *slog.Logger, attendance AttendanceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.List"

		tenderID := chi.URLParam(r, "tender_id")
		q := r.URL.Query()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		records, err := attendance.List(ctx, tenderID, q.Get("from"), q.Get("to"))
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to list attendance",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("tender_id", tenderID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.List(w, r, len(records), records)
	}
}

func Summary(log *slog.Logger, attendance AttendanceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.Summary"

		tenderID := chi.URLParam(r, "tender_id")
		q := r.URL.Query()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		summary, err := attendance.Summary(ctx, tenderID, q.Get("from"), q.Get("to"))
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to summarize attendance",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("tender_id", tenderID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.List(w, r, len(summary), summary)
	}
}
