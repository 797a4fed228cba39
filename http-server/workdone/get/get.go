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

type ReportProvider interface {
	ListReports(ctx context.Context, tenderID string) ([]storage.WorkDoneSummary, error)
	GetReport(ctx context.Context, tenderID, workDoneID string) (*storage.WorkDoneReport, error)
}

func List(log *slog.Logger, reports ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workdone.List"

		tenderID := chi.URLParam(r, "tender_id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := reports.ListReports(ctx, tenderID)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to list work done",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("tender_id", tenderID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.List(w, r, len(list), list)
	}
}

func Details(log *slog.Logger, reports ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workdone.Details"

		tenderID := chi.URLParam(r, "tender_id")
		workDoneID := chi.URLParam(r, "workDoneId")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report, err := reports.GetReport(ctx, tenderID, workDoneID)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to get work done",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("work_done_id", workDoneID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.OK(w, r, http.StatusOK, report)
	}
}
