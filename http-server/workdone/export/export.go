package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tender-backend/internal/lib/api"
	exportsvc "tender-backend/internal/service/export"
)

type Exporter interface {
	ReportWorkbook(ctx context.Context, tenderID, workDoneID string) ([]byte, error)
	TenderRegister(ctx context.Context, tenderID string) ([]byte, error)
}

func Report(log *slog.Logger, exp Exporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workdone.export.Report"

		tenderID := chi.URLParam(r, "tender_id")
		workDoneID := chi.URLParam(r, "workDoneId")

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		b, err := exp.ReportWorkbook(ctx, tenderID, workDoneID)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to export work done",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("work_done_id", workDoneID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		attachment(w, fmt.Sprintf("%s_%s.xlsx", tenderID, workDoneID), b)
	}
}

func Register(log *slog.Logger, exp Exporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workdone.export.Register"

		tenderID := chi.URLParam(r, "tender_id")

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		b, err := exp.TenderRegister(ctx, tenderID)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to export work done register",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("tender_id", tenderID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		attachment(w, fmt.Sprintf("%s_work_done.xlsx", tenderID), b)
	}
}

func attachment(w http.ResponseWriter, filename string, b []byte) {
	w.Header().Set("Content-Type", exportsvc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
