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

type TenderProvider interface {
	Get(ctx context.Context, tenderID string) (*storage.Tender, error)
	List(ctx context.Context, page storage.Page) ([]storage.Tender, int, error)
}

func List(log *slog.Logger, tenders TenderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tender.List"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, total, err := tenders.List(ctx, api.PageFromRequest(r))
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to list tenders",
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

func Details(log *slog.Logger, tenders TenderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tender.Details"

		tenderID := chi.URLParam(r, "tender_id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		t, err := tenders.Get(ctx, tenderID)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to get tender",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("tender_id", tenderID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.OK(w, r, http.StatusOK, t)
	}
}
