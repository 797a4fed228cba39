package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"tender-backend/internal/lib/api"
	"tender-backend/internal/service/tender"
	"tender-backend/internal/storage"
)

type TenderCreator interface {
	Create(ctx context.Context, d tender.Draft) (*storage.Tender, error)
}

func Create(log *slog.Logger, tenders TenderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tender.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var draft tender.Draft
		if err := api.Decode(r, &draft); err != nil {
			log.Warn("failed to decode request body", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		t, err := tenders.Create(ctx, draft)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to create tender", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		log.Info("tender created", slog.String("tender_id", t.TenderID))

		api.OK(w, r, http.StatusCreated, t)
	}
}
