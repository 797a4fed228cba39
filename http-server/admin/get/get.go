package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"tender-backend/internal/lib/api"
	"tender-backend/internal/storage"
)

type IDCodeProvider interface {
	ListIDCodes(ctx context.Context) ([]storage.IDCode, error)
}

// IDCodes lists every registered entity type with its prefix and last issued number.
func IDCodes(log *slog.Logger, codes IDCodeProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.IDCodes"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := codes.ListIDCodes(ctx)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to list id codes",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.List(w, r, len(list), list)
	}
}
