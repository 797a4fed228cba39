package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"tender-backend/internal/lib/api"
	"tender-backend/internal/lib/validate"
)

type IDCodeRegistrar interface {
	RegisterType(ctx context.Context, name, prefix string) error
}

type Request struct {
	Name   string `json:"name" validate:"required,max=64"`
	Prefix string `json:"prefix" validate:"required,codeprefix"`
}

// RegisterIDCode adds an entity type. Registering a known type keeps its prefix and counter.
func RegisterIDCode(log *slog.Logger, codes IDCodeRegistrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.RegisterIDCode"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := api.Decode(r, &req); err != nil {
			log.Warn("failed to decode request body", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		if err := validate.Struct(req); err != nil {
			log.Warn("invalid request", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := codes.RegisterType(ctx, req.Name, req.Prefix); err != nil {
			log.Log(ctx, api.Level(err), "failed to register id code", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		log.Info("id code registered", slog.String("name", req.Name), slog.String("prefix", req.Prefix))

		api.OK(w, r, http.StatusCreated, req)
	}
}
