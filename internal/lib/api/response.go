package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"tender-backend/internal/lib/validate"
	"tender-backend/internal/objectstore"
	"tender-backend/internal/storage"
)

type Response struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, Response{Success: true, Data: data})
}

func List(w http.ResponseWriter, r *http.Request, count int, data any) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Success: true, Count: &count, Data: data})
}

func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Response{Success: false, Error: msg})
}

// Fail maps an error kind to a status code. Known kinds answer with their own message,
// anything else is reported generically. The full chain only goes to the log.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := StatusFor(err)
	Error(w, r, status, msg)
}

func StatusFor(err error) (int, string) {
	var (
		invalid *validate.Error
		stock   *storage.InsufficientStockError
	)

	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, invalid.Error()
	case errors.Is(err, validate.ErrValidation):
		return http.StatusBadRequest, publicMessage(err)
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, publicMessage(err)
	case errors.As(err, &stock):
		return http.StatusConflict, stock.Error()
	case errors.Is(err, storage.ErrInsufficientStock), errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict, publicMessage(err)
	case errors.Is(err, objectstore.ErrStorage):
		return http.StatusBadGateway, "object storage is unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// opName matches the "pkg.sub.Func" prefixes added while an error travels up the layers.
var opName = regexp.MustCompile(`^[a-z]+(\.[a-z]+)*\.[A-Za-z]+$`)

// publicMessage drops op prefixes from a wrapped error, leaving what the caller can act on,
// e.g. "work order WO-1: not found".
func publicMessage(err error) string {
	parts := strings.Split(err.Error(), ": ")

	kept := parts[:0]
	for _, p := range parts {
		if !opName.MatchString(p) {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, ": ")
}

// Level picks the log level for a failed request: server-side failures are errors,
// client mistakes are warnings.
func Level(err error) slog.Level {
	if status, _ := StatusFor(err); status >= http.StatusInternalServerError {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// Decode reads a JSON body into v. A missing or malformed body is a validation error.
func Decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if errors.Is(err, io.EOF) {
			return validate.Failed("request body is empty")
		}
		return validate.Failed("malformed request body: %v", err)
	}
	return nil
}

// PageFromRequest reads ?page, ?limit and ?search. Bad numbers fall back to defaults.
func PageFromRequest(r *http.Request) storage.Page {
	q := r.URL.Query()

	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)

	return storage.NewPage(page, limit, q.Get("search"))
}
