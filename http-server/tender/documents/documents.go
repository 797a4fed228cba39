// Package documents serves the files attached to a tender.
package documents

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tender-backend/internal/lib/api"
	"tender-backend/internal/service/tender"
	"tender-backend/internal/storage"
)

// FormField is the multipart field carrying the file.
const FormField = "file"

// multipart framing on top of the file itself
const formOverhead = 1 << 20

type DocumentService interface {
	UploadDocument(ctx context.Context, tenderID string, up tender.Upload) (*storage.TenderDocument, error)
	Documents(ctx context.Context, tenderID string) ([]storage.TenderDocument, error)
	DeleteDocument(ctx context.Context, tenderID, documentID string) error
}

func Upload(log *slog.Logger, docs DocumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tender.documents.Upload"

		tenderID := chi.URLParam(r, "tender_id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("tender_id", tenderID),
		)

		r.Body = http.MaxBytesReader(w, r.Body, tender.MaxUploadSize+formOverhead)

		if err := r.ParseMultipartForm(8 << 20); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				log.Warn("upload too large", slog.Int64("limit", tooBig.Limit))
				api.Error(w, r, http.StatusRequestEntityTooLarge, "file is too large")
				return
			}
			log.Warn("failed to parse multipart form", slog.String("error", err.Error()))
			api.Error(w, r, http.StatusBadRequest, "expected a multipart form")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile(FormField)
		if err != nil {
			log.Warn("no file in form", slog.String("error", err.Error()))
			api.Error(w, r, http.StatusBadRequest, `multipart field "file" is required`)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		doc, err := docs.UploadDocument(ctx, tenderID, tender.Upload{
			Name:        header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Body:        file,
		})
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to upload document", slog.String("error", err.Error()))
			api.Fail(w, r, err)
			return
		}

		log.Info("document uploaded",
			slog.String("document_id", doc.DocumentID),
			slog.String("key", doc.Key),
			slog.Int64("size", doc.Size),
		)

		api.OK(w, r, http.StatusCreated, doc)
	}
}

func List(log *slog.Logger, docs DocumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tender.documents.List"

		tenderID := chi.URLParam(r, "tender_id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := docs.Documents(ctx, tenderID)
		if err != nil {
			log.Log(ctx, api.Level(err), "failed to list documents",
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

func Delete(log *slog.Logger, docs DocumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tender.documents.Delete"

		tenderID := chi.URLParam(r, "tender_id")
		documentID := chi.URLParam(r, "document_id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := docs.DeleteDocument(ctx, tenderID, documentID); err != nil {
			log.Log(ctx, api.Level(err), "failed to delete document",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("tender_id", tenderID),
				slog.String("document_id", documentID),
				slog.String("error", err.Error()),
			)
			api.Fail(w, r, err)
			return
		}

		api.OK(w, r, http.StatusOK, map[string]string{"document_id": documentID})
	}
}
