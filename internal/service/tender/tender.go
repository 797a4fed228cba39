// Package tender manages tenders and the documents uploaded against them.
package tender

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tender-backend/internal/constants"
	"tender-backend/internal/lib/validate"
	"tender-backend/internal/objectstore"
	"tender-backend/internal/storage"
)

// MaxUploadSize bounds a single document upload.
const MaxUploadSize = 32 << 20

type Store interface {
	CreateTender(ctx context.Context, t *storage.Tender) error
	GetTender(ctx context.Context, tenderID string) (*storage.Tender, error)
	ListTenders(ctx context.Context, page storage.Page) ([]storage.Tender, int, error)
	AddTenderDocument(ctx context.Context, tenderID string, doc storage.TenderDocument) error
	RemoveTenderDocument(ctx context.Context, tenderID, documentID string) (*storage.TenderDocument, error)
}

type ObjectStore interface {
	Put(ctx context.Context, r io.Reader, size int64, contentType, key string) (storage.Object, error)
	ReadURL(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

type Draft struct {
	Name           string  `json:"name" validate:"required"`
	ProjectID      string  `json:"projectId"`
	Client         string  `json:"client"`
	Location       string  `json:"location"`
	EstimatedValue float64 `json:"estimatedValue" validate:"gte=0"`
}

// Upload is one file received from a client.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service struct {
	log     *slog.Logger
	store   Store
	objects ObjectStore
	ids     storage.IDGenerator
	now     func() time.Time
}

func NewService(log *slog.Logger, store Store, objects ObjectStore, ids storage.IDGenerator) *Service {
	return &Service{log: log, store: store, objects: objects, ids: ids, now: time.Now}
}

func (s *Service) Create(ctx context.Context, d Draft) (*storage.Tender, error) {
	const op = "service.tender.Create"

	if err := validate.Struct(d); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.ids.RegisterType(ctx, constants.IDTypeTender, constants.PrefixTender); err != nil {
		return nil, fmt.Errorf("%s: register id type: %w", op, err)
	}
	tenderID, err := s.ids.NextCode(ctx, constants.IDTypeTender)
	if err != nil {
		return nil, fmt.Errorf("%s: next code: %w", op, err)
	}

	t := &storage.Tender{
		TenderID:       tenderID,
		Name:           d.Name,
		ProjectID:      d.ProjectID,
		Client:         d.Client,
		Location:       d.Location,
		EstimatedValue: d.EstimatedValue,
		Status:         constants.TenderOpen,
	}
	if err := s.store.CreateTender(ctx, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

func (s *Service) Get(ctx context.Context, tenderID string) (*storage.Tender, error) {
	const op = "service.tender.Get"

	t, err := s.store.GetTender(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

func (s *Service) List(ctx context.Context, page storage.Page) ([]storage.Tender, int, error) {
	const op = "service.tender.List"

	tenders, total, err := s.store.ListTenders(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return tenders, total, nil
}

// UploadDocument stores the file under tenders/<tender_id>/ and records it on the tender.
// If the record cannot be written the stored object is removed again.
func (s *Service) UploadDocument(ctx context.Context, tenderID string, up Upload) (*storage.TenderDocument, error) {
	const op = "service.tender.UploadDocument"

	if up.Size <= 0 {
		return nil, fmt.Errorf("%s: %w", op, validate.Failed("file is empty"))
	}
	if up.Size > MaxUploadSize {
		return nil, fmt.Errorf("%s: %w", op, validate.Failed("file exceeds %d bytes", MaxUploadSize))
	}

	if _, err := s.store.GetTender(ctx, tenderID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uploadedAt := s.now().UTC().Truncate(time.Millisecond)
	key := objectstore.Key("tenders/"+tenderID, uploadedAt, up.Name)

	obj, err := s.objects.Put(ctx, up.Body, up.Size, up.ContentType, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc := storage.TenderDocument{
		DocumentID:  uuid.NewString(),
		Name:        up.Name,
		Bucket:      obj.Bucket,
		Key:         obj.Key,
		ContentType: up.ContentType,
		Size:        up.Size,
		UploadedAt:  uploadedAt,
	}

	if err := s.store.AddTenderDocument(ctx, tenderID, doc); err != nil {
		if rmErr := s.objects.Remove(context.WithoutCancel(ctx), obj.Key); rmErr != nil {
			s.log.Error("orphaned tender document object",
				slog.String("op", op),
				slog.String("key", obj.Key),
				slog.String("error", rmErr.Error()),
			)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc.URL, err = s.objects.ReadURL(ctx, doc.Key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &doc, nil
}

// Documents lists the tender's documents, each with a read URL.
func (s *Service) Documents(ctx context.Context, tenderID string) ([]storage.TenderDocument, error) {
	const op = "service.tender.Documents"

	t, err := s.store.GetTender(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	docs := make([]storage.TenderDocument, 0, len(t.Documents))
	for _, d := range t.Documents {
		d.URL, err = s.objects.ReadURL(ctx, d.Key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		docs = append(docs, d)
	}

	return docs, nil
}

// DeleteDocument drops the record first; a failure to remove the object afterwards is
// only logged.
func (s *Service) DeleteDocument(ctx context.Context, tenderID, documentID string) error {
	const op = "service.tender.DeleteDocument"

	doc, err := s.store.RemoveTenderDocument(ctx, tenderID, documentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.objects.Remove(ctx, doc.Key); err != nil {
		s.log.Warn("tender document object not removed",
			slog.String("op", op),
			slog.String("key", doc.Key),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
