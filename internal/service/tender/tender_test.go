package tender

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-backend/internal/lib/validate"
	"tender-backend/internal/objectstore"
	"tender-backend/internal/storage"
)

type memStore struct {
	tenders map[string]*storage.Tender
	addErr  error
}

func newMemStore(ids ...string) *memStore {
	s := &memStore{tenders: map[string]*storage.Tender{}}
	for _, id := range ids {
		s.tenders[id] = &storage.Tender{TenderID: id, Name: id, Status: "Open", Documents: []storage.TenderDocument{}}
	}
	return s
}

func (s *memStore) CreateTender(_ context.Context, t *storage.Tender) error {
	if _, ok := s.tenders[t.TenderID]; ok {
		return storage.ErrAlreadyExists
	}
	cp := *t
	s.tenders[t.TenderID] = &cp
	return nil
}

func (s *memStore) GetTender(_ context.Context, tenderID string) (*storage.Tender, error) {
	t, ok := s.tenders[tenderID]
	if !ok {
		return nil, fmt.Errorf("tender %s: %w", tenderID, storage.ErrNotFound)
	}
	cp := *t
	cp.Documents = append([]storage.TenderDocument{}, t.Documents...)
	return &cp, nil
}

func (s *memStore) ListTenders(context.Context, storage.Page) ([]storage.Tender, int, error) {
	out := []storage.Tender{}
	for _, t := range s.tenders {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (s *memStore) AddTenderDocument(_ context.Context, tenderID string, doc storage.TenderDocument) error {
	if s.addErr != nil {
		return s.addErr
	}
	t, ok := s.tenders[tenderID]
	if !ok {
		return storage.ErrNotFound
	}
	t.Documents = append(t.Documents, doc)
	return nil
}

func (s *memStore) RemoveTenderDocument(_ context.Context, tenderID, documentID string) (*storage.TenderDocument, error) {
	t, ok := s.tenders[tenderID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	for i, d := range t.Documents {
		if d.DocumentID == documentID {
			t.Documents = append(t.Documents[:i], t.Documents[i+1:]...)
			return &d, nil
		}
	}
	return nil, storage.ErrNotFound
}

type memObjects struct {
	objects   map[string]string
	putErr    error
	removeErr error
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string]string{}}
}

func (o *memObjects) Put(_ context.Context, r io.Reader, _ int64, _ string, key string) (storage.Object, error) {
	if o.putErr != nil {
		return storage.Object{}, o.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return storage.Object{}, err
	}
	o.objects[key] = string(b)
	return storage.Object{Bucket: "tender-documents", Key: key}, nil
}

func (o *memObjects) ReadURL(_ context.Context, key string) (string, error) {
	return objectstore.PublicURL("https://files.example.com", key), nil
}

func (o *memObjects) Remove(_ context.Context, key string) error {
	if o.removeErr != nil {
		return o.removeErr
	}
	delete(o.objects, key)
	return nil
}

type seqIDs struct{ n int64 }

func (g *seqIDs) RegisterType(context.Context, string, string) error { return nil }

func (g *seqIDs) NextCode(context.Context, string) (string, error) {
	g.n++
	return fmt.Sprintf("TND-%05d", g.n), nil
}

func newTestService(store *memStore, objects *memObjects) *Service {
	svc := NewService(slog.Default(), store, objects, &seqIDs{})
	svc.now = func() time.Time { return time.UnixMilli(1717171717000).UTC() }
	return svc
}

func upload(name, body string) Upload {
	return Upload{Name: name, ContentType: "application/pdf", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestCreate(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, newMemObjects())

	created, err := svc.Create(context.Background(), Draft{Name: "Ring road", Client: "PWD", EstimatedValue: 1e7})
	require.NoError(t, err)
	assert.Equal(t, "TND-00001", created.TenderID)
	assert.Equal(t, "Open", created.Status)

	_, err = svc.Create(context.Background(), Draft{EstimatedValue: -1})
	assert.True(t, errors.Is(err, validate.ErrValidation))
}

func TestUploadDocument(t *testing.T) {
	store := newMemStore("TND-00001")
	objects := newMemObjects()
	svc := newTestService(store, objects)

	doc, err := svc.UploadDocument(context.Background(), "TND-00001", upload("BOQ final (v2).pdf", "%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, "tenders/TND-00001/1717171717000-BOQ_final__v2_.pdf", doc.Key)
	assert.Equal(t, "https://files.example.com/"+doc.Key, doc.URL)
	assert.Equal(t, "BOQ final (v2).pdf", doc.Name)
	assert.NotEmpty(t, doc.DocumentID)
	assert.Equal(t, "%PDF-1.7", objects.objects[doc.Key])

	docs, err := svc.Documents(context.Background(), "TND-00001")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.URL, docs[0].URL)
}

func TestUploadDocument_Errors(t *testing.T) {
	t.Run("unknown tender", func(t *testing.T) {
		objects := newMemObjects()
		svc := newTestService(newMemStore(), objects)

		_, err := svc.UploadDocument(context.Background(), "TND-09999", upload("a.pdf", "x"))
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		assert.Empty(t, objects.objects)
	})

	t.Run("empty file", func(t *testing.T) {
		svc := newTestService(newMemStore("TND-00001"), newMemObjects())

		_, err := svc.UploadDocument(context.Background(), "TND-00001", upload("a.pdf", ""))
		assert.True(t, errors.Is(err, validate.ErrValidation))
	})

	t.Run("object store down", func(t *testing.T) {
		objects := newMemObjects()
		objects.putErr = fmt.Errorf("put: %w: connection refused", objectstore.ErrStorage)
		svc := newTestService(newMemStore("TND-00001"), objects)

		_, err := svc.UploadDocument(context.Background(), "TND-00001", upload("a.pdf", "x"))
		assert.True(t, errors.Is(err, objectstore.ErrStorage))
	})

	t.Run("record fails, object removed", func(t *testing.T) {
		store := newMemStore("TND-00001")
		store.addErr = errors.New("db down")
		objects := newMemObjects()
		svc := newTestService(store, objects)

		_, err := svc.UploadDocument(context.Background(), "TND-00001", upload("a.pdf", "x"))
		require.Error(t, err)
		assert.Empty(t, objects.objects)
	})
}

func TestDeleteDocument(t *testing.T) {
	store := newMemStore("TND-00001")
	objects := newMemObjects()
	svc := newTestService(store, objects)

	doc, err := svc.UploadDocument(context.Background(), "TND-00001", upload("a.pdf", "x"))
	require.NoError(t, err)

	objects.removeErr = errors.New("bucket gone")
	require.NoError(t, svc.DeleteDocument(context.Background(), "TND-00001", doc.DocumentID))

	docs, err := svc.Documents(context.Background(), "TND-00001")
	require.NoError(t, err)
	assert.Empty(t, docs)

	err = svc.DeleteDocument(context.Background(), "TND-00001", doc.DocumentID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
