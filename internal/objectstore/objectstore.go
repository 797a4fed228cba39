// Package objectstore puts tender documents into an S3-compatible bucket and hands out
// read URLs for them.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tender-backend/internal/config"
	"tender-backend/internal/storage"
)

// ErrStorage wraps every failure of the object store. The underlying cause is kept in
// the chain for logging but should not be shown to clients.
var ErrStorage = errors.New("object storage error")

const DefaultPresignTTL = time.Hour

type Client struct {
	mc            *minio.Client
	bucket        string
	publicBaseURL string
	presignTTL    time.Duration
}

func New(ctx context.Context, cfg config.ObjectStore) (*Client, error) {
	const op = "objectstore.New"

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: check bucket %s: %w: %w", op, cfg.Bucket, ErrStorage, err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("%s: create bucket %s: %w: %w", op, cfg.Bucket, ErrStorage, err)
		}
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}

	return &Client{
		mc:            mc,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		presignTTL:    ttl,
	}, nil
}

func (c *Client) Put(ctx context.Context, r io.Reader, size int64, contentType, key string) (storage.Object, error) {
	const op = "objectstore.Put"

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := c.mc.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return storage.Object{}, fmt.Errorf("%s: put %s: %w: %w", op, key, ErrStorage, err)
	}

	return storage.Object{Bucket: info.Bucket, Key: info.Key}, nil
}

func (c *Client) PresignedGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	const op = "objectstore.PresignedGet"

	u, err := c.mc.PresignedGetObject(ctx, c.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%s: presign %s: %w: %w", op, key, ErrStorage, err)
	}

	return u.String(), nil
}

// ReadURL returns the public URL of key when a public base URL is configured and a
// presigned URL otherwise.
func (c *Client) ReadURL(ctx context.Context, key string) (string, error) {
	if c.publicBaseURL != "" {
		return PublicURL(c.publicBaseURL, key), nil
	}

	return c.PresignedGet(ctx, key, c.presignTTL)
}

func (c *Client) Remove(ctx context.Context, key string) error {
	const op = "objectstore.Remove"

	if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: remove %s: %w: %w", op, key, ErrStorage, err)
	}

	return nil
}

func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// Key derives an object key from the upload time and the original file name:
// <prefix>/<unix millis>-<sanitized name>.
func Key(prefix string, uploadedAt time.Time, filename string) string {
	return fmt.Sprintf("%s/%d-%s", strings.Trim(prefix, "/"), uploadedAt.UnixMilli(), sanitize(filename))
}

func sanitize(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}

	name = strings.Map(func(r rune) rune {
		switch {
		case r == '.' || r == '-' || r == '_':
			return r
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		default:
			return '_'
		}
	}, name)

	return name
}
