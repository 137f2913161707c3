package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/contentshield/contentshield/pkg/contentshield"
)

// Backend is an in-memory implementation of the contentshield.BlobStore
// interface, intended for tests and development.
type Backend struct {
	mu        sync.RWMutex
	objects   map[string][]byte
	updatedAt map[string]time.Time
	urlPrefix string
}

// Option configures the memory backend
type Option func(*Backend)

// WithURLPrefix sets the prefix used for download URLs
func WithURLPrefix(prefix string) Option {
	return func(b *Backend) {
		b.urlPrefix = prefix
	}
}

// New creates a new in-memory storage backend
func New(opts ...Option) contentshield.BlobStore {
	b := &Backend{
		objects:   make(map[string][]byte),
		updatedAt: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectKey] = data
	b.updatedAt[objectKey] = time.Now()
	return nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return errors.New("object not found")
	}
	delete(b.objects, objectKey)
	delete(b.updatedAt, objectKey)
	return nil
}

func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error) {
	if b.urlPrefix == "" {
		return "", errors.New("direct download required for memory backend")
	}
	if downloadFilename != "" {
		return fmt.Sprintf("%s/download/%s?filename=%s", b.urlPrefix, objectKey, downloadFilename), nil
	}
	return fmt.Sprintf("%s/download/%s", b.urlPrefix, objectKey), nil
}

func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*contentshield.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, errors.New("object not found")
	}

	return &contentshield.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(data)),
		ContentType: http.DetectContentType(data),
		UpdatedAt:   b.updatedAt[objectKey],
	}, nil
}
