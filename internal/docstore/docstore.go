//go:generate mockgen -source ./docstore.go -destination=./mocks/blob_store.go -package=mock_docstore

// Package docstore implements the document store: a fixed set of JSON
// collections persisted as whole-file blobs in a remote content store,
// mutated through optimistic-concurrency read-modify-write cycles.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajmarketing/backend/internal/github"
	"github.com/rajmarketing/backend/internal/metrics"
)

// BlobStore is the versioned blob store the collections live in. Get
// returns content plus an opaque version token; Put accepts the token
// as a write precondition and fails with github.ErrVersionConflict
// when the remote content moved on since the token was issued.
type BlobStore interface {
	Get(ctx context.Context, path string) (content []byte, version string, err error)
	Put(ctx context.Context, path string, content []byte, version, message string) (newVersion string, err error)
}

type Config struct {
	// MaxWriteAttempts bounds the retry-with-refetch loop around each
	// read-modify-write cycle. 1 means fail fast on the first
	// conflict.
	MaxWriteAttempts int

	// Clock overrides the time source. Nil means time.Now.
	Clock func() time.Time
}

type Store struct {
	blobs       BlobStore
	logger      *zap.Logger
	now         func() time.Time
	maxAttempts int
}

func New(blobs BlobStore, logger *zap.Logger, cfg Config) *Store {
	if cfg.MaxWriteAttempts <= 0 {
		cfg.MaxWriteAttempts = 3
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Store{
		blobs:       blobs,
		logger:      logger,
		now:         cfg.Clock,
		maxAttempts: cfg.MaxWriteAttempts,
	}
}

// isoTime formats a timestamp the way the stored documents expect:
// ISO-8601 UTC with millisecond precision.
func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// newID builds a record id: a human-readable prefix over a UUID.
func newID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}

// Read fetches a collection and returns its raw JSON content together
// with the version token for a subsequent Write.
func (s *Store) Read(ctx context.Context, c Collection) (json.RawMessage, string, error) {
	content, version, err := s.blobs.Get(ctx, string(c))
	if err != nil {
		return nil, "", err
	}
	return content, version, nil
}

// Write replaces a collection's content. A non-empty version is passed
// through as the optimistic-concurrency precondition; empty version
// creates the file.
func (s *Store) Write(ctx context.Context, c Collection, content any, version string) (string, error) {
	encoded, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", c, err)
	}
	return s.blobs.Put(ctx, string(c), encoded, version, "Update "+string(c))
}

// readDoc fetches and decodes one collection document.
func readDoc[T any](ctx context.Context, s *Store, c Collection, op string) (*T, string, error) {
	metrics.StoreOperationsTotal.WithLabelValues(op).Inc()

	content, version, err := s.blobs.Get(ctx, string(c))
	if err != nil {
		metrics.StoreOperationErrorsTotal.WithLabelValues(op).Inc()
		return nil, "", fmt.Errorf("failed to read %s: %w", c, err)
	}

	doc := new(T)
	if err := json.Unmarshal(content, doc); err != nil {
		metrics.StoreOperationErrorsTotal.WithLabelValues(op).Inc()
		return nil, "", fmt.Errorf("failed to decode %s: %w", c, err)
	}
	return doc, version, nil
}

// mutateDoc runs one read-modify-write cycle against a collection. The
// mutate callback works on the freshly decoded document and reports
// whether anything changed; when it returns false no write happens,
// which keeps lookup misses write-free. On a version conflict the
// whole cycle is refetched and reapplied, bounded by MaxWriteAttempts.
func mutateDoc[T any](ctx context.Context, s *Store, c Collection, op string, mutate func(doc *T) (bool, error)) error {
	metrics.StoreOperationsTotal.WithLabelValues(op).Inc()

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		content, version, err := s.blobs.Get(ctx, string(c))
		if err != nil {
			metrics.StoreOperationErrorsTotal.WithLabelValues(op).Inc()
			return fmt.Errorf("failed to read %s: %w", c, err)
		}

		doc := new(T)
		if err := json.Unmarshal(content, doc); err != nil {
			metrics.StoreOperationErrorsTotal.WithLabelValues(op).Inc()
			return fmt.Errorf("failed to decode %s: %w", c, err)
		}

		changed, err := mutate(doc)
		if err != nil {
			metrics.StoreOperationErrorsTotal.WithLabelValues(op).Inc()
			return err
		}
		if !changed {
			return nil
		}

		if _, err := s.Write(ctx, c, doc, version); err != nil {
			if errors.Is(err, github.ErrVersionConflict) {
				metrics.WriteConflictsTotal.Inc()
				lastErr = err
				if attempt < s.maxAttempts {
					metrics.WriteRetriesTotal.Inc()
					s.logger.Debug("version conflict, refetching",
						zap.String("collection", string(c)),
						zap.String("operation", op),
						zap.Int("attempt", attempt))
					continue
				}
			}
			metrics.StoreOperationErrorsTotal.WithLabelValues(op).Inc()
			return fmt.Errorf("failed to write %s: %w", c, err)
		}
		return nil
	}

	metrics.StoreOperationErrorsTotal.WithLabelValues(op).Inc()
	return fmt.Errorf("failed to write %s after %d attempts: %w", c, s.maxAttempts, lastErr)
}
