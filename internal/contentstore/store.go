// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package contentstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/truthx/internal/config"
	"github.com/tomtom215/truthx/internal/logging"
	"github.com/tomtom215/truthx/internal/metrics"
)

// Options configures a Store.
type Options struct {
	MaxBytes      int64
	TTL           time.Duration
	DeleteRetries int
	// DeleteTimeout bounds a lease-triggered delete, which runs detached
	// from any request context.
	DeleteTimeout time.Duration
}

// Store is the ephemeral content store.
type Store struct {
	blobs  BlobStore
	index  *index
	opts   Options
	now    func() time.Time
	closed atomic.Bool
}

// New creates a Store over blobs with a fresh index (in-memory when indexDir is empty).
func New(blobs BlobStore, indexDir string, opts Options) (*Store, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = config.DefaultMaxUploadBytes
	}
	if opts.TTL <= 0 {
		opts.TTL = 15 * time.Minute
	}
	if opts.DeleteTimeout <= 0 {
		opts.DeleteTimeout = 30 * time.Second
	}
	ix, err := openIndex(indexDir)
	if err != nil {
		return nil, err
	}
	return &Store{blobs: blobs, index: ix, opts: opts, now: time.Now}, nil
}

// NewFromConfig builds the configured blob backend and index.
func NewFromConfig(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	var (
		blobs BlobStore
		err   error
	)
	switch cfg.Backend {
	case "minio":
		blobs, err = NewMinioBlobs(ctx, cfg.Minio)
	default:
		blobs, err = NewDiskBlobs(cfg.Dir)
	}
	if err != nil {
		return nil, err
	}
	return New(blobs, cfg.IndexDir, Options{
		MaxBytes:      cfg.MaxUploadBytes,
		TTL:           cfg.TTL,
		DeleteRetries: cfg.DeleteRetries,
	})
}

// MaxBytes returns the upload ceiling.
func (s *Store) MaxBytes() int64 { return s.opts.MaxBytes }

// Ready reports whether the store accepts operations.
func (s *Store) Ready() bool { return !s.closed.Load() }

// Put streams r into the store. More than MaxBytes fails with
// ErrContentTooLarge and an empty stream with ErrEmptyContent; in both cases,
// and on any write error, nothing is left behind.
func (s *Store) Put(ctx context.Context, r io.Reader, modality Modality, mimeType string) (*Content, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	id := uuid.NewString()
	limited := &io.LimitedReader{R: r, N: s.opts.MaxBytes + 1}

	n, err := s.blobs.Write(ctx, id, limited)
	if err != nil {
		s.discard(id)
		metrics.RecordStoreOperation("put", err)
		return nil, fmt.Errorf("write content: %w", err)
	}
	if n > s.opts.MaxBytes {
		s.discard(id)
		metrics.ContentStoreRejected.WithLabelValues("too_large").Inc()
		return nil, ErrContentTooLarge
	}
	if n == 0 {
		s.discard(id)
		metrics.ContentStoreRejected.WithLabelValues("empty").Inc()
		return nil, ErrEmptyContent
	}

	now := s.now().UTC()
	c := &Content{
		ID:        id,
		Size:      n,
		Modality:  modality,
		MimeType:  mimeType,
		Location:  s.blobs.Name() + ":" + id,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.TTL),
	}
	if err := s.index.put(c, 2*s.opts.TTL); err != nil {
		s.discard(id)
		metrics.RecordStoreOperation("put", err)
		return nil, err
	}

	metrics.RecordStoreOperation("put", nil)
	metrics.ContentStoreBytes.Add(float64(n))
	metrics.ContentStoreEntries.Inc()
	return c, nil
}

// discard removes a partial blob with a context that outlives the request.
func (s *Store) discard(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.DeleteTimeout)
	defer cancel()
	if err := s.blobs.Remove(ctx, id); err != nil {
		logging.Warn().Err(err).Str("content_id", id).Msg("Failed to remove partial upload")
	}
}

// Get returns the descriptor for id, or ErrNotFound when deleted or expired.
func (s *Store) Get(_ context.Context, id string) (*Content, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	c, err := s.index.get(id)
	if err != nil {
		return nil, err
	}
	if c.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return c, nil
}

// Open returns a reader over the stored bytes.
func (s *Store) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if _, err := s.Get(ctx, id); err != nil {
		metrics.RecordStoreOperation("open", err)
		return nil, err
	}
	rc, err := s.blobs.Open(ctx, id)
	metrics.RecordStoreOperation("open", err)
	return rc, err
}

// LocalFile returns a filesystem path holding the content. For non-local
// backends the bytes are copied to a temporary file that cleanup removes.
func (s *Store) LocalFile(ctx context.Context, id string) (path string, cleanup func(), err error) {
	if _, err := s.Get(ctx, id); err != nil {
		return "", nil, err
	}
	if p, ok := s.blobs.LocalPath(id); ok {
		return p, func() {}, nil
	}

	rc, err := s.blobs.Open(ctx, id)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	f, err := os.CreateTemp("", "truthx-probe-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup = func() { _ = os.Remove(f.Name()) }
	if _, err := io.Copy(f, rc); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("materialise content: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}

// Delete removes id. It is idempotent: deleting missing content succeeds.
// The index entry goes first so Open fails immediately, then blob removal is
// retried up to DeleteRetries times.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	_, lookupErr := s.index.get(id)
	existed := lookupErr == nil

	if err := s.index.remove(id); err != nil {
		metrics.RecordStoreOperation("delete", err)
		return err
	}

	var err error
	for attempt := 0; attempt <= s.opts.DeleteRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				metrics.RecordStoreOperation("delete", ctx.Err())
				return fmt.Errorf("delete content %s: %w", id, ctx.Err())
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
		if err = s.blobs.Remove(ctx, id); err == nil {
			break
		}
	}
	metrics.RecordStoreOperation("delete", err)
	if err != nil {
		return fmt.Errorf("delete content %s: %w", id, err)
	}
	if existed {
		metrics.ContentStoreEntries.Dec()
	}
	return nil
}

// Acquire returns the owner's lease on id.
func (s *Store) Acquire(id string) *Lease {
	return newLease(s, id)
}

// Sweep deletes expired content and orphaned blobs. It returns how many
// items were removed.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}
	entries, err := s.index.list()
	if err != nil {
		return 0, err
	}

	now := s.now()
	known := make(map[string]bool, len(entries))
	removed := 0
	var errs []error

	for _, c := range entries {
		if !c.Expired(now) {
			known[c.ID] = true
			continue
		}
		if err := s.Delete(ctx, c.ID); err != nil {
			known[c.ID] = true
			errs = append(errs, err)
			continue
		}
		removed++
	}

	blobs, err := s.blobs.List(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	for _, b := range blobs {
		if known[b.Key] || now.Sub(b.ModTime) < s.opts.TTL {
			continue
		}
		if err := s.blobs.Remove(ctx, b.Key); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	stats, statsErr := s.Stats()
	if statsErr == nil {
		metrics.ContentStoreEntries.Set(float64(stats.Items))
	}
	metrics.RecordStoreOperation("sweep", errors.Join(errs...))
	return removed, errors.Join(errs...)
}

// Stats counts live (unexpired) content.
func (s *Store) Stats() (Stats, error) {
	entries, err := s.index.list()
	if err != nil {
		return Stats{}, err
	}
	now := s.now()
	var st Stats
	for _, c := range entries {
		if c.Expired(now) {
			continue
		}
		st.Items++
		st.Bytes += c.Size
	}
	return st, nil
}

// Close closes the index. Blobs of content still referenced are left for the
// next Sweep.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.index.close()
}
