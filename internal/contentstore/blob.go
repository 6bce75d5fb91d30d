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
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// BlobStore is the byte storage behind the content index.
type BlobStore interface {
	// Name identifies the backend in Content.Location.
	Name() string
	// Write streams r into key and returns the number of bytes written.
	Write(ctx context.Context, key string, r io.Reader) (int64, error)
	// Open returns a reader for key, or ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	// List returns every stored key with its last modification time.
	List(ctx context.Context) ([]BlobInfo, error)
	// LocalPath returns a filesystem path for key when the backend is local.
	LocalPath(key string) (string, bool)
}

// BlobInfo describes one stored blob.
type BlobInfo struct {
	Key     string
	ModTime time.Time
}

// DiskBlobs stores blobs as files in a single directory.
type DiskBlobs struct {
	dir string
}

// NewDiskBlobs creates the directory (mode 0700) if needed.
func NewDiskBlobs(dir string) (*DiskBlobs, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DiskBlobs{dir: dir}, nil
}

func (d *DiskBlobs) Name() string { return "disk" }

func (d *DiskBlobs) path(key string) (string, error) {
	// Keys are generated UUIDs; anything else is refused so a key can never
	// escape the storage directory.
	if _, err := uuid.Parse(key); err != nil {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(d.dir, key), nil
}

func (d *DiskBlobs) Write(ctx context.Context, key string, r io.Reader) (int64, error) {
	p, err := d.path(key)
	if err != nil {
		return 0, err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, fmt.Errorf("create blob: %w", err)
	}
	n, err := io.Copy(f, contextReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close blob: %w", cerr)
	}
	return n, err
}

func (d *DiskBlobs) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, ErrNotFound
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

func (d *DiskBlobs) Remove(_ context.Context, key string) error {
	p, err := d.path(key)
	if err != nil {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

func (d *DiskBlobs) List(_ context.Context) ([]BlobInfo, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	out := make([]BlobInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed concurrently
		}
		out = append(out, BlobInfo{Key: e.Name(), ModTime: info.ModTime()})
	}
	return out, nil
}

func (d *DiskBlobs) LocalPath(key string) (string, bool) {
	p, err := d.path(key)
	if err != nil {
		return "", false
	}
	return p, true
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
