// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package contentstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T, opts Options) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	blobs, err := NewDiskBlobs(dir)
	if err != nil {
		t.Fatalf("NewDiskBlobs: %v", err)
	}
	s, err := New(blobs, "", opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestStore_PutOpenDelete(t *testing.T) {
	s, dir := newTestStore(t, Options{MaxBytes: 1024, TTL: time.Minute})
	ctx := context.Background()

	c, err := s.Put(ctx, strings.NewReader("frame data"), ModalityVideo, "video/mp4")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if c.Size != 10 || c.Modality != ModalityVideo || c.MimeType != "video/mp4" {
		t.Errorf("unexpected content: %+v", c)
	}
	if !strings.HasPrefix(c.Location, "disk:") {
		t.Errorf("Location = %q", c.Location)
	}
	if !c.ExpiresAt.Equal(c.CreatedAt.Add(time.Minute)) {
		t.Errorf("ExpiresAt = %v, CreatedAt = %v", c.ExpiresAt, c.CreatedAt)
	}

	rc, err := s.Open(ctx, c.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "frame data" {
		t.Errorf("read %q", data)
	}

	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Open(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, c.ID); err != nil {
		t.Errorf("second Delete = %v, want nil (idempotent)", err)
	}
	if n := countFiles(t, dir); n != 0 {
		t.Errorf("%d files left in storage dir", n)
	}
}

func TestStore_PutTooLarge(t *testing.T) {
	s, dir := newTestStore(t, Options{MaxBytes: 16, TTL: time.Minute})

	tests := []struct {
		name    string
		size    int
		wantErr error
	}{
		{"at limit", 16, nil},
		{"one over", 17, ErrContentTooLarge},
		{"far over", 4096, ErrContentTooLarge},
		{"empty", 0, ErrEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := s.Put(context.Background(), bytes.NewReader(make([]byte, tt.size)), ModalityImage, "image/png")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Put err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				_ = s.Delete(context.Background(), c.ID)
			}
			if n := countFiles(t, dir); n != 0 {
				t.Errorf("%d blobs left after Put", n)
			}
			st, err := s.Stats()
			if err != nil {
				t.Fatal(err)
			}
			if st.Items != 0 {
				t.Errorf("Stats().Items = %d, want 0", st.Items)
			}
		})
	}
}

type failingReader struct{ after int }

func (f *failingReader) Read(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errors.New("connection reset")
	}
	n := len(p)
	if n > f.after {
		n = f.after
	}
	f.after -= n
	return n, nil
}

func TestStore_PutReadErrorLeavesNothing(t *testing.T) {
	s, dir := newTestStore(t, Options{MaxBytes: 1024, TTL: time.Minute})

	if _, err := s.Put(context.Background(), &failingReader{after: 10}, ModalityAudio, "audio/wav"); err == nil {
		t.Fatal("expected error")
	}
	if n := countFiles(t, dir); n != 0 {
		t.Errorf("%d blobs left after failed Put", n)
	}
}

func TestStore_Expiry(t *testing.T) {
	s, _ := newTestStore(t, Options{MaxBytes: 1024, TTL: time.Minute})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	c, err := s.Put(context.Background(), strings.NewReader("x"), ModalityImage, "image/jpeg")
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(59 * time.Second)
	if _, err := s.Open(context.Background(), c.ID); err != nil {
		t.Fatalf("Open before expiry: %v", err)
	}

	now = now.Add(time.Second)
	if _, err := s.Open(context.Background(), c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open at expiry = %v, want ErrNotFound", err)
	}
}

func TestStore_Sweep(t *testing.T) {
	s, dir := newTestStore(t, Options{MaxBytes: 1024, TTL: time.Minute})
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	live, err := s.Put(ctx, strings.NewReader("live"), ModalityImage, "image/png")
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(-2 * time.Minute)
	if _, err := s.Put(ctx, strings.NewReader("old"), ModalityImage, "image/png"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Minute)

	// Orphan blob with no index entry, old enough to be swept.
	orphan := filepath.Join(dir, "6f1c0c55-0f39-4a5c-9f0c-1b9e6d0e7a11")
	if err := os.WriteFile(orphan, []byte("orphan"), 0o600); err != nil {
		t.Fatal(err)
	}
	old := now.Add(-time.Hour)
	if err := os.Chtimes(orphan, old, old); err != nil {
		t.Fatal(err)
	}

	removed, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 2 {
		t.Errorf("Sweep removed %d, want 2", removed)
	}
	if _, err := s.Open(ctx, live.ID); err != nil {
		t.Errorf("live content swept: %v", err)
	}
	if n := countFiles(t, dir); n != 1 {
		t.Errorf("%d files left, want 1", n)
	}
}

func TestStore_Stats(t *testing.T) {
	s, _ := newTestStore(t, Options{MaxBytes: 1024, TTL: time.Minute})
	ctx := context.Background()
	for _, body := range []string{"abc", "defgh"} {
		if _, err := s.Put(ctx, strings.NewReader(body), ModalityAudio, "audio/mpeg"); err != nil {
			t.Fatal(err)
		}
	}
	st, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Items != 2 || st.Bytes != 8 {
		t.Errorf("Stats = %+v, want {2 8}", st)
	}
}

func TestStore_Closed(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	if !s.Ready() {
		t.Fatal("new store should be ready")
	}
	_ = s.Close()
	if s.Ready() {
		t.Error("closed store should not be ready")
	}
	if _, err := s.Put(context.Background(), strings.NewReader("x"), ModalityImage, ""); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Put after close = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

// flakyBlobs fails Remove a fixed number of times before delegating.
type flakyBlobs struct {
	BlobStore
	mu       sync.Mutex
	failures int
	removes  int
}

func (f *flakyBlobs) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	f.removes++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return errors.New("transient storage error")
	}
	return f.BlobStore.Remove(ctx, key)
}

func TestStore_DeleteRetries(t *testing.T) {
	disk, err := NewDiskBlobs(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		failures int
		retries  int
		wantErr  bool
	}{
		{"succeeds after retries", 2, 3, false},
		{"exhausts retries", 5, 2, true},
		{"no retries configured", 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := &flakyBlobs{BlobStore: disk}
			s, err := New(blobs, "", Options{MaxBytes: 64, TTL: time.Minute, DeleteRetries: tt.retries})
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()

			c, err := s.Put(context.Background(), strings.NewReader("x"), ModalityImage, "image/png")
			if err != nil {
				t.Fatal(err)
			}
			blobs.failures = tt.failures

			err = s.Delete(context.Background(), c.ID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Delete err = %v, wantErr %v", err, tt.wantErr)
			}
			if _, err := s.Open(context.Background(), c.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("index entry should be gone even when blob removal fails, got %v", err)
			}
		})
	}
}

func TestDiskBlobs_RejectsForeignKeys(t *testing.T) {
	d, err := NewDiskBlobs(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Write(context.Background(), "../escape", strings.NewReader("x")); err == nil {
		t.Error("Write should reject non-UUID keys")
	}
	if _, ok := d.LocalPath("../escape"); ok {
		t.Error("LocalPath should reject non-UUID keys")
	}
}

func TestStore_LocalFileDisk(t *testing.T) {
	s, dir := newTestStore(t, Options{MaxBytes: 64, TTL: time.Minute})
	c, err := s.Put(context.Background(), strings.NewReader("x"), ModalityVideo, "video/mp4")
	if err != nil {
		t.Fatal(err)
	}
	p, cleanup, err := s.LocalFile(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	if filepath.Dir(p) != dir {
		t.Errorf("LocalFile = %q, want file in %q", p, dir)
	}
}

// remoteBlobs hides LocalPath to exercise the temporary-copy branch.
type remoteBlobs struct{ BlobStore }

func (remoteBlobs) LocalPath(string) (string, bool) { return "", false }

func TestStore_LocalFileRemote(t *testing.T) {
	disk, err := NewDiskBlobs(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(remoteBlobs{disk}, "", Options{MaxBytes: 64, TTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	c, err := s.Put(context.Background(), strings.NewReader("probe me"), ModalityVideo, "video/mp4")
	if err != nil {
		t.Fatal(err)
	}
	p, cleanup, err := s.LocalFile(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(p)
	if err != nil || string(data) != "probe me" {
		t.Fatalf("temp copy = %q, %v", data, err)
	}
	cleanup()
	if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cleanup did not remove %s", p)
	}
}
