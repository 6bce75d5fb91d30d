// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package contentstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingBlobs counts Remove calls.
type countingBlobs struct {
	BlobStore
	removes atomic.Int32
}

func (c *countingBlobs) Remove(ctx context.Context, key string) error {
	c.removes.Add(1)
	return c.BlobStore.Remove(ctx, key)
}

func newLeaseFixture(t *testing.T) (*Store, *countingBlobs, *Content) {
	t.Helper()
	disk, err := NewDiskBlobs(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	blobs := &countingBlobs{BlobStore: disk}
	s, err := New(blobs, "", Options{MaxBytes: 1024, TTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	c, err := s.Put(context.Background(), strings.NewReader("payload"), ModalityVideo, "video/mp4")
	if err != nil {
		t.Fatal(err)
	}
	return s, blobs, c
}

func TestLease_OwnerOnly(t *testing.T) {
	s, blobs, c := newLeaseFixture(t)
	lease := s.Acquire(c.ID)

	lease.Close()
	<-lease.Done()

	if lease.Err() != nil {
		t.Errorf("Err() = %v", lease.Err())
	}
	if _, err := s.Open(context.Background(), c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open after Close = %v, want ErrNotFound", err)
	}
	if got := blobs.removes.Load(); got != 1 {
		t.Errorf("removes = %d, want 1", got)
	}

	lease.Close()
	if got := blobs.removes.Load(); got != 1 {
		t.Errorf("removes after second Close = %d, want 1", got)
	}
}

func TestLease_WaitsForHolders(t *testing.T) {
	s, blobs, c := newLeaseFixture(t)
	lease := s.Acquire(c.ID)

	if !lease.Hold() || !lease.Hold() {
		t.Fatal("Hold should succeed before settling")
	}
	lease.Close()

	rc, err := lease.Open(context.Background())
	if err != nil {
		t.Fatalf("Open with holders outstanding: %v", err)
	}
	_ = rc.Close()

	lease.Release()
	select {
	case <-lease.Done():
		t.Fatal("deleted while a holder remains")
	default:
	}

	lease.Release()
	<-lease.Done()
	if got := blobs.removes.Load(); got != 1 {
		t.Errorf("removes = %d, want 1", got)
	}
	if lease.Hold() {
		t.Error("Hold after settling should fail")
	}
}

func TestLease_UnmatchedReleaseIgnored(t *testing.T) {
	s, _, c := newLeaseFixture(t)
	lease := s.Acquire(c.ID)

	lease.Release()
	lease.Release()

	select {
	case <-lease.Done():
		t.Fatal("unmatched Release must not drop the owner reference")
	default:
	}
	if _, err := lease.Content(context.Background()); err != nil {
		t.Errorf("content should still exist: %v", err)
	}
	lease.Close()
	<-lease.Done()
}

func TestLease_ConcurrentReleasesDeleteOnce(t *testing.T) {
	const holders = 64

	for run := 0; run < 20; run++ {
		s, blobs, c := newLeaseFixture(t)
		lease := s.Acquire(c.ID)
		for i := 0; i < holders; i++ {
			if !lease.Hold() {
				t.Fatal("Hold failed")
			}
		}

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < holders; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				lease.Release()
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			lease.Close()
		}()
		close(start)
		wg.Wait()

		select {
		case <-lease.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("lease never settled")
		}
		if got := blobs.removes.Load(); got != 1 {
			t.Fatalf("run %d: removes = %d, want exactly 1", run, got)
		}
	}
}
