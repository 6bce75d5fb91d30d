// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package contentstore

import (
	"context"
	"io"
	"sync"

	"github.com/tomtom215/truthx/internal/logging"
)

// Lease is a reference count over one stored content item. The owner holds
// the initial reference and gives it up with Close; each concurrent reader
// takes one with Hold and gives it up with Release. When the count reaches
// zero the content is deleted, exactly once.
type Lease struct {
	store *Store
	id    string

	mu      sync.Mutex
	refs    int
	owner   bool // owner reference still held
	settled bool // count reached zero

	deleteOnce sync.Once
	done       chan struct{}
	err        error
}

func newLease(s *Store, id string) *Lease {
	return &Lease{
		store: s,
		id:    id,
		refs:  1,
		owner: true,
		done:  make(chan struct{}),
	}
}

// ID returns the content ID.
func (l *Lease) ID() string { return l.id }

// Hold adds a reference. It returns false once the lease has settled, in
// which case the caller must not read the content.
func (l *Lease) Hold() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.settled {
		return false
	}
	l.refs++
	return true
}

// Release drops a reference taken with Hold. Callers must release at most
// once per successful Hold.
func (l *Lease) Release() {
	l.mu.Lock()
	if l.settled || l.refs <= 1 && l.owner {
		// Only the owner reference is left; an unmatched Release is ignored.
		l.mu.Unlock()
		return
	}
	l.refs--
	fire := l.refs == 0
	if fire {
		l.settled = true
	}
	l.mu.Unlock()

	if fire {
		l.delete()
	}
}

// Close drops the owner reference. It is safe to call more than once.
func (l *Lease) Close() {
	l.mu.Lock()
	if !l.owner {
		l.mu.Unlock()
		return
	}
	l.owner = false
	l.refs--
	fire := l.refs == 0
	if fire {
		l.settled = true
	}
	l.mu.Unlock()

	if fire {
		l.delete()
	}
}

// Open reads the leased content.
func (l *Lease) Open(ctx context.Context) (io.ReadCloser, error) {
	return l.store.Open(ctx, l.id)
}

// LocalFile returns a filesystem path for the leased content.
func (l *Lease) LocalFile(ctx context.Context) (string, func(), error) {
	return l.store.LocalFile(ctx, l.id)
}

// Content returns the leased content's descriptor.
func (l *Lease) Content(ctx context.Context) (*Content, error) {
	return l.store.Get(ctx, l.id)
}

// Done is closed once the content has been deleted.
func (l *Lease) Done() <-chan struct{} { return l.done }

// Err returns the delete error after Done is closed.
func (l *Lease) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// delete runs detached from any request so a disconnected client cannot
// leave content behind.
func (l *Lease) delete() {
	l.deleteOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.store.opts.DeleteTimeout)
		defer cancel()
		l.err = l.store.Delete(ctx, l.id)
		if l.err != nil {
			logging.Err(l.err).Str("content_id", l.id).Msg("Failed to delete content; sweeper will retry")
		}
		close(l.done)
	})
}
