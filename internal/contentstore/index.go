// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package contentstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefix for BadgerDB storage
const contentKeyPrefix = "content:"

// index maps content IDs to their descriptors.
type index struct {
	db *badger.DB
}

// openIndex opens the BadgerDB index. An empty dir keeps the index in memory.
func openIndex(dir string) (*index, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
		opts.ValueLogFileSize = 16 << 20 // descriptors are tiny
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open content index: %w", err)
	}
	return &index{db: db}, nil
}

// put stores c. The badger TTL is longer than the content expiry so the
// sweeper still sees expired entries and can remove their blobs.
func (ix *index) put(c *Content, ttl time.Duration) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	return ix.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(contentKeyPrefix+c.ID), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

func (ix *index) get(id string) (*Content, error) {
	var c Content
	err := ix.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(contentKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get content: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &c)
		})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (ix *index) remove(id string) error {
	return ix.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(contentKeyPrefix + id))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete content: %w", err)
		}
		return nil
	})
}

func (ix *index) list() ([]*Content, error) {
	var out []*Content
	err := ix.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(contentKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var c Content
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			}); err != nil {
				return err
			}
			out = append(out, &c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return out, nil
}

func (ix *index) close() error {
	return ix.db.Close()
}
