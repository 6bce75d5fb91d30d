// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package cache provides a thread-safe, bounded LRU cache with TTL.

It backs short-lived lookups such as query embeddings for the related
article search. Entries expire lazily on access and can be swept with
CleanupExpired.

	c := cache.NewLRUCache[[]float32](256, time.Hour)
	c.Add(key, vec)
	if vec, ok := c.Get(key); ok {
	    // use vec
	}

Nothing submitted for analysis may be cached: callers key entries by a
digest of the query, never by the query text itself.
*/
package cache
