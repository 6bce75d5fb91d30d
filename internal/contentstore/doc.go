// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package contentstore holds uploaded content for the lifetime of one analysis.

Bytes are streamed to a blob backend (a local directory or an S3-compatible
bucket via minio-go) and described by an index entry in BadgerDB. The index
is in-memory unless storage.index_dir is set, and every entry carries an
expiry so content outlives its request by at most storage.ttl.

# Lifecycle

	content, err := store.Put(ctx, body, contentstore.ModalityVideo, "video/mp4")
	lease := store.Acquire(content.ID)
	defer lease.Close() // owner release

	lease.Hold()          // one per concurrent reader
	rc, err := lease.Open(ctx)
	...
	lease.Release()

The content is deleted exactly once, when the owner has closed the lease and
every holder has released. Open after that point returns ErrNotFound.

# Safety net

Sweep removes content whose index entry has expired and blobs that have no
index entry at all (for example after a restart with an in-memory index).
The supervisor runs it every storage.sweep_interval.
*/
package contentstore
