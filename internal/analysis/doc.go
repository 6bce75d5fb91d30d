// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

/*
Package analysis orchestrates one analysis request.

# Flow

	Run(ctx, req)
	  ├── Acquire a lease on the stored content (owner reference)
	  ├── Admission: at most MaxConcurrent analyses in flight
	  ├── Probe container metadata (media kinds)
	  ├── Fan out: every applicable detector in its own goroutine
	  │     each holds a lease reference and runs under
	  │     min(detector timeout, request deadline)
	  ├── Fan in: collect settled slots; mark the rest timed_out
	  └── Close the owner reference

# Cleanup

Every detector slot settles exactly once, either when its detector
returns or when the request deadline marks it timed out. Settling releases
the slot's lease reference. The content is deleted when the last
reference goes, including the owner's, so deletion happens once per
request on every path. Deletion runs on a background context and is not
affected by a disconnected client.

A detector that misses its deadline keeps running until its context is
cancelled, but its result is discarded.
*/
package analysis
