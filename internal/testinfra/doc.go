// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

// Package testinfra starts backing services in Docker for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// Containers:
//   - MinioContainer: object storage for contentstore.MinioBlobs
//   - PostgresContainer: database for the audit SQL store
//
// Tests call SkipIfNoDocker first so they pass on machines without Docker.
package testinfra
