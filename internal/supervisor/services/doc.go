// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

// Package services adapts truthx components to suture.Service.
//
// Each wrapper depends on a one-method interface instead of the concrete
// component, so the supervisor packages import neither the content store nor
// the audit log.
//
//   - HTTPServerService: ListenAndServe with graceful Shutdown on cancel
//   - ContentSweeperService: periodic contentstore.Store.Sweep
//   - AuditRetentionService: audit.Logger.RunRetention
package services
