// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package services

import "context"

// RetentionRunner is satisfied by *audit.Logger.
type RetentionRunner interface {
	RunRetention(ctx context.Context) error
}

// AuditRetentionService supervises audit log retention.
type AuditRetentionService struct {
	runner RetentionRunner
	name   string
}

// NewAuditRetentionService creates a retention service.
func NewAuditRetentionService(runner RetentionRunner) *AuditRetentionService {
	return &AuditRetentionService{runner: runner, name: "audit-retention"}
}

// Serve implements suture.Service.
func (a *AuditRetentionService) Serve(ctx context.Context) error {
	return a.runner.RunRetention(ctx)
}

// String names the service in suture events.
func (a *AuditRetentionService) String() string {
	return a.name
}
