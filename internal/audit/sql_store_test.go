// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

//go:build integration

package audit

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/truthx/internal/config"
	"github.com/tomtom215/truthx/internal/testinfra"
)

func setupTestDB(t *testing.T) *SQLStore {
	t.Helper()

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory DuckDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := NewSQLStore(db, DriverDuckDB)
	if err := s.CreateTable(context.Background()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	return s
}

func TestSQLStore_CreateTableIdempotent(t *testing.T) {
	s := setupTestDB(t)
	if err := s.CreateTable(context.Background()); err != nil {
		t.Fatalf("second CreateTable failed: %v", err)
	}

	var name string
	err := s.db.QueryRowContext(context.Background(),
		"SELECT table_name FROM information_schema.tables WHERE table_name = 'audit_entries'").Scan(&name)
	if err != nil {
		t.Fatalf("Table audit_entries does not exist: %v", err)
	}
}

func TestSQLStore_SaveAndGet(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	score := 7
	in := &Entry{
		ID:               "e1",
		Timestamp:        time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		AnalysisID:       "a1",
		Kind:             "image",
		Score:            &score,
		RiskLevel:        "high",
		Summary:          "Likely manipulated",
		ModelsUsed:       "deepfake-image",
		DurationMS:       321,
		DetectorStatuses: map[string]string{"deepfake-image": "ok"},
		RequestID:        "r1",
	}
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := s.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Score == nil || *out.Score != 7 || out.Kind != "image" || out.RequestID != "r1" {
		t.Errorf("unexpected entry: %+v", out)
	}
	if out.DetectorStatuses["deepfake-image"] != "ok" {
		t.Errorf("unexpected statuses: %v", out.DetectorStatuses)
	}
	if !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("timestamp %v, want %v", out.Timestamp, in.Timestamp)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLStore_NullScore(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	if err := s.Save(ctx, &Entry{ID: "u", Timestamp: time.Now(), Kind: "text", RiskLevel: "unknown"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.Get(ctx, "u")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Score != nil {
		t.Errorf("expected nil score, got %d", *out.Score)
	}
}

func TestSQLStore_QueryCountDelete(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	base := seedStore(t, s)

	got, err := s.Query(ctx, QueryFilter{Kinds: []string{"video"}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !equal(ids(got), []string{"3", "1"}) {
		t.Errorf("got %v", ids(got))
	}

	got, err = s.Query(ctx, QueryFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("paged query: %v", err)
	}
	if !equal(ids(got), []string{"3"}) {
		t.Errorf("paged got %v", ids(got))
	}

	n, err := s.Count(ctx, QueryFilter{RiskLevels: []string{"low"}})
	if err != nil || n != 2 {
		t.Errorf("count = %d, %v", n, err)
	}

	deleted, err := s.Delete(ctx, base.Add(90*time.Minute))
	if err != nil || deleted != 2 {
		t.Errorf("delete = %d, %v", deleted, err)
	}
}

func TestOpenStore_Postgres(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	pg, err := testinfra.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	testinfra.CleanupContainer(t, pg)

	st, err := OpenStore(ctx, config.AuditConfig{Driver: DriverPostgres, DSN: pg.DSN})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s := st.(*SQLStore)
	defer s.Close()

	base := seedStore(t, s)
	n, err := s.Count(ctx, QueryFilter{Kinds: []string{"video", "audio"}, StartTime: &base})
	if err != nil || n != 3 {
		t.Errorf("count = %d, %v", n, err)
	}
}
