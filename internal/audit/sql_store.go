// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	// Registers the "duckdb" database/sql driver.
	_ "github.com/duckdb/duckdb-go/v2"
	// Registers the "postgres" database/sql driver.
	_ "github.com/lib/pq"

	"github.com/tomtom215/truthx/internal/config"
	"github.com/tomtom215/truthx/internal/logging"
)

// Supported drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// SQLStore implements Store on database/sql. The same schema serves DuckDB
// and PostgreSQL; only the placeholder syntax differs.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore wraps an open database. The caller must call CreateTable
// before first use.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// OpenStore opens the store named by cfg.Driver and ensures its schema.
// A SQL-backed store must be closed by the caller.
func OpenStore(ctx context.Context, cfg config.AuditConfig) (Store, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(0), nil
	case DriverDuckDB, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported audit driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s audit store: %w", cfg.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s audit store: %w", cfg.Driver, err)
	}

	s := NewSQLStore(db, cfg.Driver)
	if err := s.CreateTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logging.Info().Str("driver", cfg.Driver).Msg("Audit store ready")
	return s, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// placeholder returns the n-th (1-based) bind parameter.
func (s *SQLStore) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// CreateTable creates the audit_entries table if it doesn't exist.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS audit_entries (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			analysis_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			score INTEGER,
			risk_level TEXT NOT NULL,
			summary TEXT NOT NULL,
			models_used TEXT,
			duration_ms BIGINT NOT NULL,
			detector_statuses TEXT,
			request_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entries_timestamp ON audit_entries(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entries_kind ON audit_entries(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entries_risk ON audit_entries(risk_level)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Save persists an entry.
func (s *SQLStore) Save(ctx context.Context, e *Entry) error {
	if e == nil {
		return fmt.Errorf("entry cannot be nil")
	}
	statuses, err := json.Marshal(e.DetectorStatuses)
	if err != nil {
		return fmt.Errorf("marshal detector statuses: %w", err)
	}
	var score sql.NullInt64
	if e.Score != nil {
		score = sql.NullInt64{Int64: int64(*e.Score), Valid: true}
	}

	ph := make([]string, 11)
	for i := range ph {
		ph[i] = s.placeholder(i + 1)
	}
	query := `INSERT INTO audit_entries (id, timestamp, analysis_id, kind, score, risk_level,
		summary, models_used, duration_ms, detector_statuses, request_id)
		VALUES (` + strings.Join(ph, ", ") + `)`

	_, err = s.db.ExecContext(ctx, query,
		e.ID, e.Timestamp, e.AnalysisID, e.Kind, score, e.RiskLevel,
		e.Summary, e.ModelsUsed, e.DurationMS, string(statuses), e.RequestID)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, timestamp, analysis_id, kind, score, risk_level, summary,
	models_used, duration_ms, detector_statuses, request_id FROM audit_entries`

// Get retrieves an entry by ID.
func (s *SQLStore) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = "+s.placeholder(1), id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Query retrieves entries matching the filter, newest first.
func (s *SQLStore) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	where, args := s.buildWhere(&filter)
	query := selectColumns + where + " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT " + s.placeholder(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET " + s.placeholder(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries matching the filter.
func (s *SQLStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	where, args := s.buildWhere(&filter)
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_entries"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return count, nil
}

// Delete removes entries older than the given time.
func (s *SQLStore) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM audit_entries WHERE timestamp < "+s.placeholder(1), olderThan)
	if err != nil {
		return 0, fmt.Errorf("delete audit entries: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLStore) buildWhere(f *QueryFilter) (string, []any) {
	var conds []string
	var args []any

	in := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		ph := make([]string, len(values))
		for i, v := range values {
			args = append(args, v)
			ph[i] = s.placeholder(len(args))
		}
		conds = append(conds, fmt.Sprintf("%s IN (%s)", column, strings.Join(ph, ",")))
	}
	in("kind", f.Kinds)
	in("risk_level", f.RiskLevels)

	if f.StartTime != nil {
		args = append(args, *f.StartTime)
		conds = append(conds, "timestamp >= "+s.placeholder(len(args)))
	}
	if f.EndTime != nil {
		args = append(args, *f.EndTime)
		conds = append(conds, "timestamp <= "+s.placeholder(len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		e         Entry
		score     sql.NullInt64
		models    sql.NullString
		statuses  sql.NullString
		requestID sql.NullString
	)
	err := row.Scan(&e.ID, &e.Timestamp, &e.AnalysisID, &e.Kind, &score, &e.RiskLevel,
		&e.Summary, &models, &e.DurationMS, &statuses, &requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan audit entry: %w", err)
	}
	if score.Valid {
		v := int(score.Int64)
		e.Score = &v
	}
	e.ModelsUsed = models.String
	e.RequestID = requestID.String
	if statuses.Valid && statuses.String != "" {
		if err := json.Unmarshal([]byte(statuses.String), &e.DetectorStatuses); err != nil {
			return nil, fmt.Errorf("unmarshal detector statuses: %w", err)
		}
	}
	return &e, nil
}
