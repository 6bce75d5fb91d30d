// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/truthx/internal/config"
	"github.com/tomtom215/truthx/internal/logging"
	"github.com/tomtom215/truthx/internal/metrics"
	"github.com/tomtom215/truthx/internal/report"
)

const saveTimeout = 5 * time.Second

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether audit logging is active.
	Enabled bool `json:"enabled"`

	// RetentionDays is how long to keep entries. Zero keeps them forever.
	RetentionDays int `json:"retention_days"`

	// CleanupInterval is how often to run retention cleanup.
	CleanupInterval time.Duration `json:"cleanup_interval"`

	// BufferSize is the size of the async write buffer.
	BufferSize int `json:"buffer_size"`

	// LogToStdout also writes entries to the application log.
	LogToStdout bool `json:"log_to_stdout"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		RetentionDays:   30,
		CleanupInterval: 24 * time.Hour,
		BufferSize:      1000,
	}
}

// ConfigFromApp derives logger settings from the application config.
func ConfigFromApp(cfg config.AuditConfig) *Config {
	c := DefaultConfig()
	c.Enabled = cfg.Enabled
	c.RetentionDays = cfg.RetentionDays
	if cfg.BufferSize > 0 {
		c.BufferSize = cfg.BufferSize
	}
	return c
}

// Logger records finished analyses asynchronously. Log never blocks the
// request path; when the buffer is full the entry is dropped and counted.
type Logger struct {
	config   *Config
	store    Store
	entries  chan *Entry
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewLogger creates a new audit logger and starts its writer.
func NewLogger(store Store, cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}

	l := &Logger{
		config:   cfg,
		store:    store,
		entries:  make(chan *Entry, cfg.BufferSize),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// Drain remaining entries
			for {
				select {
				case e := <-l.entries:
					l.write(e)
				default:
					return
				}
			}
		case e := <-l.entries:
			l.write(e)
		}
	}
}

func (l *Logger) write(e *Entry) {
	l.mu.RLock()
	cfg := l.config
	l.mu.RUnlock()

	if cfg.LogToStdout {
		if data, err := json.Marshal(e); err == nil {
			logging.Info().RawJSON("entry", data).Msg("Audit entry")
		}
	}

	if l.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := l.store.Save(ctx, e); err != nil {
		logging.Err(err).Str("analysis_id", e.AnalysisID).Msg("Failed to save audit entry")
	}
}

// Log records an entry. It returns immediately.
func (l *Logger) Log(e *Entry) {
	if !l.Enabled() {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	select {
	case <-l.stopChan:
		metrics.AuditEventsDropped.Inc()
		return
	default:
	}

	select {
	case l.entries <- e:
	default:
		metrics.AuditEventsDropped.Inc()
		logging.Warn().Str("analysis_id", e.AnalysisID).Msg("Audit buffer full, dropping entry")
	}
}

// LogAnalysis records the outcome of a finished analysis.
func (l *Logger) LogAnalysis(ctx context.Context, r *report.Report) {
	if r == nil {
		return
	}
	l.Log(EntryFromReport(ctx, r))
}

// EntryFromReport extracts the auditable fields of r.
func EntryFromReport(ctx context.Context, r *report.Report) *Entry {
	statuses := make(map[string]string, len(r.DetectorResults))
	for _, res := range r.DetectorResults {
		statuses[res.Detector] = string(res.Status)
	}
	return &Entry{
		Timestamp:        r.AnalyzedAt,
		AnalysisID:       r.AnalysisID,
		Kind:             r.Kind,
		Score:            r.Score,
		RiskLevel:        string(r.RiskLevel),
		Summary:          r.Summary,
		ModelsUsed:       r.ModelsUsed,
		DurationMS:       r.DurationMS,
		DetectorStatuses: statuses,
		RequestID:        logging.RequestIDFromContext(ctx),
	}
}

// Close stops the writer after flushing buffered entries. It is safe to
// call more than once.
func (l *Logger) Close() error {
	l.stopOnce.Do(func() { close(l.stopChan) })
	l.wg.Wait()
	return nil
}

// Cleanup deletes entries older than the retention window.
func (l *Logger) Cleanup(ctx context.Context) (int64, error) {
	l.mu.RLock()
	retention := l.config.RetentionDays
	l.mu.RUnlock()

	if retention <= 0 || l.store == nil {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retention)
	return l.store.Delete(ctx, cutoff)
}

// RunRetention runs Cleanup every CleanupInterval until ctx is cancelled.
// It matches the supervisor's service signature.
func (l *Logger) RunRetention(ctx context.Context) error {
	l.mu.RLock()
	interval := l.config.CleanupInterval
	l.mu.RUnlock()
	if interval <= 0 {
		interval = DefaultConfig().CleanupInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			count, err := l.Cleanup(ctx)
			if err != nil {
				logging.Err(err).Msg("Audit cleanup error")
			} else if count > 0 {
				logging.Info().Int64("count", count).Msg("Cleaned up old audit entries")
			}
		}
	}
}

// Query retrieves entries matching the filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	return l.store.Query(ctx, filter)
}

// Count returns the number of entries matching the filter.
func (l *Logger) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return l.store.Count(ctx, filter)
}

// SetEnabled enables or disables audit logging.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Enabled = enabled
}

// Enabled returns whether audit logging is enabled.
func (l *Logger) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config.Enabled
}
