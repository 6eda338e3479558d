package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/klaudiaxhika/grocer-ease-app/internal/shared"
)

// ExtractionMetric records metadata for a single recipe extraction run.
type ExtractionMetric struct {
	Source           string
	Model            string
	PromptTokens     int
	CompletionTokens int
	DurationMS       int64
	Success          bool
	Timestamp        time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m ExtractionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO extraction_metrics (source, model, prompt_tokens, completion_tokens, duration_ms, success, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Source, m.Model, m.PromptTokens, m.CompletionTokens, m.DurationMS, m.Success, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to record extraction metric: %w", err)
	}
	return nil
}

// RecordMeta records metrics directly from shared.ExtractionMeta.
func (s *Store) RecordMeta(ctx context.Context, meta shared.ExtractionMeta) error {
	return s.Record(ctx, ExtractionMetric{
		Source:           meta.Source,
		Model:            meta.Usage.Model,
		PromptTokens:     meta.Usage.PromptTokens,
		CompletionTokens: meta.Usage.CompletionTokens,
		DurationMS:       meta.Latency.Milliseconds(),
		Success:          meta.Success,
	})
}

// DailyUsage represents extraction totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalRuns       int
}

// GetDailyUsage retrieves usage for the last N days.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().AddDate(0, 0, -days).Format("2006-01-02 15:04:05")
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(created_at) AS day,
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COUNT(*)
		FROM extraction_metrics
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day DESC`, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.TotalPrompt, &u.TotalCompletion, &u.TotalRuns); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage row: %w", err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily usage rows: %w", err)
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM extraction_metrics WHERE created_at < ?", threshold,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup extraction metrics: %w", err)
	}
	return res.RowsAffected()
}
