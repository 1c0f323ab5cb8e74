package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

// Save insert/update Analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO analysis_runs
(id, repository_url, triggered_at, status,
 nodes_total, relationships_total, files_total,
 duration_ms, error)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 nodes_total = EXCLUDED.nodes_total,
 relationships_total = EXCLUDED.relationships_total,
 files_total = EXCLUDED.files_total,
 duration_ms = EXCLUDED.duration_ms,
 error = EXCLUDED.error;`

	status := stringOrDash(string(a.Status))
	triggered := a.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.RepositoryURL, triggered, status,
		a.Counts.Nodes, a.Counts.Relationships, a.Counts.Files,
		a.DurationMS, a.Error,
	)
	return err
}

// Get by ID
func (r *AnalysisRepository) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	const q = `
SELECT id, repository_url, triggered_at, status,
       nodes_total, relationships_total, files_total,
       duration_ms, error
FROM analysis_runs
WHERE id=$1 LIMIT 1;`

	var a domain.Analysis
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.RepositoryURL, &a.TriggeredAt, &a.Status,
		&a.Counts.Nodes, &a.Counts.Relationships, &a.Counts.Files,
		&a.DurationMS, &a.Error,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Latest runs, newest first
func (r *AnalysisRepository) Latest(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, repository_url, triggered_at, status,
       nodes_total, relationships_total, files_total,
       duration_ms, error
FROM analysis_runs
ORDER BY triggered_at DESC LIMIT $1;`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		var a domain.Analysis
		if err := rows.Scan(
			&a.ID, &a.RepositoryURL, &a.TriggeredAt, &a.Status,
			&a.Counts.Nodes, &a.Counts.Relationships, &a.Counts.Files,
			&a.DurationMS, &a.Error,
		); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Summary counts run outcomes since N days
func (r *AnalysisRepository) Summary(ctx context.Context, sinceDays int) (int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status='success'),
       COUNT(*) FILTER (WHERE status='failed')
FROM analysis_runs
WHERE triggered_at >= NOW() - ($1::text || ' days')::interval;`

	var total, succeeded, failed int
	err := r.db.QueryRowContext(ctx, q, sinceDays).Scan(&total, &succeeded, &failed)
	return total, succeeded, failed, err
}

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
