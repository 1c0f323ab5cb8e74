package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save insert/update Analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO analysis_runs
(id, repository_url, triggered_at, status,
 nodes_total, relationships_total, files_total,
 duration_ms, error)
VALUES (?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 nodes_total=VALUES(nodes_total),
 relationships_total=VALUES(relationships_total),
 files_total=VALUES(files_total),
 duration_ms=VALUES(duration_ms),
 error=VALUES(error);
`
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
WHERE id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, id)

	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return a, err
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
ORDER BY triggered_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
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
       COALESCE(SUM(status='success'),0),
       COALESCE(SUM(status='failed'),0)
FROM analysis_runs
WHERE triggered_at >= NOW() - INTERVAL ? DAY;
`
	var total, succeeded, failed int
	err := r.db.QueryRowContext(ctx, q, sinceDays).Scan(&total, &succeeded, &failed)
	return total, succeeded, failed, err
}

// rowScanner works for both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	if err := row.Scan(
		&a.ID, &a.RepositoryURL, &a.TriggeredAt, &a.Status,
		&a.Counts.Nodes, &a.Counts.Relationships, &a.Counts.Files,
		&a.DurationMS, &a.Error,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
