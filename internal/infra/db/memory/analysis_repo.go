package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
)

// AnalysisRepository keeps run history in memory. It is the default
// when no database is configured, and doubles as the test repo.
type AnalysisRepository struct {
	mu   sync.RWMutex
	runs map[domain.AnalysisID]*domain.Analysis
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{runs: make(map[domain.AnalysisID]*domain.Analysis)}
}

func (r *AnalysisRepository) Save(_ context.Context, a *domain.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *a
	r.runs[a.ID] = &copied
	return nil
}

func (r *AnalysisRepository) Get(_ context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *AnalysisRepository) Latest(_ context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Analysis, 0, len(r.runs))
	for _, a := range r.runs {
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TriggeredAt.After(out[j].TriggeredAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AnalysisRepository) Summary(_ context.Context, sinceDays int) (int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cutoff := time.Now().AddDate(0, 0, -sinceDays)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var total, succeeded, failed int
	for _, a := range r.runs {
		if a.TriggeredAt.Before(cutoff) {
			continue
		}
		total++
		switch a.Status {
		case domain.StatusSuccess:
			succeeded++
		case domain.StatusFailed:
			failed++
		}
	}
	return total, succeeded, failed, nil
}
