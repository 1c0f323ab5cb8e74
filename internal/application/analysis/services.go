package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
)

// Service implements use-cases untuk Analysis
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Repo       domain.Repository
	Fetcher    domain.Fetcher
	Builder    domain.GraphBuilder
	Workspaces domain.WorkspaceManager
	Clock      Clock
}

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

//
// ==== USE CASES ====
//

// Command untuk trigger analysis. URL is already validated at the edge;
// the pipeline performs no side effect before the edge has accepted it.
type AnalyzeCommand struct {
	RepositoryURL string
}

type AnalyzeResult struct {
	ID         string        `json:"id"`
	Status     string        `json:"status"`
	Graph      domain.Result `json:"graph"`
	DurationMS int64         `json:"duration_ms"`
}

// Analyze runs the full pipeline: acquire workspace → clone → build →
// translate. The workspace is released on every exit path; release
// failures never reach the caller.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (AnalyzeResult, error) {
	now := s.Clock.Now()
	id := domain.AnalysisID(uuid.New().String())

	// Initial row so the run is visible while it executes.
	initial := &domain.Analysis{
		ID:            id,
		RepositoryURL: cmd.RepositoryURL,
		TriggeredAt:   now,
		Status:        domain.StatusRunning,
	}
	if err := s.Repo.Save(ctx, initial); err != nil {
		return AnalyzeResult{ID: string(id), Status: string(domain.StatusFailed)}, err
	}

	ws, err := s.Workspaces.Acquire()
	if err != nil {
		// Cannot happen under normal operating conditions; treated as fatal.
		s.markFailed(id, cmd, now, err)
		return AnalyzeResult{ID: string(id), Status: string(domain.StatusFailed)}, err
	}
	defer s.Workspaces.Release(ws)

	if err := s.Fetcher.Clone(ctx, cmd.RepositoryURL, ws); err != nil {
		s.markFailed(id, cmd, now, err)
		return AnalyzeResult{ID: string(id), Status: string(domain.StatusFailed)},
			domain.NewFetchError(err)
	}

	graph, err := s.Builder.Build(ctx, ws)
	if err != nil {
		s.markFailed(id, cmd, now, err)
		return AnalyzeResult{ID: string(id), Status: string(domain.StatusFailed)},
			domain.NewAnalysisError(err)
	}

	result := Translate(graph)
	durationMS := time.Since(now).Milliseconds()

	done := &domain.Analysis{
		ID:            id,
		RepositoryURL: cmd.RepositoryURL,
		TriggeredAt:   now,
		Status:        domain.StatusSuccess,
		Counts:        countGraph(result),
		DurationMS:    durationMS,
	}
	if err := s.Repo.Save(ctx, done); err != nil {
		return AnalyzeResult{ID: string(id), Status: string(domain.StatusFailed)}, err
	}

	return AnalyzeResult{
		ID:         string(id),
		Status:     string(domain.StatusSuccess),
		Graph:      result,
		DurationMS: durationMS,
	}, nil
}

// markFailed records the failure outcome. Uses context.Background() so
// the record survives a cancelled request context.
func (s *Service) markFailed(id domain.AnalysisID, cmd AnalyzeCommand, triggered time.Time, cause error) {
	_ = s.Repo.Save(context.Background(), &domain.Analysis{
		ID:            id,
		RepositoryURL: cmd.RepositoryURL,
		TriggeredAt:   triggered,
		Status:        domain.StatusFailed,
		DurationMS:    time.Since(triggered).Milliseconds(),
		Error:         cause.Error(),
	})
}

// Latest ambil N analysis terakhir
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	return s.Repo.Latest(ctx, limit)
}

// Get ambil 1 analysis by id
func (s *Service) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	return s.Repo.Get(ctx, id)
}

// Summary rekap hasil analysis N hari terakhir
func (s *Service) Summary(ctx context.Context, sinceDays int) (map[string]any, error) {
	total, succeeded, failed, err := s.Repo.Summary(ctx, sinceDays)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_analyses": total,
		"succeeded":      succeeded,
		"failed":         failed,
	}, nil
}
