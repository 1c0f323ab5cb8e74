package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
	memorydb "github.com/gitrospector/gitrospector/internal/infra/db/memory"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeFetcher struct {
	err    error
	dests  []string
	called int
}

func (f *fakeFetcher) Clone(_ context.Context, _, dest string) error {
	f.called++
	f.dests = append(f.dests, dest)
	return f.err
}

type fakeBuilder struct {
	graph *domain.Graph
	err   error
}

func (f *fakeBuilder) Build(_ context.Context, _ string) (*domain.Graph, error) {
	return f.graph, f.err
}

type fakeWorkspaces struct {
	acquireErr error
	acquired   int
	released   []string
}

func (f *fakeWorkspaces) Acquire() (string, error) {
	if f.acquireErr != nil {
		return "", f.acquireErr
	}
	f.acquired++
	return "/tmp/fake-workspace", nil
}

func (f *fakeWorkspaces) Release(path string) {
	f.released = append(f.released, path)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newService(fetcher domain.Fetcher, builder domain.GraphBuilder, ws *fakeWorkspaces) (*Service, *memorydb.AnalysisRepository) {
	repo := memorydb.NewAnalysisRepository()
	return &Service{
		Repo:       repo,
		Fetcher:    fetcher,
		Builder:    builder,
		Workspaces: ws,
		Clock:      fixedClock{t: time.Now()},
	}, repo
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAnalyze_TranslatesGraphVerbatim(t *testing.T) {
	graph := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "a", Properties: map[string]any{"label": "FILE", "path": "a.go"}},
			{ID: "b", Properties: map[string]any{"label": "FUNCTION", "name": "B"}},
		},
		Relationships: []domain.Relationship{
			{ID: "r1", Source: "a", Target: "b", Type: "CALLS"},
		},
	}
	ws := &fakeWorkspaces{}
	svc, repo := newService(&fakeFetcher{}, &fakeBuilder{graph: graph}, ws)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{RepositoryURL: "https://github.com/acme/widgets.git"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusSuccess), res.Status)
	require.Len(t, res.Graph.Nodes, 2)
	assert.Equal(t, "a", res.Graph.Nodes[0].ID)
	assert.Equal(t, map[string]any{"label": "FILE", "path": "a.go"}, res.Graph.Nodes[0].Properties)
	require.Len(t, res.Graph.Relationships, 1)
	assert.Equal(t, domain.Relationship{ID: "r1", Source: "a", Target: "b", Type: "CALLS"}, res.Graph.Relationships[0])

	// Workspace released exactly once.
	assert.Equal(t, 1, ws.acquired)
	assert.Equal(t, []string{"/tmp/fake-workspace"}, ws.released)

	// Run record persisted with counts but never the graph.
	saved, err := repo.Get(context.Background(), domain.AnalysisID(res.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, saved.Status)
	assert.Equal(t, domain.GraphCounts{Nodes: 2, Relationships: 1, Files: 1}, saved.Counts)
}

func TestAnalyze_EmptyGraphIsSuccess(t *testing.T) {
	svc, _ := newService(&fakeFetcher{}, &fakeBuilder{graph: &domain.Graph{}}, &fakeWorkspaces{})

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{RepositoryURL: "https://github.com/acme/empty.git"})
	require.NoError(t, err)

	assert.NotNil(t, res.Graph.Nodes)
	assert.NotNil(t, res.Graph.Relationships)
	assert.Empty(t, res.Graph.Nodes)
	assert.Empty(t, res.Graph.Relationships)
}

func TestAnalyze_FetchFailureReleasesWorkspace(t *testing.T) {
	ws := &fakeWorkspaces{}
	svc, repo := newService(&fakeFetcher{err: errors.New("repository not found")}, &fakeBuilder{}, ws)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{RepositoryURL: "https://github.com/acme/gone.git"})
	require.Error(t, err)
	assert.Equal(t, domain.KindFetch, domain.KindOf(err))
	assert.Equal(t, string(domain.StatusFailed), res.Status)
	assert.Len(t, ws.released, 1)

	saved, err := repo.Get(context.Background(), domain.AnalysisID(res.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, saved.Status)
	assert.Contains(t, saved.Error, "repository not found")
}

func TestAnalyze_BuildFailureReleasesWorkspace(t *testing.T) {
	ws := &fakeWorkspaces{}
	svc, _ := newService(&fakeFetcher{}, &fakeBuilder{err: errors.New("parser exploded")}, ws)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{RepositoryURL: "https://github.com/acme/widgets.git"})
	require.Error(t, err)
	assert.Equal(t, domain.KindAnalysis, domain.KindOf(err))
	assert.Len(t, ws.released, 1)
}

func TestAnalyze_AcquireFailureIsFatal(t *testing.T) {
	ws := &fakeWorkspaces{acquireErr: errors.New("disk full")}
	fetcher := &fakeFetcher{}
	svc, _ := newService(fetcher, &fakeBuilder{}, ws)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{RepositoryURL: "https://github.com/acme/widgets.git"})
	require.Error(t, err)
	// No clone attempt, nothing to release.
	assert.Zero(t, fetcher.called)
	assert.Empty(t, ws.released)
}

func TestTranslate_NilGraphAndNilCollections(t *testing.T) {
	res := Translate(nil)
	assert.NotNil(t, res.Nodes)
	assert.NotNil(t, res.Relationships)

	res = Translate(&domain.Graph{})
	assert.NotNil(t, res.Nodes)
	assert.NotNil(t, res.Relationships)
	assert.Empty(t, res.Nodes)
}

func TestTranslate_PreservesOrder(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.Node{{ID: "z"}, {ID: "a"}, {ID: "m"}},
		Relationships: []domain.Relationship{
			{ID: "r2", Source: "z", Target: "a", Type: "IMPORTS"},
			{ID: "r1", Source: "a", Target: "m", Type: "CALLS"},
		},
	}
	res := Translate(g)
	assert.Equal(t, "z", res.Nodes[0].ID)
	assert.Equal(t, "a", res.Nodes[1].ID)
	assert.Equal(t, "m", res.Nodes[2].ID)
	assert.Equal(t, "r2", res.Relationships[0].ID)
	assert.Equal(t, "r1", res.Relationships[1].ID)
}

func TestSummary_MapShape(t *testing.T) {
	svc, repo := newService(&fakeFetcher{}, &fakeBuilder{graph: &domain.Graph{}}, &fakeWorkspaces{})
	require.NoError(t, repo.Save(context.Background(), &domain.Analysis{
		ID:          "one",
		TriggeredAt: time.Now(),
		Status:      domain.StatusSuccess,
	}))
	require.NoError(t, repo.Save(context.Background(), &domain.Analysis{
		ID:          "two",
		TriggeredAt: time.Now(),
		Status:      domain.StatusFailed,
	}))

	summary, err := svc.Summary(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, summary["total_analyses"])
	assert.Equal(t, 1, summary["succeeded"])
	assert.Equal(t, 1, summary["failed"])
}
