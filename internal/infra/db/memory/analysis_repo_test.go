package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
)

func run(id string, age time.Duration, status domain.Status) *domain.Analysis {
	return &domain.Analysis{
		ID:            domain.AnalysisID(id),
		RepositoryURL: "https://github.com/acme/" + id + ".git",
		TriggeredAt:   time.Now().Add(-age),
		Status:        status,
	}
}

func TestSaveIsUpsert(t *testing.T) {
	repo := NewAnalysisRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, run("one", 0, domain.StatusRunning)))
	require.NoError(t, repo.Save(ctx, run("one", 0, domain.StatusSuccess)))

	got, err := repo.Get(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, got.Status)
}

func TestGetUnknownID(t *testing.T) {
	repo := NewAnalysisRepository()
	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLatestOrdersNewestFirst(t *testing.T) {
	repo := NewAnalysisRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, run("old", 3*time.Hour, domain.StatusSuccess)))
	require.NoError(t, repo.Save(ctx, run("mid", 2*time.Hour, domain.StatusFailed)))
	require.NoError(t, repo.Save(ctx, run("new", time.Hour, domain.StatusSuccess)))

	list, err := repo.Latest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.AnalysisID("new"), list[0].ID)
	assert.Equal(t, domain.AnalysisID("mid"), list[1].ID)
}

func TestSummaryWindow(t *testing.T) {
	repo := NewAnalysisRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, run("recent-ok", time.Hour, domain.StatusSuccess)))
	require.NoError(t, repo.Save(ctx, run("recent-bad", time.Hour, domain.StatusFailed)))
	require.NoError(t, repo.Save(ctx, run("ancient", 30*24*time.Hour, domain.StatusSuccess)))

	total, succeeded, failed, err := repo.Summary(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
}

func TestSavedRecordsAreIsolated(t *testing.T) {
	repo := NewAnalysisRepository()
	ctx := context.Background()

	a := run("iso", 0, domain.StatusRunning)
	require.NoError(t, repo.Save(ctx, a))
	a.Status = domain.StatusFailed // caller mutation must not leak in

	got, err := repo.Get(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)
}
