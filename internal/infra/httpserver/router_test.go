package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalysis "github.com/gitrospector/gitrospector/internal/application/analysis"
	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
	memorydb "github.com/gitrospector/gitrospector/internal/infra/db/memory"
	"github.com/gitrospector/gitrospector/internal/infra/workspace"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeFetcher struct {
	err   error
	urls  []string
	dests []string
}

func (f *fakeFetcher) Clone(_ context.Context, url, dest string) error {
	f.urls = append(f.urls, url)
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

type panickingBuilder struct{}

func (panickingBuilder) Build(context.Context, string) (*domain.Graph, error) {
	panic("analyzer fault")
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Now() }

func newTestHandler(t *testing.T, fetcher domain.Fetcher, builder domain.GraphBuilder) (http.Handler, *workspaceSpy) {
	t.Helper()
	ws := &workspaceSpy{Manager: workspace.New(t.TempDir())}
	svc := &appanalysis.Service{
		Repo:       memorydb.NewAnalysisRepository(),
		Fetcher:    fetcher,
		Builder:    builder,
		Workspaces: ws,
		Clock:      fixedClock{},
	}
	return NewRouter(svc, nil, Options{}), ws
}

// workspaceSpy records real acquisitions so tests can check the
// directories are gone once the response is produced.
type workspaceSpy struct {
	*workspace.Manager
	acquired []string
}

func (s *workspaceSpy) Acquire() (string, error) {
	path, err := s.Manager.Acquire()
	if err == nil {
		s.acquired = append(s.acquired, path)
	}
	return path, err
}

func postAnalyze(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRootEndpoint(t *testing.T) {
	h, _ := newTestHandler(t, &fakeFetcher{}, &fakeBuilder{graph: &domain.Graph{}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "GitHub Repository Analysis API", body["message"])
}

func TestAnalyzeEndpoint_MissingURL(t *testing.T) {
	h, _ := newTestHandler(t, &fakeFetcher{}, &fakeBuilder{graph: &domain.Graph{}})

	for _, body := range []string{"{}", "", "not json", `{"github_url": ""}`} {
		rec := postAnalyze(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		out := decodeBody(t, rec)
		assert.Equal(t, "error", out["status"])
		assert.Equal(t, "GitHub URL is required", out["message"])
	}
}

func TestAnalyzeEndpoint_InvalidURL(t *testing.T) {
	fetcher := &fakeFetcher{}
	h, _ := newTestHandler(t, fetcher, &fakeBuilder{graph: &domain.Graph{}})

	rec := postAnalyze(t, h, `{"github_url": "https://github.com/acme/widgets"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "Invalid GitHub URL format", out["message"])
	// Validation precedes every side effect.
	assert.Empty(t, fetcher.urls)
}

func TestAnalyzeEndpoint_CloneFailure(t *testing.T) {
	h, ws := newTestHandler(t, &fakeFetcher{err: errors.New("authentication required")}, &fakeBuilder{graph: &domain.Graph{}})

	rec := postAnalyze(t, h, `{"github_url": "https://github.com/acme/private.git"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "error", out["status"])
	assert.Contains(t, out["message"], "Failed to clone repository")
	assert.Contains(t, out["message"], "authentication required")
	assertWorkspacesGone(t, ws)
}

func TestAnalyzeEndpoint_BuildFailure(t *testing.T) {
	h, ws := newTestHandler(t, &fakeFetcher{}, &fakeBuilder{err: errors.New("malformed source")})

	rec := postAnalyze(t, h, `{"github_url": "https://github.com/acme/widgets.git"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "error", out["status"])
	assert.Contains(t, out["message"], "Graph analysis failed")
	assertWorkspacesGone(t, ws)
}

func TestAnalyzeEndpoint_PanicBecomesErrorEnvelope(t *testing.T) {
	h, ws := newTestHandler(t, &fakeFetcher{}, panickingBuilder{})

	rec := postAnalyze(t, h, `{"github_url": "https://github.com/acme/widgets.git"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "internal server error", out["message"])
	// Deferred release still runs while the stack unwinds.
	assertWorkspacesGone(t, ws)
}

func TestAnalyzeEndpoint_EmptyGraph(t *testing.T) {
	h, ws := newTestHandler(t, &fakeFetcher{}, &fakeBuilder{graph: &domain.Graph{}})

	rec := postAnalyze(t, h, `{"github_url": "https://github.com/acme/empty.git"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"status":"success","data":{"nodes":[],"relationships":[]}}`,
		rec.Body.String())
	assertWorkspacesGone(t, ws)
}

func TestAnalyzeEndpoint_PopulatedGraph(t *testing.T) {
	graph := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "a", Properties: map[string]any{"label": "FUNCTION", "name": "A"}},
			{ID: "b", Properties: map[string]any{"label": "FUNCTION", "name": "B"}},
		},
		Relationships: []domain.Relationship{
			{ID: "r1", Source: "a", Target: "b", Type: "CALLS"},
		},
	}
	h, ws := newTestHandler(t, &fakeFetcher{}, &fakeBuilder{graph: graph})

	rec := postAnalyze(t, h, `{"github_url": "https://github.com/acme/widgets.git"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "success", out["status"])

	data := out["data"].(map[string]any)
	nodes := data["nodes"].([]any)
	rels := data["relationships"].([]any)
	require.Len(t, nodes, 2)
	require.Len(t, rels, 1)

	first := nodes[0].(map[string]any)
	assert.Equal(t, "a", first["id"])
	assert.Equal(t, map[string]any{"label": "FUNCTION", "name": "A"}, first["properties"])

	rel := rels[0].(map[string]any)
	assert.Equal(t, "r1", rel["id"])
	assert.Equal(t, "a", rel["source"])
	assert.Equal(t, "b", rel["target"])
	assert.Equal(t, "CALLS", rel["type"])
	assertWorkspacesGone(t, ws)
}

func TestAnalysesEndpoints(t *testing.T) {
	h, _ := newTestHandler(t, &fakeFetcher{}, &fakeBuilder{graph: &domain.Graph{}})

	rec := postAnalyze(t, h, `{"github_url": "https://github.com/acme/widgets.git"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/analyses/latest", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "https://github.com/acme/widgets.git", list[0]["repository_url"])
	assert.Equal(t, "success", list[0]["status"])

	id := list[0]["id"].(string)
	req = httptest.NewRequest(http.MethodGet, "/analyses/"+id, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/analyses/does-not-exist", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "error", out["status"])
}

func TestSummarizeEndpoint_Unconfigured(t *testing.T) {
	h, _ := newTestHandler(t, &fakeFetcher{}, &fakeBuilder{graph: &domain.Graph{}})

	req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(`{"github_url": "https://github.com/acme/widgets.git"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOpenAPIDocument(t *testing.T) {
	h, _ := newTestHandler(t, &fakeFetcher{}, &fakeBuilder{graph: &domain.Graph{}})

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	paths := out["paths"].(map[string]any)
	assert.Contains(t, paths, "/analyze")
	assert.Contains(t, paths, "/summarize")
}

// assertWorkspacesGone verifies every workspace created for the request
// no longer exists once the response has been produced.
func assertWorkspacesGone(t *testing.T, ws *workspaceSpy) {
	t.Helper()
	require.NotEmpty(t, ws.acquired)
	for _, path := range ws.acquired {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "workspace %s should be removed", path)
	}
}
