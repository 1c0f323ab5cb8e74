package analysis

import "context"

// Repository port (interface untuk run-history persistence)
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, id AnalysisID) (*Analysis, error)
	Latest(ctx context.Context, limit int) ([]*Analysis, error)
	Summary(ctx context.Context, sinceDays int) (total, succeeded, failed int, err error)
}

// Fetcher port: clones a remote repository into dest.
type Fetcher interface {
	Clone(ctx context.Context, url, dest string) error
}

// GraphBuilder port: builds a code graph from a local source tree.
type GraphBuilder interface {
	Build(ctx context.Context, dir string) (*Graph, error)
}

// WorkspaceManager port: per-request temp directory lifecycle.
// Release must be safe to call on every exit path and must never
// surface a failure to the caller.
type WorkspaceManager interface {
	Acquire() (string, error)
	Release(path string)
}
