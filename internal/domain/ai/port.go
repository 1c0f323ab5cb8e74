package ai

import (
	"context"

	"github.com/gitrospector/gitrospector/internal/domain/analysis"
)

type Client interface {
	Summarize(ctx context.Context, repoURL string, graph analysis.Result) (string, error)
}
