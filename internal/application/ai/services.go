package ai

import (
	"context"

	"github.com/gitrospector/gitrospector/internal/domain/ai"
	"github.com/gitrospector/gitrospector/internal/domain/analysis"
)

type Service struct {
	client ai.Client
}

func NewService(client ai.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Summarize(ctx context.Context, repoURL string, graph analysis.Result) (string, error) {
	return s.client.Summarize(ctx, repoURL, graph)
}
