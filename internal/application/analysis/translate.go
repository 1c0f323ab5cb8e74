package analysis

import (
	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
)

// Translate maps builder output to the response shape. Fields pass
// through verbatim and the builder's enumeration order is preserved.
// A nil graph or nil collections come back as empty slices, not an
// error: a builder that found nothing is a valid outcome.
func Translate(g *domain.Graph) domain.Result {
	res := domain.Result{
		Nodes:         []domain.Node{},
		Relationships: []domain.Relationship{},
	}
	if g == nil {
		return res
	}
	if g.Nodes != nil {
		res.Nodes = g.Nodes
	}
	if g.Relationships != nil {
		res.Relationships = g.Relationships
	}
	return res
}

func countGraph(r domain.Result) domain.GraphCounts {
	files := 0
	for _, n := range r.Nodes {
		if label, ok := n.Properties["label"].(string); ok && label == "FILE" {
			files++
		}
	}
	return domain.GraphCounts{
		Nodes:         len(r.Nodes),
		Relationships: len(r.Relationships),
		Files:         files,
	}
}
