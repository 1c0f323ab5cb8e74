package analysis

// Node is one code entity recognized by the graph builder. Properties
// are passed through verbatim; their keys are the builder's business.
type Node struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

// Relationship is a typed, directed edge between two node IDs.
type Relationship struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Graph is the raw builder output. Either slice may be nil when the
// builder found nothing; consumers must treat nil as empty.
type Graph struct {
	Nodes         []Node
	Relationships []Relationship
}

// Result is the JSON-ready shape returned to the caller. Both slices
// are always non-nil so empty graphs serialize as [] and not null.
type Result struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}
