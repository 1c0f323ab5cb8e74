package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gitrospector/gitrospector/internal/domain/analysis"
)

// GetSystemPrompt provides strict directions for the summary output.
func GetSystemPrompt() string {
	return `You are a senior software architect. You will receive a structural summary of a code graph extracted from a repository: node counts grouped by label (FILE, FUNCTION, CLASS, MODULE, ...) and relationship counts grouped by type (DEFINES, IMPORTS, CALLS).

Write a concise plain-text assessment of the codebase's shape: its apparent size, the dominant languages, how interconnected the files are, and anything notable about the import or call structure. Do not use markdown, do not invent details the numbers cannot support, and keep the answer under 200 words.`
}

// GetUserPrompt condenses a graph into label/type tallies the model can
// reason about without ever seeing source code.
func GetUserPrompt(repoURL string, graph analysis.Result) string {
	nodeCounts := map[string]int{}
	for _, n := range graph.Nodes {
		label, _ := n.Properties["label"].(string)
		if label == "" {
			label = "UNKNOWN"
		}
		nodeCounts[label]++
	}
	relCounts := map[string]int{}
	for _, r := range graph.Relationships {
		relCounts[r.Type]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", repoURL)
	fmt.Fprintf(&b, "Nodes (%d total):\n", len(graph.Nodes))
	writeCounts(&b, nodeCounts)
	fmt.Fprintf(&b, "Relationships (%d total):\n", len(graph.Relationships))
	writeCounts(&b, relCounts)
	b.WriteString("Summarize the architecture implied by these numbers.")
	return b.String()
}

func writeCounts(b *strings.Builder, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "  %s: %d\n", k, counts[k])
	}
}
