package treesitter

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
)

// pendingCall is an unresolved call site; resolution against the
// repo-wide symbol index happens after every file has been parsed.
type pendingCall struct {
	fileID string
	callee string
}

// assembler accumulates graph parts across files and assigns
// relationship IDs once enumeration order is final.
type assembler struct {
	nodes       []domain.Node
	edges       []domain.Relationship
	modules     map[string]string   // import path -> node ID
	symbolIDs   map[string][]string // symbol name -> node IDs
	calls       []pendingCall
	seenImports map[string]bool
	seenCalls   map[string]bool
}

func newAssembler() *assembler {
	return &assembler{
		modules:     make(map[string]string),
		symbolIDs:   make(map[string][]string),
		seenImports: make(map[string]bool),
		seenCalls:   make(map[string]bool),
	}
}

func parseFile(asm *assembler, lang *language, relPath string, source []byte) error {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang.grammar); err != nil {
		return fmt.Errorf("set language %s: %w", lang.name, err)
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("parser returned nil tree")
	}
	defer tree.Close()

	fileID := "file:" + relPath
	asm.nodes = append(asm.nodes, domain.Node{
		ID: fileID,
		Properties: map[string]any{
			"label":    "FILE",
			"path":     relPath,
			"language": lang.name,
			"loc":      countLOC(source),
		},
	})

	cursor := tree.RootNode().Walk()
	defer cursor.Close()
	walk(cursor, asm, lang, relPath, fileID, source)
	return nil
}

func walk(
	cursor *tree_sitter.TreeCursor,
	asm *assembler,
	lang *language,
	relPath, fileID string,
	source []byte,
) {
	node := cursor.Node()
	kind := node.Kind()

	switch {
	case lang.symbols[kind] != "":
		asm.addSymbol(node, lang.symbols[kind], relPath, fileID, source)
	case hasImportKind(lang, kind):
		asm.addImport(node, lang.imports[kind], fileID, source)
	case lang.calls[kind]:
		asm.addCall(node, fileID, source)
	}

	if cursor.GotoFirstChild() {
		walk(cursor, asm, lang, relPath, fileID, source)
		for cursor.GotoNextSibling() {
			walk(cursor, asm, lang, relPath, fileID, source)
		}
		cursor.GotoParent()
	}
}

func hasImportKind(lang *language, kind string) bool {
	_, ok := lang.imports[kind]
	return ok
}

func (a *assembler) addSymbol(node *tree_sitter.Node, label, relPath, fileID string, source []byte) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(source)
	startLine := int(node.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1

	id := fmt.Sprintf("%s#%s:%d", relPath, name, startLine)
	a.nodes = append(a.nodes, domain.Node{
		ID: id,
		Properties: map[string]any{
			"label":      label,
			"name":       name,
			"path":       relPath,
			"start_line": startLine,
			"end_line":   endLine,
		},
	})
	a.edges = append(a.edges, domain.Relationship{
		Source: fileID,
		Target: id,
		Type:   "DEFINES",
	})
	a.symbolIDs[name] = append(a.symbolIDs[name], id)
}

func (a *assembler) addImport(node *tree_sitter.Node, field, fileID string, source []byte) {
	ref := node
	if field != "" {
		if child := node.ChildByFieldName(field); child != nil {
			ref = child
		}
	}
	path := cleanImportPath(ref.Utf8Text(source))
	if path == "" {
		return
	}

	moduleID, ok := a.modules[path]
	if !ok {
		moduleID = "module:" + path
		a.modules[path] = moduleID
		a.nodes = append(a.nodes, domain.Node{
			ID: moduleID,
			Properties: map[string]any{
				"label": "MODULE",
				"name":  path,
			},
		})
	}
	edgeKey := fileID + "+" + moduleID
	if a.seenImports[edgeKey] {
		return
	}
	a.seenImports[edgeKey] = true
	a.edges = append(a.edges, domain.Relationship{
		Source: fileID,
		Target: moduleID,
		Type:   "IMPORTS",
	})
}

func (a *assembler) addCall(node *tree_sitter.Node, fileID string, source []byte) {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return
	}
	callee := baseName(fnNode.Utf8Text(source))
	if callee == "" {
		return
	}
	key := fileID + ">" + callee
	if a.seenCalls[key] {
		return
	}
	a.seenCalls[key] = true
	a.calls = append(a.calls, pendingCall{fileID: fileID, callee: callee})
}

// graph finalizes enumeration order and assigns relationship IDs.
// Calls resolve only when exactly one symbol in the repo bears the
// callee name; ambiguous and external names are dropped rather than
// guessed at.
func (a *assembler) graph() *domain.Graph {
	edges := a.edges
	for _, c := range a.calls {
		targets := a.symbolIDs[c.callee]
		if len(targets) != 1 {
			continue
		}
		edges = append(edges, domain.Relationship{
			Source: c.fileID,
			Target: targets[0],
			Type:   "CALLS",
		})
	}
	for i := range edges {
		edges[i].ID = fmt.Sprintf("r%d", i+1)
	}
	return &domain.Graph{Nodes: a.nodes, Relationships: edges}
}

// cleanImportPath strips quotes, statement keywords, and trailing
// punctuation from an import reference.
func cleanImportPath(raw string) string {
	s := strings.TrimSpace(raw)
	for _, prefix := range []string{"import ", "use ", "from "} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimSuffix(s, ";")
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}

// baseName reduces a call target expression to its final identifier,
// e.g. pkg.Fn -> Fn, mod::fn -> fn, obj.method() chains -> method.
func baseName(expr string) string {
	s := strings.TrimSpace(expr)
	if i := strings.LastIndex(s, "::"); i >= 0 {
		s = s[i+2:]
	}
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	if s == "" || !isIdentifier(s) {
		return ""
	}
	return s
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func countLOC(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := 1
	for _, b := range source {
		if b == '\n' {
			n++
		}
	}
	return n
}
