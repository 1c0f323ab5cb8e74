package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// language describes how one grammar maps onto graph entities: which
// AST kinds define symbols (and under which label), which kinds are
// imports (and which field names the imported module; "" means the
// whole node text), and which kinds are call sites.
type language struct {
	name       string
	grammar    *tree_sitter.Language
	extensions []string
	symbols    map[string]string
	imports    map[string]string
	calls      map[string]bool
}

func supportedLanguages() []*language {
	return []*language{
		{
			name:       "go",
			grammar:    tree_sitter.NewLanguage(tree_sitter_go.Language()),
			extensions: []string{".go"},
			symbols: map[string]string{
				"function_declaration": "FUNCTION",
				"method_declaration":   "METHOD",
				"type_spec":            "TYPE",
			},
			imports: map[string]string{
				"import_spec": "path",
			},
			calls: map[string]bool{"call_expression": true},
		},
		{
			name:       "python",
			grammar:    tree_sitter.NewLanguage(tree_sitter_python.Language()),
			extensions: []string{".py"},
			symbols: map[string]string{
				"function_definition": "FUNCTION",
				"class_definition":    "CLASS",
			},
			imports: map[string]string{
				"import_statement":      "",
				"import_from_statement": "module_name",
			},
			calls: map[string]bool{"call": true},
		},
		{
			name:       "rust",
			grammar:    tree_sitter.NewLanguage(tree_sitter_rust.Language()),
			extensions: []string{".rs"},
			symbols: map[string]string{
				"function_item": "FUNCTION",
				"struct_item":   "STRUCT",
				"enum_item":     "ENUM",
				"trait_item":    "TRAIT",
			},
			imports: map[string]string{
				"use_declaration": "argument",
			},
			calls: map[string]bool{"call_expression": true},
		},
		{
			name:    "typescript",
			grammar: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			// .tsx needs the TSX grammar variant, left out on purpose.
			extensions: []string{".ts"},
			symbols: map[string]string{
				"function_declaration":  "FUNCTION",
				"class_declaration":     "CLASS",
				"interface_declaration": "INTERFACE",
				"enum_declaration":      "ENUM",
				"method_definition":     "METHOD",
			},
			imports: map[string]string{
				"import_statement": "source",
			},
			calls: map[string]bool{"call_expression": true},
		},
	}
}
