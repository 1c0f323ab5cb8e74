package treesitter

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
)

// Default cap on individual source files; generated bundles and
// vendored blobs above it are skipped.
const defaultMaxFileBytes = 512 * 1024

// skipDirs are directory names never worth parsing.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"target":       true,
	"__pycache__":  true,
}

// Builder constructs a code graph from a source tree using tree-sitter
// grammars. A Builder is stateless across Build calls and safe for
// concurrent use; each call creates its own parsers.
type Builder struct {
	byExtension  map[string]*language
	maxFileBytes int64
}

func NewBuilder(maxFileBytes int64) *Builder {
	if maxFileBytes <= 0 {
		maxFileBytes = defaultMaxFileBytes
	}
	byExt := make(map[string]*language)
	for _, lang := range supportedLanguages() {
		for _, ext := range lang.extensions {
			byExt[ext] = lang
		}
	}
	return &Builder{byExtension: byExt, maxFileBytes: maxFileBytes}
}

// Build walks dir, parses every recognized source file, and assembles
// nodes plus DEFINES/IMPORTS/CALLS relationships. A tree with no
// recognized files yields an empty graph, not an error. Per-file parse
// failures are skipped so one broken file cannot sink the whole run.
func (b *Builder) Build(ctx context.Context, dir string) (*domain.Graph, error) {
	asm := newAssembler()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		lang, ok := b.byExtension[filepath.Ext(name)]
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > b.maxFileBytes {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		source, err := os.ReadFile(path)
		if err != nil {
			log.Printf("warning: skipping unreadable file %s: %v", rel, err)
			return nil
		}
		if err := parseFile(asm, lang, filepath.ToSlash(rel), source); err != nil {
			log.Printf("warning: skipping unparseable file %s: %v", rel, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return asm.graph(), nil
}
