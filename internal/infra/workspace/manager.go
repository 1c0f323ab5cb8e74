package workspace

import (
	"log"
	"os"
)

// Manager hands out one private temp directory per request and tears it
// down afterwards.
type Manager struct {
	baseDir string
}

// New creates a Manager rooted at baseDir. An empty baseDir means the
// system temp directory.
func New(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Acquire creates a fresh, uniquely named directory. Uniqueness among
// concurrent acquisitions comes from os.MkdirTemp.
func (m *Manager) Acquire() (string, error) {
	return os.MkdirTemp(m.baseDir, "gitrospector-*")
}

// Release recursively deletes the directory. A deletion failure is
// logged as a warning only; the response being produced is already
// determined and must not change.
func (m *Manager) Release(path string) {
	if path == "" {
		return
	}
	if err := os.RemoveAll(path); err != nil {
		log.Printf("warning: failed to clean up workspace %s: %v", path, err)
	}
}
