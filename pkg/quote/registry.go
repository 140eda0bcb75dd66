package quote

import (
	"fmt"
	"sync"
)

// Registry holds the vocabulary in use by a long-running process and
// swaps it on reload. Each ingestion run should call Vocabulary once and
// keep the returned pointer for the whole run.
type Registry struct {
	mu    sync.RWMutex
	vocab *Vocabulary
	path  string
}

// NewRegistry creates a registry for the vocabulary file at path.
// An empty path means the built-in vocabulary.
func NewRegistry(path string) *Registry {
	return &Registry{vocab: defaultVocabulary, path: path}
}

// Load reads the vocabulary file. On error the current vocabulary is kept.
func (r *Registry) Load() error {
	if r.path == "" {
		r.mu.Lock()
		r.vocab = defaultVocabulary
		r.mu.Unlock()
		return nil
	}
	v, err := LoadVocabulary(r.path)
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}
	r.mu.Lock()
	r.vocab = v
	r.mu.Unlock()
	return nil
}

// Reload reloads the vocabulary from disk (hot reload).
func (r *Registry) Reload() error {
	return r.Load()
}

// Vocabulary returns the active vocabulary.
func (r *Registry) Vocabulary() *Vocabulary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.vocab
}

// Path returns the vocabulary file path, "" for the built-in one.
func (r *Registry) Path() string {
	return r.path
}

// VocabInfo is the public metadata for the active vocabulary.
type VocabInfo struct {
	Name            string `json:"name"`
	Path            string `json:"path,omitempty"`
	DefaultCategory string `json:"default_category"`
	Aliases         int    `json:"aliases"`
	Hints           int    `json:"hints"`
}

// Info describes the active vocabulary.
func (r *Registry) Info() VocabInfo {
	v := r.Vocabulary()
	return VocabInfo{
		Name:            v.Name(),
		Path:            r.path,
		DefaultCategory: v.DefaultCategory(),
		Aliases:         len(v.aliases),
		Hints:           len(v.hints),
	}
}
