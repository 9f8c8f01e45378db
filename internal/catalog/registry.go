package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Madra/internal/aura"
	"github.com/MikeSquared-Agency/Madra/internal/scoring"
)

// File is the on-disk catalog format. Entries override built-ins with the same ID.
type File struct {
	Techniques   []Technique   `yaml:"techniques"`
	Environments []Environment `yaml:"environments"`
}

// Registry holds the techniques and environments available to callers.
// It is safe for concurrent use; Reload swaps the whole catalog at once.
type Registry struct {
	path   string
	logger *slog.Logger

	mu           sync.RWMutex
	techniques   map[string]Technique
	environments map[string]Environment
}

// NewRegistry loads the built-in catalog plus the optional file at path.
func NewRegistry(path string, logger *slog.Logger) (*Registry, error) {
	r := &Registry{path: path, logger: logger}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the catalog file. On error the current catalog is kept.
func (r *Registry) Reload() error {
	techniques := make(map[string]Technique)
	environments := make(map[string]Environment)
	for _, t := range BuiltinTechniques() {
		techniques[t.ID] = t
	}
	for _, e := range BuiltinEnvironments() {
		environments[e.ID] = e
	}

	if r.path != "" {
		f, err := LoadFile(r.path)
		if err != nil {
			return err
		}
		for _, t := range f.Techniques {
			techniques[t.ID] = t
		}
		for _, e := range f.Environments {
			environments[e.ID] = e
		}
	}

	r.mu.Lock()
	r.techniques = techniques
	r.environments = environments
	r.mu.Unlock()

	r.logger.Info("catalog loaded", "techniques", len(techniques), "environments", len(environments), "path", r.path)
	return nil
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, t := range f.Techniques {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	for i := range f.Environments {
		e := &f.Environments[i]
		if e.ID == CustomEnvironmentID {
			return nil, fmt.Errorf("catalog: environment id %q is reserved", CustomEnvironmentID)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		e.Composition = aura.Normalize(e.Composition)
	}
	return &f, nil
}

// Technique looks up a technique by ID.
func (r *Registry) Technique(id string) (Technique, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.techniques[id]
	if !ok {
		return Technique{}, &NotFoundError{Kind: "technique", ID: id, Suggestions: aura.Suggest(id, keys(r.techniques), 3)}
	}
	return t.Clone(), nil
}

// Environment looks up an environment by ID.
func (r *Registry) Environment(id string) (Environment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.environments[id]
	if !ok {
		return Environment{}, &NotFoundError{Kind: "environment", ID: id, Suggestions: aura.Suggest(id, keys(r.environments), 3)}
	}
	e.Composition = e.Composition.Clone()
	return e, nil
}

// Techniques returns every technique sorted by ID.
func (r *Registry) Techniques() []Technique {
	r.mu.RLock()
	out := make([]Technique, 0, len(r.techniques))
	for _, t := range r.techniques {
		out = append(out, t.Clone())
	}
	r.mu.RUnlock()
	sortTechniques(out)
	return out
}

// Environments returns every environment sorted by ID.
func (r *Registry) Environments() []Environment {
	r.mu.RLock()
	out := make([]Environment, 0, len(r.environments))
	for _, e := range r.environments {
		e.Composition = e.Composition.Clone()
		out = append(out, e)
	}
	r.mu.RUnlock()
	sortEnvironments(out)
	return out
}

// Candidates returns every technique in the form the match ranker takes.
func (r *Registry) Candidates() []scoring.Candidate {
	ts := r.Techniques()
	out := make([]scoring.Candidate, 0, len(ts))
	for _, t := range ts {
		out = append(out, scoring.Candidate{ID: t.ID, Requires: t.Requires})
	}
	return out
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
