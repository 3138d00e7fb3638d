// Package registry holds the loaded assessment definitions keyed by slug and
// knows how to (re)load them from document roots and code-defined sources.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/harrison/assessment/internal/models"
)

// ErrNotFound is returned when no definition is registered under a slug
var ErrNotFound = errors.New("assessment not found")

// Registry is a concurrency-safe slug → Definition map that remembers
// registration order. Readers never observe a partially replaced set.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*models.Definition
	order []string
}

// New creates an empty registry
func New() *Registry {
	return &Registry{defs: make(map[string]*models.Definition)}
}

// Register adds def, replacing any definition with the same slug.
// A replaced slug keeps its original position in All.
func (r *Registry) Register(def *models.Definition) error {
	if def == nil {
		return fmt.Errorf("cannot register nil definition")
	}
	if def.Slug == "" {
		return fmt.Errorf("cannot register definition without a slug")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(def)
	return nil
}

func (r *Registry) put(def *models.Definition) {
	if _, exists := r.defs[def.Slug]; !exists {
		r.order = append(r.order, def.Slug)
	}
	r.defs[def.Slug] = def
}

// Find returns the definition registered under slug
func (r *Registry) Find(slug string) (*models.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return def, nil
}

// All returns every definition in registration order
func (r *Registry) All() []*models.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Definition, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.defs[slug])
	}
	return out
}

// Slugs returns the registered slugs in registration order
func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered definitions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Reset removes every definition
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = make(map[string]*models.Definition)
	r.order = nil
}

// Replace swaps the whole set in one step: it is Reset followed by Register for
// each definition, under a single lock. Nil or slug-less entries are skipped.
func (r *Registry) Replace(defs []*models.Definition) {
	fresh := &Registry{defs: make(map[string]*models.Definition, len(defs))}
	for _, def := range defs {
		if def == nil || def.Slug == "" {
			continue
		}
		fresh.put(def)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = fresh.defs
	r.order = fresh.order
}
