package ai

import (
	"fmt"
	"strings"
	"sync"
)

// Registry routes a task's generator name to an adapter.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]Generator)}
}

func (r *Registry) Register(name string, g Generator) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[name] = g
}

func (r *Registry) Get(name string) (Generator, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	g, ok := r.generators[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown generator: %s", name)
	}
	return g, nil
}
