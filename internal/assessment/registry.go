package assessment

import (
	"sync"

	"github.com/gutinsight/gutinsight/internal/catalog"
)

// Registry keeps one live Engine per session so answers, cursor position
// and milestone bookkeeping survive across requests.
type Registry struct {
	mu      sync.Mutex
	engines map[string]*Engine
}

func NewRegistry() *Registry {
	return &Registry{engines: map[string]*Engine{}}
}

// Start builds a fresh engine for the session, replacing any prior one.
func (r *Registry) Start(sessionID string, sections []catalog.Section, responses map[string]any, persist PersistFunc) *Engine {
	e := NewEngine(sections, responses, persist)
	r.mu.Lock()
	r.engines[sessionID] = e
	r.mu.Unlock()
	return e
}

func (r *Registry) Get(sessionID string) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.engines[sessionID]
	return e, ok
}

func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	delete(r.engines, sessionID)
	r.mu.Unlock()
}
