// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function; cmd/web blank-imports the
// components it serves.  Mount hands every component the shared Deps via
// Init and then lets it add its routes to the shared API router.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Initializer receives the shared dependencies before Routes is called.
type Initializer interface {
	Init(Deps) error
}

// Component contract.
//
// Routes(r) registers the component's endpoints on r, e.g:
//
//	r.Route("/api/session", func(api chi.Router) { ... })
//
// Components share one router, so each owns distinct path prefixes.
type Component interface {
	Name() string
	Routes(r chi.Router)
	Initializer
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component ordered by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Mount initialises every registered component with deps and registers
// its routes on r.
func Mount(r chi.Router, deps Deps) error {
	for _, c := range All() {
		if err := c.Init(deps); err != nil {
			return fmt.Errorf("component %s: init: %w", c.Name(), err)
		}
		c.Routes(r)
		zap.S().Infow("component mounted", "component", c.Name())
	}
	return nil
}
