package registry

import (
	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/cache"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered action and cache factories for a single
// application instance. It is written during startup and only read after.
type Registry struct {
	ActionFactories map[string]*action.Factory
	CacheFactories  map[string]*cache.Factory
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		ActionFactories: make(map[string]*action.Factory),
		CacheFactories:  make(map[string]*cache.Factory),
	}
}

// ActionFactory implements action.Factories.
func (r *Registry) ActionFactory(name string) (*action.Factory, bool) {
	f, ok := r.ActionFactories[name]
	return f, ok
}

// CacheFactory implements action.CacheFactories.
func (r *Registry) CacheFactory(typ string) (*cache.Factory, bool) {
	f, ok := r.CacheFactories[typ]
	return f, ok
}
