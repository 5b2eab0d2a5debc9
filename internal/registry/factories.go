package registry

import (
	"fmt"
	"log/slog"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/cache"
)

// RegisterAction registers an action factory under its name.
func (r *Registry) RegisterAction(f *action.Factory) {
	if _, exists := r.ActionFactories[f.Name]; exists {
		panic(fmt.Sprintf("action factory with name '%s' already registered", f.Name))
	}
	slog.Debug("Registering action factory.", "name", f.Name, "cacheable", f.Cacheable)
	r.ActionFactories[f.Name] = f
}

// RegisterCache registers a cache backend under its type.
func (r *Registry) RegisterCache(f *cache.Factory) {
	if _, exists := r.CacheFactories[f.Type]; exists {
		panic(fmt.Sprintf("cache factory with type '%s' already registered", f.Type))
	}
	slog.Debug("Registering cache factory.", "type", f.Type)
	r.CacheFactories[f.Type] = f
}
