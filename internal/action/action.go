package action

import (
	"context"
	"net/http"

	"github.com/specialistvlad/fragmentgrid/internal/cache"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/metrics"
)

// Action is an operation applied to a fragment. It returns exactly one
// Result or an error; see Fatal for how errors are classified.
type Action interface {
	Apply(ctx context.Context, fctx fragment.Context) (fragment.Result, error)
}

// Func adapts a function into an Action. Func values are not comparable, so
// factories whose instances must be identifiable should return pointer types.
type Func func(ctx context.Context, fctx fragment.Context) (fragment.Result, error)

// Apply calls f.
func (f Func) Apply(ctx context.Context, fctx fragment.Context) (fragment.Result, error) {
	return f(ctx, fctx)
}

// CreateFunc builds an action for alias from its config. doAction is the
// resolved nested action, or nil when none is configured.
type CreateFunc func(ctx context.Context, alias string, config map[string]any, rt Runtime, doAction Action) (Action, error)

// Factory describes a way of building actions. Cacheable factories produce
// instances that are built once per alias and shared afterwards.
type Factory struct {
	Name      string
	Cacheable bool
	Create    CreateFunc
}

// CacheFactories resolves cache backends by type.
type CacheFactories interface {
	CacheFactory(typ string) (*cache.Factory, bool)
}

// Runtime holds the process-wide collaborators handed to every factory.
type Runtime struct {
	Caches     CacheFactories
	Metrics    metrics.Recorder
	HTTPClient *http.Client
}

// Recorder returns the configured recorder or a no-op one.
func (rt Runtime) Recorder() metrics.Recorder {
	if rt.Metrics == nil {
		return metrics.NoopRecorder{}
	}
	return rt.Metrics
}

// Client returns the configured HTTP client or http.DefaultClient.
func (rt Runtime) Client() *http.Client {
	if rt.HTTPClient == nil {
		return http.DefaultClient
	}
	return rt.HTTPClient
}
