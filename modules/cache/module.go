// Package cache provides the "cache" action and registers the cache
// backends it can use ("in-memory" and "redis").
//
// The action looks its key up first. On a hit the cached value is put into
// the payload under payloadKey and doAction is skipped. On a miss doAction
// runs, and when it ends with _success and produced payloadKey, that value
// is stored. Cache problems never fail the action.
package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/cache"
	"github.com/specialistvlad/fragmentgrid/internal/cache/memory"
	"github.com/specialistvlad/fragmentgrid/internal/cache/redis"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/placeholder"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
)

// Name is the factory name used in configuration.
const Name = "cache"

// Log keys.
const (
	logCacheKey      = "cache_key"
	logCachedValue   = "cached_value"
	logComputedValue = "computed_value"
	logCacheHit      = "cache_hit"
	logCacheMiss     = "cache_miss"
	logCachePass     = "cache_pass"
)

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the cache action and the built-in backends.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCache(memory.Factory())
	r.RegisterCache(redis.Factory())
	r.RegisterAction(&action.Factory{Name: Name, Cacheable: true, Create: create})
}

type cacheAction struct {
	alias      string
	doAction   action.Action
	payloadKey string
	cacheKey   string
	level      action.Level
	store      cache.Cache
}

func create(ctx context.Context, alias string, cfg map[string]any, rt action.Runtime, doAction action.Action) (action.Action, error) {
	if doAction == nil {
		return nil, fmt.Errorf("%s action '%s' requires doAction", Name, alias)
	}
	a := &cacheAction{alias: alias, doAction: doAction}

	var err error
	if a.payloadKey, err = config.String(cfg, "payloadKey", ""); err != nil || a.payloadKey == "" {
		return nil, fmt.Errorf("%s action '%s' requires a 'payloadKey' string option", Name, alias)
	}
	if a.cacheKey, err = config.String(cfg, "cacheKey", ""); err != nil || a.cacheKey == "" {
		return nil, fmt.Errorf("%s action '%s' requires a 'cacheKey' string option", Name, alias)
	}
	rawLevel, err := config.String(cfg, "logLevel", "")
	if err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}
	if a.level, err = action.ParseLevel(rawLevel, action.LevelError); err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}

	typ, err := config.String(cfg, "type", memory.Type)
	if err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}
	if rt.Caches == nil {
		return nil, fmt.Errorf("%s action '%s': no cache backends available", Name, alias)
	}
	factory, ok := rt.Caches.CacheFactory(typ)
	if !ok {
		return nil, fmt.Errorf("%s action '%s': unknown cache type '%s'", Name, alias, typ)
	}
	blob, err := config.Map(cfg, "cache")
	if err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}
	if a.store, err = factory.Create(ctx, blob); err != nil {
		return nil, fmt.Errorf("%s action '%s': create %s cache: %w", Name, alias, typ, err)
	}
	ctxlog.FromContext(ctx).Debug("Cache action created.", "alias", alias, "type", typ)
	return a, nil
}

// Close releases the backend when it holds connections.
func (a *cacheAction) Close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (a *cacheAction) Apply(ctx context.Context, fctx fragment.Context) (fragment.Result, error) {
	log := action.NewLog(a.alias, a.level)
	key := placeholder.Resolve(a.cacheKey, fctx)

	if cached, ok := a.store.Get(ctx, key); ok {
		log.Info(logCacheHit, map[string]any{logCacheKey: key, logCachedValue: cached})
		f := fctx.Fragment.AppendPayload(a.payloadKey, fragment.CopyValue(cached))
		return fragment.NewResult(f, fragment.Success, log.Build()), nil
	}

	res, inv := action.Invoke(ctx, a.doAction, fctx)
	log.Invocation(inv)
	if inv.Err != nil {
		if action.IsFatal(inv.Err) {
			return fragment.Result{}, inv.Err
		}
		log.Failure(inv.Err)
		return fragment.NewResult(fctx.Fragment, fragment.Error, log.Build()), nil
	}

	out := res.Fragment
	if out == nil {
		out = fctx.Fragment
	}
	computed, present := out.Payload[a.payloadKey]
	if res.Transition() == fragment.Success && present {
		log.Info(logCacheMiss, map[string]any{logCacheKey: key, logComputedValue: computed})
		a.store.Put(ctx, key, fragment.CopyValue(computed))
	} else {
		log.Info(logCachePass, map[string]any{logCacheKey: key})
	}
	return fragment.NewResult(out, res.Transition(), log.Build()), nil
}
