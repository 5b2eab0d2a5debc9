// Package inline_payload provides the "inline-payload" action, which adds a
// configured value to the fragment payload.
package inline_payload

import (
	"context"
	"fmt"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
)

// Name is the factory name used in configuration.
const Name = "inline-payload"

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the inline-payload factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction(&action.Factory{Name: Name, Cacheable: true, Create: create})
}

type inlinePayload struct {
	alias string
	key   string
	value any
	level action.Level
}

func create(ctx context.Context, alias string, cfg map[string]any, rt action.Runtime, doAction action.Action) (action.Action, error) {
	if doAction != nil {
		return nil, fmt.Errorf("%s action '%s' does not support doAction", Name, alias)
	}
	value, ok := cfg["payload"]
	if !ok || value == nil {
		return nil, fmt.Errorf("%s action '%s' requires a 'payload' option", Name, alias)
	}
	key, err := config.String(cfg, "alias", alias)
	if err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}
	rawLevel, err := config.String(cfg, "logLevel", "")
	if err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}
	level, err := action.ParseLevel(rawLevel, action.LevelError)
	if err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}
	return &inlinePayload{alias: alias, key: key, value: value, level: level}, nil
}

func (a *inlinePayload) Apply(ctx context.Context, fctx fragment.Context) (fragment.Result, error) {
	log := action.NewLog(a.alias, a.level)
	f := fctx.Fragment
	// Each fragment gets its own copy, since the configured value is shared.
	f.AppendPayload(a.key, fragment.CopyValue(a.value))
	log.Info("key", a.key)
	log.Info("value", a.value)
	return fragment.NewResult(f, fragment.Success, log.Build()), nil
}
