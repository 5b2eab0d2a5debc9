// Package inline_body provides the "inline-body" action, which replaces the
// fragment body with a configured value.
package inline_body

import (
	"context"
	"fmt"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
)

// Name is the factory name used in configuration.
const Name = "inline-body"

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the inline-body factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction(&action.Factory{Name: Name, Cacheable: true, Create: create})
}

type inlineBody struct {
	alias string
	body  string
	level action.Level
}

func create(ctx context.Context, alias string, cfg map[string]any, rt action.Runtime, doAction action.Action) (action.Action, error) {
	if doAction != nil {
		return nil, fmt.Errorf("%s action '%s' does not support doAction", Name, alias)
	}
	body, err := config.String(cfg, "body", "")
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
	return &inlineBody{alias: alias, body: body, level: level}, nil
}

func (a *inlineBody) Apply(ctx context.Context, fctx fragment.Context) (fragment.Result, error) {
	log := action.NewLog(a.alias, a.level)
	f := fctx.Fragment
	log.Info("originalBody", f.Body)
	f.Body = a.body
	log.Info("body", a.body)
	return fragment.NewResult(f, fragment.Success, log.Build()), nil
}
