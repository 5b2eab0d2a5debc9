// Package payload_to_body provides the "payload-to-body" action, which
// renders the payload, or one key of it, as the JSON body of the fragment.
package payload_to_body

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
)

// Name is the factory name used in configuration.
const Name = "payload-to-body"

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the payload-to-body factory. Instances are rebuilt for
// every use.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction(&action.Factory{Name: Name, Cacheable: false, Create: create})
}

type payloadToBody struct {
	alias string
	key   string
}

func create(ctx context.Context, alias string, cfg map[string]any, rt action.Runtime, doAction action.Action) (action.Action, error) {
	key, err := config.String(cfg, "key", "")
	if err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}
	return &payloadToBody{alias: alias, key: key}, nil
}

func (a *payloadToBody) Apply(ctx context.Context, fctx fragment.Context) (fragment.Result, error) {
	f := fctx.Fragment
	log := action.NewLog(a.alias, action.LevelError)

	var value any = f.Payload
	if a.key != "" {
		v, ok := fragment.Lookup(f.Payload, a.key)
		if !ok {
			log.Error("missingKey", a.key)
			return fragment.NewResult(f, fragment.Error, log.Build()), nil
		}
		value = v
	}

	body, err := json.Marshal(value)
	if err != nil {
		return fragment.Result{}, fmt.Errorf("encode payload key '%s': %w", a.key, err)
	}
	f.Body = string(body)
	return fragment.NewResult(f, fragment.Success, nil), nil
}
