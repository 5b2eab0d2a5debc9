// Package copy_payload_key provides the "copy-payload-key" action, which
// copies a payload value from one dot path to another.
package copy_payload_key

import (
	"context"
	"fmt"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
)

// Name is the factory name used in configuration.
const Name = "copy-payload-key"

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the copy-payload-key factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction(&action.Factory{Name: Name, Cacheable: true, Create: create})
}

type copyPayloadKey struct {
	from string
	to   string
}

func create(ctx context.Context, alias string, cfg map[string]any, rt action.Runtime, doAction action.Action) (action.Action, error) {
	from, err := config.String(cfg, "from", "")
	if err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}
	to, err := config.String(cfg, "to", "")
	if err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("%s action '%s' requires 'from' and 'to' options", Name, alias)
	}
	return &copyPayloadKey{from: from, to: to}, nil
}

func (a *copyPayloadKey) Apply(ctx context.Context, fctx fragment.Context) (fragment.Result, error) {
	f := fctx.Fragment
	if v, ok := fragment.Lookup(f.Payload, a.from); ok {
		if f.Payload == nil {
			f.Payload = map[string]any{}
		}
		fragment.Put(f.Payload, a.to, fragment.CopyValue(v))
	}
	return fragment.NewResult(f, fragment.Success, nil), nil
}
