package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/fragmentgrid/internal/config"
)

func (l *Loader) translateAction(ctx context.Context, b *actionBlock) (*config.ActionOptions, error) {
	owner := fmt.Sprintf("action '%s' (%s)", b.Alias, b.DefRange)
	if b.Factory == "" {
		return nil, fmt.Errorf("%s: factory must not be empty", owner)
	}
	blob, err := configBlob(ctx, b.Config, owner)
	if err != nil {
		return nil, err
	}
	return &config.ActionOptions{Factory: b.Factory, Config: blob, DoAction: b.DoAction}, nil
}

// translateTask resolves node names into a NodeOptions graph and returns its
// root. References may point anywhere inside the same task, including back
// at an ancestor; rejecting that is left to the compiler.
func (l *Loader) translateTask(b *taskBlock) (*config.NodeOptions, error) {
	owner := fmt.Sprintf("task '%s' (%s)", b.Name, b.DefRange)

	nodes := make(map[string]*config.NodeOptions, len(b.Nodes))
	for _, n := range b.Nodes {
		if _, dup := nodes[n.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate node '%s'", owner, n.Name)
		}
		if n.Action != "" && len(n.Subtasks) > 0 {
			return nil, fmt.Errorf("%s: node '%s' declares both an action and subtasks", owner, n.Name)
		}
		nodes[n.Name] = &config.NodeOptions{Name: n.Name, Action: n.Action}
	}

	resolve := func(from, ref string) (*config.NodeOptions, error) {
		target, ok := nodes[ref]
		if !ok {
			return nil, fmt.Errorf("%s: node '%s' references unknown node '%s'", owner, from, ref)
		}
		return target, nil
	}

	for _, n := range b.Nodes {
		opts := nodes[n.Name]
		for _, ref := range n.Subtasks {
			target, err := resolve(n.Name, ref)
			if err != nil {
				return nil, err
			}
			opts.Subtasks = append(opts.Subtasks, target)
		}
		if len(n.On) > 0 {
			opts.On = make(map[string]*config.NodeOptions, len(n.On))
			for transition, ref := range n.On {
				target, err := resolve(n.Name, ref)
				if err != nil {
					return nil, err
				}
				opts.On[transition] = target
			}
		}
	}

	root, ok := nodes[b.Root]
	if !ok {
		return nil, fmt.Errorf("%s: root node '%s' is not defined", owner, b.Root)
	}
	return root, nil
}
