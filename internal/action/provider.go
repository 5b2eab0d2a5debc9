package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"golang.org/x/sync/singleflight"
)

// Factories looks up registered action factories by name.
type Factories interface {
	ActionFactory(name string) (*Factory, bool)
}

// Provider turns configured aliases into live actions.
type Provider struct {
	options   map[string]*config.ActionOptions
	factories Factories
	runtime   Runtime

	cached sync.Map // alias -> Action
	group  singleflight.Group
}

// NewProvider creates a provider over the alias configuration.
func NewProvider(options map[string]*config.ActionOptions, factories Factories, rt Runtime) *Provider {
	if options == nil {
		options = map[string]*config.ActionOptions{}
	}
	return &Provider{options: options, factories: factories, runtime: rt}
}

// Get resolves alias. It reports false, without an error, when the alias is
// blank, not configured, or names an unknown factory. Errors come from the
// factory itself or from a doAction chain that loops.
func (p *Provider) Get(ctx context.Context, alias string) (Action, bool, error) {
	return p.get(ctx, alias, nil)
}

// Options returns the configuration behind alias.
func (p *Provider) Options(alias string) (*config.ActionOptions, bool) {
	opts, ok := p.options[alias]
	return opts, ok
}

// Close closes every shared action that implements io.Closer and forgets
// it, so a later Get builds a fresh instance.
func (p *Provider) Close() error {
	var errs []error
	p.cached.Range(func(key, value any) bool {
		p.cached.Delete(key)
		if c, ok := value.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close action '%s': %w", key, err))
			}
		}
		return true
	})
	return errors.Join(errs...)
}

func (p *Provider) get(ctx context.Context, alias string, chain []string) (Action, bool, error) {
	logger := ctxlog.FromContext(ctx)
	if strings.TrimSpace(alias) == "" {
		logger.Debug("Action alias is blank, nothing to resolve.")
		return nil, false, nil
	}
	if slices.Contains(chain, alias) {
		return nil, false, fmt.Errorf("%w: %s", ErrCycle, strings.Join(append(chain, alias), " -> "))
	}

	opts, ok := p.options[alias]
	if !ok {
		logger.Warn("Could not create action, missing config.", "alias", alias)
		return nil, false, nil
	}
	factory, ok := p.factories.ActionFactory(opts.Factory)
	if !ok {
		logger.Warn("Could not create action, missing factory.", "alias", alias, "factory", opts.Factory)
		return nil, false, nil
	}

	if !factory.Cacheable {
		a, err := p.create(ctx, alias, opts, factory, chain)
		if err != nil {
			return nil, false, err
		}
		return a, true, nil
	}

	if a, ok := p.cached.Load(alias); ok {
		return a.(Action), true, nil
	}
	v, err, _ := p.group.Do(alias, func() (any, error) {
		if a, ok := p.cached.Load(alias); ok {
			return a, nil
		}
		a, err := p.create(ctx, alias, opts, factory, chain)
		if err != nil {
			return nil, err
		}
		p.cached.Store(alias, a)
		return a, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(Action), true, nil
}

func (p *Provider) create(ctx context.Context, alias string, opts *config.ActionOptions, factory *Factory, chain []string) (Action, error) {
	logger := ctxlog.FromContext(ctx)

	var doAction Action
	if opts.DoAction != "" {
		nested, ok, err := p.get(ctx, opts.DoAction, append(slices.Clone(chain), alias))
		if err != nil {
			return nil, err
		}
		if ok {
			doAction = nested
		}
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	logger.Debug("Creating action.", "alias", alias, "factory", factory.Name, "cacheable", factory.Cacheable, "do_action", opts.DoAction)
	a, err := factory.Create(ctx, alias, cfg, p.runtime, doAction)
	if err != nil {
		return nil, fmt.Errorf("create action '%s' with factory '%s': %w", alias, factory.Name, err)
	}
	return a, nil
}
