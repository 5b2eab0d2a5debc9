package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
)

// ValidateRegistry checks the registered factories and cross-checks them with
// the configuration model. Broken factories are errors; aliases pointing at
// unknown factories are only warned about, because the provider treats them
// as absent and the task compiler decides whether that is fatal.
func (r *Registry) ValidateRegistry(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for name, f := range r.ActionFactories {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "action factory registered with a blank name")
		}
		if f.Create == nil {
			errs = append(errs, fmt.Sprintf("action factory '%s': Create function is nil", name))
		}
	}
	for typ, f := range r.CacheFactories {
		if strings.TrimSpace(typ) == "" {
			errs = append(errs, "cache factory registered with a blank type")
		}
		if f.Create == nil {
			errs = append(errs, fmt.Sprintf("cache factory '%s': Create function is nil", typ))
		}
	}

	if model != nil {
		aliases := make([]string, 0, len(model.Actions))
		for alias := range model.Actions {
			aliases = append(aliases, alias)
		}
		sort.Strings(aliases)
		for _, alias := range aliases {
			opts := model.Actions[alias]
			if _, ok := r.ActionFactories[opts.Factory]; !ok {
				logger.Warn("Action alias references an unregistered factory.", "alias", alias, "factory", opts.Factory)
			}
			if opts.DoAction != "" {
				if _, ok := model.Actions[opts.DoAction]; !ok {
					logger.Warn("Action alias references an undefined doAction.", "alias", alias, "do_action", opts.DoAction)
				}
			}
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
