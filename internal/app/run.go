package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"github.com/specialistvlad/fragmentgrid/internal/engine"
	"github.com/specialistvlad/fragmentgrid/internal/fragmentsource"
)

// Run loads the configured fragments, processes them and writes one
// execution log per fragment. Logs are written even when a fragment aborts;
// the abort is then returned.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		if err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			return err
		}
		defer a.closeHealthcheckServer(ctx)
	}
	defer a.closeActions()

	if a.config.FragmentsPath == "" {
		a.logger.Warn("No fragments path given, nothing to process.")
		return nil
	}

	fctxs, err := fragmentsource.Load(ctx, a.config.FragmentsPath)
	if err != nil {
		return fmt.Errorf("failed to load fragments: %w", err)
	}
	if len(fctxs) == 0 {
		a.logger.Warn("No fragments found, execution not required.", "path", a.config.FragmentsPath)
		return nil
	}

	a.logger.Info("🚀 Processing fragments...", "count", len(fctxs), "tasks", len(a.model.Tasks))
	events, execErr := a.fragments.Execute(ctx, fctxs)
	a.logger.Info("🏁 Processing finished.", "summary", summarize(events))

	if err := a.writeLogs(events); err != nil {
		return err
	}
	if execErr != nil {
		return fmt.Errorf("execution failed: %w", execErr)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// closeActions releases connections held by shared actions.
func (a *App) closeActions() {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("Failed to close actions.", "error", err)
	}
}

// writeLogs encodes the execution logs as a JSON array to OutputPath, or to
// the app writer when no path is configured.
func (a *App) writeLogs(events []*engine.FragmentEvent) (err error) {
	logs := make([]engine.ExecutionLog, 0, len(events))
	for _, e := range events {
		if e != nil {
			logs = append(logs, e.ExecutionLog())
		}
	}

	var w io.Writer = a.outW
	if a.config.OutputPath != "" {
		f, err := os.Create(a.config.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(logs); err != nil {
		return fmt.Errorf("failed to write execution logs: %w", err)
	}
	return nil
}

// summarize counts events per fragment status.
func summarize(events []*engine.FragmentEvent) map[engine.Status]int {
	out := map[engine.Status]int{}
	for _, e := range events {
		if e != nil {
			out[e.Status]++
		}
	}
	return out
}
