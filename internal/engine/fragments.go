package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/task"
)

// DefaultWorkers bounds how many fragments run at once.
const DefaultWorkers = 10

// TaskBuilder resolves the task a fragment selects.
type TaskBuilder interface {
	Build(ctx context.Context, f *fragment.Fragment) (*task.Task, bool, error)
}

// FragmentsEngine processes a batch of fragments with a bounded pool.
type FragmentsEngine struct {
	builder TaskBuilder
	engine  *Engine
	workers int
}

// NewFragmentsEngine creates a FragmentsEngine. workers < 1 means DefaultWorkers.
func NewFragmentsEngine(builder TaskBuilder, engine *Engine, workers int) *FragmentsEngine {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &FragmentsEngine{builder: builder, engine: engine, workers: workers}
}

// Execute runs every fragment and returns one event per input, in input
// order. Fragments that select no task come back UNPROCESSED. The first
// configuration or fatal error is returned once every started fragment has
// finished.
func (fe *FragmentsEngine) Execute(ctx context.Context, fctxs []fragment.Context) ([]*FragmentEvent, error) {
	logger := ctxlog.FromContext(ctx)
	events := make([]*FragmentEvent, len(fctxs))

	var g errgroup.Group
	g.SetLimit(fe.workers)
	for i, fctx := range fctxs {
		g.Go(func() error {
			t, ok, err := fe.builder.Build(ctx, fctx.Fragment)
			if err != nil {
				events[i] = &FragmentEvent{Fragment: fctx.Fragment, Status: StatusFailure, Log: NewEventLog()}
				return fmt.Errorf("fragment '%s': %w", fctx.Fragment.ID, err)
			}
			if !ok {
				events[i] = newUnprocessedEvent(fctx.Fragment)
				fe.engine.recorder.ObserveFragment(string(StatusUnprocessed))
				return nil
			}
			event, err := fe.engine.Execute(ctx, t, fctx)
			events[i] = event
			if err != nil {
				return fmt.Errorf("fragment '%s': %w", fctx.Fragment.ID, err)
			}
			return nil
		})
	}
	err := g.Wait()
	logger.Debug("Fragments processed.", "count", len(fctxs), "failed", err != nil)
	return events, err
}
