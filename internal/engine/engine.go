package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/metadata"
	"github.com/specialistvlad/fragmentgrid/internal/metrics"
	"github.com/specialistvlad/fragmentgrid/internal/node"
	"github.com/specialistvlad/fragmentgrid/internal/task"
)

const tracerName = "github.com/specialistvlad/fragmentgrid/internal/engine"

// Engine traverses one task graph per call. It holds no per-run state and
// is safe for concurrent use.
type Engine struct {
	recorder metrics.Recorder
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder sets the metrics sink.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithTracer overrides the tracer taken from the global otel provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		recorder: metrics.NoopRecorder{},
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs t against fctx. The returned event is never nil. A non-nil
// error means the traversal was aborted by a fatal action failure; the event
// then carries the fragment as it was when the failure happened.
func (e *Engine) Execute(ctx context.Context, t *task.Task, fctx fragment.Context) (*FragmentEvent, error) {
	ctx, logger := ctxlog.With(ctx, "task", t.Name, "fragment", fctx.Fragment.ID)
	logger.Debug("Task execution started.")

	run := &execution{
		engine:    e,
		task:      t,
		log:       NewEventLog(),
		collector: metadata.NewCollector(t),
	}
	final, status, err := run.walk(ctx, t.RootNode(), fctx)

	event := &FragmentEvent{
		Fragment: final.Fragment,
		Status:   status,
		Task:     t.Name,
		Log:      run.log,
		root:     t.Root,
		nodes:    run.collector.Snapshot(),
	}
	e.recorder.ObserveFragment(string(event.Status))

	if err != nil {
		logger.Error("Task execution aborted.", "error", err)
		return event, fmt.Errorf("task '%s' aborted: %w", t.Name, err)
	}
	logger.Debug("Task execution finished.", "status", event.Status)
	return event, nil
}

// execution is the state of one Execute call.
type execution struct {
	engine    *Engine
	task      *task.Task
	log       *EventLog
	collector *metadata.Collector
}

func (x *execution) millis() int64 {
	return x.engine.now().UnixMilli()
}

// walk follows transitions from start until no successor exists. It returns
// the context as left by the last node, the fragment status and any fatal
// error. The status is decided by the node that ends the path, so an _error
// handled by a successor does not fail the fragment.
func (x *execution) walk(ctx context.Context, start *node.Node, fctx fragment.Context) (fragment.Context, Status, error) {
	status := StatusSuccess
	for current := start; current != nil; {
		res, err := x.execute(ctx, current, fctx)
		if err != nil {
			return fctx, StatusFailure, err
		}
		fctx = fctx.WithFragment(res.Fragment)

		transition := res.Transition()
		status = StatusSuccess
		next, ok := x.task.Next(current, transition)
		if !ok && transition != fragment.Success {
			ctxlog.FromContext(ctx).Warn("Node returned a transition with no edge.", "node", current.Label, "transition", transition)
			x.log.Append(LogEntry{
				Task:       x.task.Name,
				Node:       current.ID,
				Label:      current.Label,
				Status:     EntryUnsupportedTransition,
				Transition: transition,
				Timestamp:  x.millis(),
			})
			status = StatusFailure
		}
		current = next
	}
	return fctx, status, nil
}

func (x *execution) execute(ctx context.Context, n *node.Node, fctx fragment.Context) (fragment.Result, error) {
	switch n.Kind {
	case node.KindSingle:
		return x.single(ctx, n, fctx)
	case node.KindComposite:
		return x.composite(ctx, n, fctx)
	default:
		at := x.millis()
		x.collector.Started(n.ID, at)
		x.collector.Finished(n.ID, at, fragment.Success, metadata.StatusSuccess, nil)
		x.record(n, EntrySuccess, fragment.Success, at, nil)
		return fragment.NewResult(fctx.Fragment, fragment.Success, nil), nil
	}
}

func (x *execution) single(ctx context.Context, n *node.Node, fctx fragment.Context) (fragment.Result, error) {
	spanCtx, span := x.engine.tracer.Start(ctx, n.Label, trace.WithAttributes(
		attribute.String("fragmentgrid.task", x.task.Name),
		attribute.String("fragmentgrid.node", n.ID),
		attribute.String("fragmentgrid.factory", n.Operation.Factory),
	))
	defer span.End()

	began := x.engine.now()
	x.collector.Started(n.ID, began.UnixMilli())

	// Actions get a copy; a failed call leaves the fragment untouched.
	res, err := apply(spanCtx, n.Action, fctx.WithFragment(fctx.Fragment.Clone()))

	finished := x.engine.now()
	at := finished.UnixMilli()
	logger := ctxlog.FromContext(ctx)

	var entry EntryStatus
	switch {
	case err != nil && action.IsFatal(err):
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		nodeLog := map[string]any{"error": err.Error()}
		x.collector.Finished(n.ID, at, fragment.Error, metadata.StatusError, nodeLog)
		x.record(n, EntryError, fragment.Error, at, nodeLog)
		x.engine.recorder.ObserveNode(x.task.Name, n.Label, string(EntryError), finished.Sub(began))
		return fragment.Result{}, fmt.Errorf("node '%s': %w", n.Label, err)
	case err != nil:
		logger.Warn("Node action failed, following _error.", "node", n.Label, "error", err)
		span.RecordError(err)
		entry = EntryError
		if errors.Is(err, context.DeadlineExceeded) {
			entry = EntryTimeout
		}
		res = fragment.NewResult(fctx.Fragment, fragment.Error, map[string]any{"error": err.Error()})
	default:
		if res.Fragment == nil {
			res.Fragment = fctx.Fragment
		}
		entry = EntrySuccess
		if res.Transition() == fragment.Error {
			entry = EntryError
		}
	}

	transition := res.Transition()
	span.SetAttributes(attribute.String("fragmentgrid.transition", transition))
	x.collector.Finished(n.ID, at, transition, metadata.StatusFor(transition), res.Log)
	x.record(n, entry, transition, at, res.Log)
	x.engine.recorder.ObserveNode(x.task.Name, n.Label, string(entry), finished.Sub(began))
	return res, nil
}

func (x *execution) record(n *node.Node, status EntryStatus, transition string, at int64, nodeLog map[string]any) {
	x.log.Append(LogEntry{
		Task:       x.task.Name,
		Node:       n.ID,
		Label:      n.Label,
		Status:     status,
		Transition: transition,
		Timestamp:  at,
		NodeLog:    nodeLog,
	})
}

// apply invokes a and turns a panic into a fatal error.
func apply(ctx context.Context, a action.Action, fctx fragment.Context) (res fragment.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = action.Fatal(fmt.Errorf("action panicked: %v", r))
		}
	}()
	if a == nil {
		return fragment.Result{}, action.Fatal(errors.New("node has no action"))
	}
	return a.Apply(ctx, fctx)
}
