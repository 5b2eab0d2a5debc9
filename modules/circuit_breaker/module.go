// Package circuit_breaker provides the "circuit-breaker" action. It wraps
// its doAction in a github.com/sony/gobreaker breaker and turns every failure
// of the wrapped action, and every call rejected by an open breaker, into the
// "fallback" transition over the unmodified fragment. With maxRetries set,
// a failed attempt is retried on a fresh clone within the same breaker call.
package circuit_breaker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/metrics"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
)

// Name is the factory name used in configuration.
const Name = "circuit-breaker"

const (
	DefaultMaxFailures  = 5
	DefaultMaxRetries   = 0
	DefaultTimeout      = 10 * time.Second
	DefaultResetTimeout = 30 * time.Second
)

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the circuit-breaker factory. The breaker state lives
// in the action, so instances are shared per alias.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction(&action.Factory{Name: Name, Cacheable: true, Create: create})
}

// Options are the parsed action options.
type Options struct {
	Name             string
	MaxFailures      int
	MaxRetries       int
	Timeout          time.Duration
	ResetTimeout     time.Duration
	ErrorTransitions []string
	LogLevel         action.Level
}

func parseOptions(alias string, cfg map[string]any) (Options, error) {
	opts := Options{}
	var err error
	if opts.Name, err = config.String(cfg, "name", ""); err != nil {
		return opts, err
	}
	if opts.Name == "" {
		opts.Name = alias + "-" + uuid.NewString()
	}
	if opts.MaxFailures, err = config.Int(cfg, "maxFailures", DefaultMaxFailures); err != nil {
		return opts, err
	}
	if opts.MaxFailures < 1 {
		return opts, fmt.Errorf("option 'maxFailures' must be positive, got %d", opts.MaxFailures)
	}
	if opts.MaxRetries, err = config.Int(cfg, "maxRetries", DefaultMaxRetries); err != nil {
		return opts, err
	}
	if opts.MaxRetries < 0 {
		return opts, fmt.Errorf("option 'maxRetries' must not be negative, got %d", opts.MaxRetries)
	}
	if opts.Timeout, err = config.Millis(cfg, "timeout", DefaultTimeout); err != nil {
		return opts, err
	}
	if opts.ResetTimeout, err = config.Millis(cfg, "resetTimeout", DefaultResetTimeout); err != nil {
		return opts, err
	}
	if opts.ErrorTransitions, err = config.StringSlice(cfg, "errorTransitions", []string{fragment.Error}); err != nil {
		return opts, err
	}
	rawLevel, err := config.String(cfg, "logLevel", "")
	if err != nil {
		return opts, err
	}
	opts.LogLevel, err = action.ParseLevel(rawLevel, action.LevelError)
	return opts, err
}

// errErrorTransition marks a delivered result whose transition counts as a
// breaker failure.
var errErrorTransition = errors.New("doAction returned an error transition")

type circuitBreaker struct {
	alias    string
	opts     Options
	doAction action.Action
	breaker  *gobreaker.CircuitBreaker[fragment.Result]
	recorder metrics.Recorder
}

func create(ctx context.Context, alias string, cfg map[string]any, rt action.Runtime, doAction action.Action) (action.Action, error) {
	if doAction == nil {
		return nil, fmt.Errorf("%s action '%s' requires doAction", Name, alias)
	}
	opts, err := parseOptions(alias, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}

	logger := ctxlog.FromContext(ctx).With("alias", alias, "breaker", opts.Name)
	settings := gobreaker.Settings{
		Name:    opts.Name,
		Timeout: opts.ResetTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(opts.MaxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed.", "from", from.String(), "to", to.String())
		},
	}
	logger.Debug("Circuit breaker created.", "max_failures", opts.MaxFailures, "max_retries", opts.MaxRetries, "timeout", opts.Timeout, "reset_timeout", opts.ResetTimeout)

	return &circuitBreaker{
		alias:    alias,
		opts:     opts,
		doAction: doAction,
		breaker:  gobreaker.NewCircuitBreaker[fragment.Result](settings),
		recorder: rt.Recorder(),
	}, nil
}

func (a *circuitBreaker) Apply(ctx context.Context, fctx fragment.Context) (fragment.Result, error) {
	log := action.NewLog(a.alias, a.opts.LogLevel)
	invocations := 0

	res, err := a.breaker.Execute(func() (fragment.Result, error) {
		var lastErr error
		for attempt := 0; attempt <= a.opts.MaxRetries; attempt++ {
			invocations++
			res, err := a.attempt(ctx, fctx, log)
			if err == nil {
				return res, nil
			}
			lastErr = err
		}
		return fragment.Result{}, lastErr
	})
	if err == nil {
		log.Info("invocationCount", invocations)
		log.Info("state", a.breaker.State().String())
		return fragment.NewResult(res.Fragment, res.Transition(), log.Build()), nil
	}

	ctxlog.FromContext(ctx).Debug("Circuit breaker fallback.", "alias", a.alias, "error", err)
	a.recorder.ObserveFallback(a.opts.Name)
	log.Error("invocationCount", invocations)
	log.Error("error", err.Error())
	log.Failure(err)
	return fragment.NewResult(fctx.Fragment, fragment.Fallback, log.Build()), nil
}

// attempt runs doAction once on a fresh clone of the fragment. A raised
// error and a configured error transition both fail the attempt.
func (a *circuitBreaker) attempt(ctx context.Context, fctx fragment.Context, log *action.Log) (fragment.Result, error) {
	res, inv := a.invoke(ctx, fctx.WithFragment(fctx.Fragment.Clone()))
	log.Invocation(inv)
	if inv.Err != nil {
		return res, inv.Err
	}
	if slices.Contains(a.opts.ErrorTransitions, res.Transition()) {
		return res, fmt.Errorf("%w '%s'", errErrorTransition, res.Transition())
	}
	return res, nil
}

// invoke runs doAction with the configured timeout. An action that ignores
// its context is abandoned once the timeout fires; it only ever touches its
// own fragment clone.
func (a *circuitBreaker) invoke(ctx context.Context, fctx fragment.Context) (fragment.Result, action.Invocation) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	type outcome struct {
		res fragment.Result
		inv action.Invocation
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{inv: action.Invocation{
					Status:   action.Exception,
					Duration: time.Since(start),
					Err:      fmt.Errorf("doAction panicked: %v", r),
				}}
			}
		}()
		res, inv := action.Invoke(ctx, a.doAction, fctx)
		done <- outcome{res: res, inv: inv}
	}()

	select {
	case o := <-done:
		return o.res, o.inv
	case <-ctx.Done():
		return fragment.Result{}, action.Invocation{
			Status:   action.Timeout,
			Duration: time.Since(start),
			Err:      fmt.Errorf("doAction timed out after %s: %w", a.opts.Timeout, ctx.Err()),
		}
	}
}
