// Package socketio_rpc provides the "socketio-rpc" action, which hands the
// fragment to a remote worker over socket.io and returns the worker's
// result.
//
// The request {id, fragment, request} is emitted on `event`. The worker
// answers on `replyEvent` with {id, result} where result has the
// {fragment, transition, actionLog} shape, or with {id, error}. Replies are
// matched to requests by id, so one connection serves concurrent calls.
package socketio_rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
)

// Name is the factory name used in configuration.
const Name = "socketio-rpc"

// DefaultTimeout bounds the wait for a reply.
const DefaultTimeout = 10 * time.Second

// Module implements the registry.Module interface. Dial defaults to
// DialSocketIO.
type Module struct {
	Dial DialFunc
}

// Register registers the socketio-rpc factory.
func (m *Module) Register(r *registry.Registry) {
	dial := m.Dial
	if dial == nil {
		dial = DialSocketIO
	}
	r.RegisterAction(&action.Factory{
		Name:      Name,
		Cacheable: true,
		Create: func(ctx context.Context, alias string, cfg map[string]any, rt action.Runtime, doAction action.Action) (action.Action, error) {
			return create(ctx, alias, cfg, doAction, dial)
		},
	})
}

type request struct {
	ID       string                 `json:"id"`
	Fragment *fragment.Fragment     `json:"fragment"`
	Request  fragment.ClientRequest `json:"request"`
}

type reply struct {
	ID     string           `json:"id"`
	Result *fragment.Result `json:"result"`
	Error  string           `json:"error"`
}

type rpcAction struct {
	alias      string
	conn       ConnectionOptions
	event      string
	replyEvent string
	timeout    time.Duration
	dial       DialFunc

	mu        sync.Mutex
	transport Transport
	pending   map[string]chan reply
}

func create(ctx context.Context, alias string, cfg map[string]any, doAction action.Action, dial DialFunc) (action.Action, error) {
	if doAction != nil {
		return nil, fmt.Errorf("%s action '%s' does not support doAction", Name, alias)
	}
	a := &rpcAction{alias: alias, dial: dial, pending: make(map[string]chan reply)}

	var err error
	wrap := func(err error) error { return fmt.Errorf("%s action '%s': %w", Name, alias, err) }
	if a.conn.URL, err = config.String(cfg, "url", ""); err != nil {
		return nil, wrap(err)
	}
	if a.conn.URL == "" {
		return nil, wrap(fmt.Errorf("option 'url' is required"))
	}
	if a.conn.Namespace, err = config.String(cfg, "namespace", "/"); err != nil {
		return nil, wrap(err)
	}
	if a.conn.InsecureSkipVerify, err = config.Bool(cfg, "insecureSkipVerify", false); err != nil {
		return nil, wrap(err)
	}
	if a.conn.ConnectTimeout, err = config.Millis(cfg, "connectTimeout", 15*time.Second); err != nil {
		return nil, wrap(err)
	}
	if a.event, err = config.String(cfg, "event", "fragment"); err != nil {
		return nil, wrap(err)
	}
	if a.replyEvent, err = config.String(cfg, "replyEvent", a.event+"-result"); err != nil {
		return nil, wrap(err)
	}
	if a.timeout, err = config.Millis(cfg, "timeout", DefaultTimeout); err != nil {
		return nil, wrap(err)
	}
	return a, nil
}

// connect dials once; a failed dial is retried on the next call.
func (a *rpcAction) connect(ctx context.Context) (Transport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.transport != nil {
		return a.transport, nil
	}
	t, err := a.dial(ctx, a.conn)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)
	t.On(a.replyEvent, func(data ...any) { a.deliver(logger, data) })
	a.transport = t
	return t, nil
}

func (a *rpcAction) deliver(logger *slog.Logger, data []any) {
	if len(data) == 0 {
		return
	}
	raw, err := json.Marshal(data[0])
	if err != nil {
		logger.Error("Unreadable socket.io reply.", "alias", a.alias, "error", err)
		return
	}
	var r reply
	if err := json.Unmarshal(raw, &r); err != nil {
		logger.Error("Unreadable socket.io reply.", "alias", a.alias, "error", err)
		return
	}

	a.mu.Lock()
	ch, ok := a.pending[r.ID]
	delete(a.pending, r.ID)
	a.mu.Unlock()
	if !ok {
		logger.Warn("Socket.io reply for unknown request.", "alias", a.alias, "id", r.ID)
		return
	}
	ch <- r
}

// Close drops the connection and fails the calls still waiting for a reply.
// The next Apply dials again.
func (a *rpcAction) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.transport != nil {
		a.transport.Close()
		a.transport = nil
	}
	for id, ch := range a.pending {
		ch <- reply{ID: id, Error: "connection closed"}
		delete(a.pending, id)
	}
	return nil
}

func (a *rpcAction) Apply(ctx context.Context, fctx fragment.Context) (fragment.Result, error) {
	logger := ctxlog.FromContext(ctx)
	t, err := a.connect(ctx)
	if err != nil {
		return fragment.Result{}, fmt.Errorf("connect: %w", err)
	}

	id := uuid.NewString()
	ch := make(chan reply, 1)
	a.mu.Lock()
	a.pending[id] = ch
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.pending, id)
		a.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	logger.Debug("Emitting fragment.", "alias", a.alias, "event", a.event, "id", id)
	t.Emit(a.event, request{ID: id, Fragment: fctx.Fragment, Request: fctx.Request})

	select {
	case r := <-ch:
		if r.Error != "" {
			return fragment.Result{}, fmt.Errorf("remote worker failed: %s", r.Error)
		}
		if r.Result == nil {
			return fragment.Result{}, fmt.Errorf("remote worker sent an empty result")
		}
		res := *r.Result
		if res.Fragment == nil {
			res.Fragment = fctx.Fragment
		}
		logger.Debug("Received reply.", "alias", a.alias, "id", id, "transition", res.Transition())
		return res, nil
	case <-ctx.Done():
		return fragment.Result{}, fmt.Errorf("timed out after %s waiting for '%s': %w", a.timeout, a.replyEvent, ctx.Err())
	}
}
