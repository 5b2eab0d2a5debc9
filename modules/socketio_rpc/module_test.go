package socketio_rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
	"github.com/specialistvlad/fragmentgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport answers every emit through respond, asynchronously, the way
// a remote worker would.
type fakeTransport struct {
	mu       sync.Mutex
	handlers map[string]func(...any)
	events   []string
	respond  func(req map[string]any) any
	closed   atomic.Int32
}

func (t *fakeTransport) Emit(event string, data any) {
	raw, _ := json.Marshal(data)
	var req map[string]any
	_ = json.Unmarshal(raw, &req)

	t.mu.Lock()
	t.events = append(t.events, event)
	t.mu.Unlock()

	go func() {
		out := t.respond(req)
		if out == nil {
			return
		}
		t.mu.Lock()
		h := t.handlers["fragment-result"]
		t.mu.Unlock()
		if h != nil {
			h(out)
		}
	}()
}

func (t *fakeTransport) On(event string, handler func(data ...any)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handlers == nil {
		t.handlers = map[string]func(...any){}
	}
	t.handlers[event] = handler
}

func (t *fakeTransport) Close() { t.closed.Add(1) }

func build(t *testing.T, ctx context.Context, cfg map[string]any, dial DialFunc) action.Action {
	t.Helper()
	r := registry.New()
	(&Module{Dial: dial}).Register(r)
	f, ok := r.ActionFactory(Name)
	require.True(t, ok)
	a, err := f.Create(ctx, "remote", cfg, action.Runtime{}, nil)
	require.NoError(t, err)
	return a
}

func dialTo(ft *fakeTransport, dials *atomic.Int32) DialFunc {
	return func(ctx context.Context, opts ConnectionOptions) (Transport, error) {
		dials.Add(1)
		return ft, nil
	}
}

func echoWorker(req map[string]any) any {
	f := req["fragment"].(map[string]any)
	f["body"] = "rendered " + f["id"].(string)
	return map[string]any{
		"id":     req["id"],
		"result": map[string]any{"fragment": f, "transition": "custom"},
	}
}

func newContext(id string) fragment.Context {
	f := fragment.New("snippet", "", nil)
	f.ID = id
	return fragment.NewContext(f, fragment.ClientRequest{Path: "/p"})
}

func TestRPC_RoundTrip(t *testing.T) {
	ctx := testutil.Context(t)
	ft := &fakeTransport{respond: echoWorker}
	var dials atomic.Int32
	a := build(t, ctx, map[string]any{"url": "http://worker", "event": "fragment", "replyEvent": "fragment-result"}, dialTo(ft, &dials))

	res, err := a.Apply(ctx, newContext("f1"))
	require.NoError(t, err)
	assert.Equal(t, "custom", res.Transition())
	assert.Equal(t, "rendered f1", res.Fragment.Body)

	_, err = a.Apply(ctx, newContext("f2"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), dials.Load())
	assert.Equal(t, []string{"fragment", "fragment"}, ft.events)
}

func TestRPC_ConcurrentCallsAreCorrelated(t *testing.T) {
	ctx := testutil.Context(t)
	ft := &fakeTransport{respond: func(req map[string]any) any {
		// Later requests answer first.
		f := req["fragment"].(map[string]any)
		var n int
		_, _ = fmt.Sscanf(f["id"].(string), "f%d", &n)
		time.Sleep(time.Duration(10-n) * 3 * time.Millisecond)
		return echoWorker(req)
	}}
	var dials atomic.Int32
	a := build(t, ctx, map[string]any{"url": "http://worker"}, dialTo(ft, &dials))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("f%d", i)
			res, err := a.Apply(ctx, newContext(id))
			if assert.NoError(t, err) {
				assert.Equal(t, "rendered "+id, res.Fragment.Body)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), dials.Load())
}

func TestRPC_RemoteErrorIsRecoverable(t *testing.T) {
	ctx := testutil.Context(t)
	ft := &fakeTransport{respond: func(req map[string]any) any {
		return map[string]any{"id": req["id"], "error": "worker crashed"}
	}}
	var dials atomic.Int32
	a := build(t, ctx, map[string]any{"url": "http://worker"}, dialTo(ft, &dials))

	_, err := a.Apply(ctx, newContext("f1"))
	require.Error(t, err)
	assert.False(t, action.IsFatal(err))
	assert.ErrorContains(t, err, "worker crashed")
}

func TestRPC_Timeout(t *testing.T) {
	ctx := testutil.Context(t)
	ft := &fakeTransport{respond: func(map[string]any) any { return nil }}
	var dials atomic.Int32
	a := build(t, ctx, map[string]any{"url": "http://worker", "timeout": 20}, dialTo(ft, &dials))

	_, err := a.Apply(ctx, newContext("f1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRPC_DialFailureIsRetried(t *testing.T) {
	ctx := testutil.Context(t)
	var dials atomic.Int32
	ft := &fakeTransport{respond: echoWorker}
	dial := func(ctx context.Context, opts ConnectionOptions) (Transport, error) {
		if dials.Add(1) == 1 {
			return nil, errors.New("refused")
		}
		return ft, nil
	}
	a := build(t, ctx, map[string]any{"url": "http://worker"}, dial)

	_, err := a.Apply(ctx, newContext("f1"))
	assert.ErrorContains(t, err, "refused")

	_, err = a.Apply(ctx, newContext("f1"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), dials.Load())
}

func TestRPC_CloseFailsPendingCallsAndRedials(t *testing.T) {
	ctx := testutil.Context(t)
	silent := &fakeTransport{respond: func(map[string]any) any { return nil }}
	ft := &fakeTransport{respond: echoWorker}
	var dials atomic.Int32
	dial := func(ctx context.Context, opts ConnectionOptions) (Transport, error) {
		if dials.Add(1) == 1 {
			return silent, nil
		}
		return ft, nil
	}
	a := build(t, ctx, map[string]any{"url": "http://worker", "timeout": 5000}, dial)

	errCh := make(chan error, 1)
	go func() {
		_, err := a.Apply(ctx, newContext("f1"))
		errCh <- err
	}()
	require.Eventually(t, func() bool {
		silent.mu.Lock()
		defer silent.mu.Unlock()
		return len(silent.events) == 1
	}, time.Second, 5*time.Millisecond)

	closer, ok := a.(interface{ Close() error })
	require.True(t, ok)
	require.NoError(t, closer.Close())

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.False(t, action.IsFatal(err))
		assert.ErrorContains(t, err, "connection closed")
	case <-time.After(time.Second):
		t.Fatal("pending call was not released by Close")
	}
	assert.Equal(t, int32(1), silent.closed.Load())

	res, err := a.Apply(ctx, newContext("f2"))
	require.NoError(t, err)
	assert.Equal(t, "rendered f2", res.Fragment.Body)
	assert.Equal(t, int32(2), dials.Load())
}

func TestRPC_Validation(t *testing.T) {
	ctx := testutil.Context(t)
	r := registry.New()
	(&Module{}).Register(r)
	f, _ := r.ActionFactory(Name)

	_, err := f.Create(ctx, "remote", map[string]any{}, action.Runtime{}, nil)
	assert.ErrorContains(t, err, "option 'url' is required")

	_, err = f.Create(ctx, "remote", map[string]any{"url": "http://x", "timeout": "long"}, action.Runtime{}, nil)
	assert.ErrorContains(t, err, "must be a number")
}

func TestFirstOutcome_LaterCallsDoNotBlock(t *testing.T) {
	ch, settle := firstOutcome()
	refused := errors.New("refused")

	done := make(chan struct{})
	go func() {
		settle(nil)
		settle(refused)
		settle(refused)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("settle blocked after the first outcome")
	}
	assert.NoError(t, <-ch)
	select {
	case err := <-ch:
		t.Fatalf("unexpected second outcome %v", err)
	default:
	}
}
