package socketio_rpc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Transport is the connection the action talks over.
type Transport interface {
	Emit(event string, data any)
	On(event string, handler func(data ...any))
	Close()
}

// DialFunc opens a Transport.
type DialFunc func(ctx context.Context, opts ConnectionOptions) (Transport, error)

// ConnectionOptions locate the remote socket.io server.
type ConnectionOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

type socketTransport struct {
	io *socket.Socket
}

func (t *socketTransport) Emit(event string, data any) {
	t.io.Emit(event, data)
}

func (t *socketTransport) On(event string, handler func(data ...any)) {
	t.io.On(types.EventName(event), handler)
}

func (t *socketTransport) Close() {
	t.io.Disconnect()
}

// firstOutcome returns a channel that receives only the first value passed
// to settle. Later calls never block.
func firstOutcome() (<-chan error, func(error)) {
	ch := make(chan error, 1)
	return ch, func(err error) {
		select {
		case ch <- err:
		default:
		}
	}
}

// DialSocketIO connects over websocket and waits for the connect event.
func DialSocketIO(ctx context.Context, opts ConnectionOptions) (Transport, error) {
	logger := ctxlog.FromContext(ctx).With("transport", "socket.io", "url", opts.URL)
	logger.Info("Creating new client instance...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan, settle := firstOutcome()

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		settle(nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("Connection attempt failed.", "error", err)
		settle(err)
	})

	io.Connect()

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &socketTransport{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}
