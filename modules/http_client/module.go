// Package http_client provides the "http" action, which calls an HTTP
// endpoint and stores the response in the fragment payload.
//
// The stored value is {statusCode, headers, body}. A JSON response body is
// decoded; anything else is kept as a string. 2xx responses follow _success,
// every other status follows _error. Transport failures are returned as
// recoverable errors.
package http_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/placeholder"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
)

// Name is the factory name used in configuration.
const Name = "http"

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the http factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction(&action.Factory{Name: Name, Cacheable: true, Create: create})
}

// Options are the parsed action options.
type Options struct {
	Endpoint string
	Method   string
	Headers  map[string]string
	Body     string
	Timeout  time.Duration
	Key      string
	LogLevel action.Level
}

type httpAction struct {
	alias  string
	opts   Options
	client *http.Client
}

func parseOptions(alias string, cfg map[string]any) (Options, error) {
	var opts Options
	var err error
	if opts.Endpoint, err = config.String(cfg, "endpoint", ""); err != nil {
		return opts, err
	}
	if opts.Endpoint == "" {
		return opts, fmt.Errorf("option 'endpoint' is required")
	}
	if opts.Method, err = config.String(cfg, "method", http.MethodGet); err != nil {
		return opts, err
	}
	opts.Method = strings.ToUpper(opts.Method)
	if opts.Body, err = config.String(cfg, "body", ""); err != nil {
		return opts, err
	}
	if opts.Timeout, err = config.Millis(cfg, "timeout", 0); err != nil {
		return opts, err
	}
	if opts.Key, err = config.String(cfg, "alias", alias); err != nil {
		return opts, err
	}
	headers, err := config.Map(cfg, "headers")
	if err != nil {
		return opts, err
	}
	opts.Headers = make(map[string]string, len(headers))
	for name := range headers {
		if opts.Headers[name], err = config.String(headers, name, ""); err != nil {
			return opts, fmt.Errorf("header %w", err)
		}
	}
	rawLevel, err := config.String(cfg, "logLevel", "")
	if err != nil {
		return opts, err
	}
	opts.LogLevel, err = action.ParseLevel(rawLevel, action.LevelError)
	return opts, err
}

func create(ctx context.Context, alias string, cfg map[string]any, rt action.Runtime, doAction action.Action) (action.Action, error) {
	if doAction != nil {
		return nil, fmt.Errorf("%s action '%s' does not support doAction", Name, alias)
	}
	opts, err := parseOptions(alias, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s action '%s': %w", Name, alias, err)
	}
	return &httpAction{alias: alias, opts: opts, client: rt.Client()}, nil
}

func (a *httpAction) Apply(ctx context.Context, fctx fragment.Context) (fragment.Result, error) {
	logger := ctxlog.FromContext(ctx)
	log := action.NewLog(a.alias, a.opts.LogLevel)

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	url := placeholder.ResolveEscaped(a.opts.Endpoint, fctx)
	var body io.Reader
	if a.opts.Body != "" {
		body = strings.NewReader(placeholder.Resolve(a.opts.Body, fctx))
	}
	req, err := http.NewRequestWithContext(ctx, a.opts.Method, url, body)
	if err != nil {
		return fragment.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	for name, value := range a.opts.Headers {
		req.Header.Set(name, placeholder.Resolve(value, fctx))
	}

	logger.Debug("Making HTTP request.", "alias", a.alias, "method", a.opts.Method, "url", url)
	log.Info("request", map[string]any{"method": a.opts.Method, "url": url})

	started := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return fragment.Result{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fragment.Result{}, fmt.Errorf("failed to read response body: %w", err)
	}
	logger.Debug("Received HTTP response.", "alias", a.alias, "status", resp.Status, "duration", time.Since(started))

	f := fctx.Fragment.AppendPayload(a.opts.Key, map[string]any{
		"statusCode": resp.StatusCode,
		"headers":    flattenHeaders(resp.Header),
		"body":       decodeBody(resp.Header.Get("Content-Type"), raw),
	})

	transition := fragment.Success
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		transition = fragment.Error
		log.Error("statusCode", resp.StatusCode)
	}
	log.Info("response", map[string]any{"statusCode": resp.StatusCode, "duration": time.Since(started).Milliseconds()})
	return fragment.NewResult(f, transition, log.Build()), nil
}

func flattenHeaders(h http.Header) map[string]any {
	out := make(map[string]any, len(h))
	for name := range h {
		out[name] = h.Get(name)
	}
	return out
}

func decodeBody(contentType string, raw []byte) any {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return string(raw)
}
