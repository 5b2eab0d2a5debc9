package action

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/fragmentgrid/internal/fragment"
)

// Level controls how much an action records in its Result log.
type Level int

const (
	// LevelInfo records info entries, errors and every doAction invocation.
	LevelInfo Level = iota
	// LevelError records only errors and failed doAction invocations.
	LevelError
)

// ParseLevel parses "info" or "error". A blank value yields def.
func ParseLevel(s string, def Level) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case "info":
		return LevelInfo, nil
	case "error":
		return LevelError, nil
	default:
		return def, fmt.Errorf("invalid logLevel '%s': must be 'info' or 'error'", s)
	}
}

// InvocationStatus is the outcome of a nested action call.
type InvocationStatus string

const (
	ResultDelivered InvocationStatus = "RESULT_DELIVERED"
	Exception       InvocationStatus = "EXCEPTION"
	Timeout         InvocationStatus = "TIMEOUT"
)

// Invocation records one call of a wrapped action.
type Invocation struct {
	Status   InvocationStatus
	Duration time.Duration
	Log      map[string]any
	Err      error
}

// Log accumulates the structured log an action attaches to its Result.
type Log struct {
	mu          sync.Mutex
	alias       string
	level       Level
	logs        map[string]any
	errors      []any
	invocations []any
}

// NewLog creates an empty log for alias.
func NewLog(alias string, level Level) *Log {
	return &Log{alias: alias, level: level, logs: map[string]any{}}
}

// Info records key only at LevelInfo.
func (l *Log) Info(key string, value any) {
	if l.level != LevelInfo {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs[key] = value
}

// Error records key at any level.
func (l *Log) Error(key string, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs[key] = value
}

// Failure appends err to the errors list at any level.
func (l *Log) Failure(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, map[string]any{
		"type":    fmt.Sprintf("%T", unwrapAll(err)),
		"message": err.Error(),
	})
}

// Invocation records a doAction call. Successful calls are kept only at
// LevelInfo.
func (l *Log) Invocation(inv Invocation) {
	if inv.Status == ResultDelivered && l.level != LevelInfo {
		return
	}
	entry := map[string]any{
		"status":   string(inv.Status),
		"duration": inv.Duration.Milliseconds(),
	}
	if inv.Log != nil {
		entry["log"] = inv.Log
	}
	if inv.Err != nil {
		entry["error"] = inv.Err.Error()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invocations = append(l.invocations, entry)
}

// Build returns {alias, logs, doActionLogs}, with logs.errors when any
// failure was recorded.
func (l *Log) Build() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	logs := make(map[string]any, len(l.logs)+1)
	for k, v := range l.logs {
		logs[k] = v
	}
	if len(l.errors) > 0 {
		logs["errors"] = append([]any(nil), l.errors...)
	}
	return map[string]any{
		"alias":        l.alias,
		"logs":         logs,
		"doActionLogs": append([]any{}, l.invocations...),
	}
}

// Invoke calls a wrapped action and measures it.
func Invoke(ctx context.Context, a Action, fctx fragment.Context) (fragment.Result, Invocation) {
	start := time.Now()
	res, err := a.Apply(ctx, fctx)
	inv := Invocation{Duration: time.Since(start)}
	switch {
	case err == nil:
		inv.Status = ResultDelivered
		inv.Log = res.Log
	case errors.Is(err, context.DeadlineExceeded):
		inv.Status = Timeout
		inv.Err = err
	default:
		inv.Status = Exception
		inv.Err = err
	}
	return res, inv
}

func unwrapAll(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
