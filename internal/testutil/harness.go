package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Context returns a background context carrying a debug logger whose output
// is captured and only printed when FRAGMENTGRID_TEST_LOGS=true.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, _ := ContextWithLogs(t)
	return ctx
}

// ContextWithLogs is Context that also returns the captured log buffer so
// tests can assert on log lines.
func ContextWithLogs(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if os.Getenv("FRAGMENTGRID_TEST_LOGS") == "true" {
			t.Logf("--- CAPTURED LOGS ---\n%s", buf.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), logger), buf
}
