package inline_body

import (
	"context"
	"testing"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
	"github.com/specialistvlad/fragmentgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, ctx context.Context, cfg map[string]any, doAction action.Action) (action.Action, error) {
	t.Helper()
	r := registry.New()
	(&Module{}).Register(r)
	f, ok := r.ActionFactory(Name)
	require.True(t, ok)
	assert.True(t, f.Cacheable)
	return f.Create(ctx, "hello", cfg, action.Runtime{}, doAction)
}

func TestInlineBody_ReplacesBody(t *testing.T) {
	ctx := testutil.Context(t)
	a, err := build(t, ctx, map[string]any{"body": "<p>hi</p>", "logLevel": "info"}, nil)
	require.NoError(t, err)

	res, err := a.Apply(ctx, fragment.NewContext(fragment.New("snippet", "old", nil), fragment.ClientRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", res.Fragment.Body)
	assert.Equal(t, fragment.Success, res.Transition())

	logs := res.Log["logs"].(map[string]any)
	assert.Equal(t, "old", logs["originalBody"])
	assert.Equal(t, "<p>hi</p>", logs["body"])
	assert.Equal(t, "hello", res.Log["alias"])
}

func TestInlineBody_DefaultsToEmptyBodyAndQuietLog(t *testing.T) {
	ctx := testutil.Context(t)
	a, err := build(t, ctx, map[string]any{}, nil)
	require.NoError(t, err)

	res, err := a.Apply(ctx, fragment.NewContext(fragment.New("snippet", "old", nil), fragment.ClientRequest{}))
	require.NoError(t, err)
	assert.Empty(t, res.Fragment.Body)
	assert.Empty(t, res.Log["logs"])
}

func TestInlineBody_RejectsInvalidConfig(t *testing.T) {
	ctx := testutil.Context(t)
	noop := action.Func(func(ctx context.Context, fctx fragment.Context) (fragment.Result, error) {
		return fragment.NewResult(fctx.Fragment, "", nil), nil
	})

	_, err := build(t, ctx, map[string]any{}, noop)
	assert.ErrorContains(t, err, "does not support doAction")

	_, err = build(t, ctx, map[string]any{"body": 3}, nil)
	assert.ErrorContains(t, err, "must be a string")

	_, err = build(t, ctx, map[string]any{"logLevel": "loud"}, nil)
	assert.ErrorContains(t, err, "invalid logLevel")
}
