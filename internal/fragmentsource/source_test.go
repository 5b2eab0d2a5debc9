package fragmentsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/fragmentgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlDoc = `
fragments:
  - id: first
    type: snippet
    body: "<div>books</div>"
    configuration:
      data-task: books
    payload:
      seed: 1
    request:
      path: /books/list.html
      headers:
        x-user: ann
      params:
        id: "42"
  - type: snippet
`

const jsonList = `[
  {"id": "j1", "type": "snippet", "configuration": {"data-task": "t"}, "request": {"method": "POST"}}
]`

func TestDecode_Formats(t *testing.T) {
	entries, err := Decode([]byte(yamlDoc), ".yaml")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].ID)
	assert.Equal(t, "books", entries[0].Configuration["data-task"])
	assert.Equal(t, 1, entries[0].Payload["seed"])

	entries, err = Decode([]byte(jsonList), ".json")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "POST", entries[0].Request.Method)

	entries, err = Decode([]byte(`{"fragments": [{"type": "a"}, {"type": "b"}]}`), ".JSON")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = Decode([]byte("- type: a\n- type: b\n"), ".yml")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = Decode([]byte("  \n"), ".json")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = Decode([]byte("x"), ".txt")
	assert.ErrorContains(t, err, "unsupported fragments file type")

	_, err = Decode([]byte("{"), ".json")
	assert.Error(t, err)
}

func TestEntry_Context(t *testing.T) {
	entries, err := Decode([]byte(yamlDoc), ".yaml")
	require.NoError(t, err)

	fctx := entries[0].Context()
	assert.Equal(t, "first", fctx.Fragment.ID)
	assert.Equal(t, "<div>books</div>", fctx.Fragment.Body)
	assert.Equal(t, 1, fctx.Fragment.Payload["seed"])
	assert.Equal(t, "GET", fctx.Request.Method)
	assert.Equal(t, "ann", fctx.Request.Headers.Get("X-User"))
	assert.Equal(t, "42", fctx.Request.Params.Get("id"))

	generated := entries[1].Context()
	assert.NotEmpty(t, generated.Fragment.ID)
	assert.NotNil(t, generated.Fragment.Configuration)
}

func TestLoad_Directory(t *testing.T) {
	ctx := testutil.Context(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(jsonList), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(yamlDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# skip"), 0o644))

	fctxs, err := Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, fctxs, 3)
	assert.Equal(t, "j1", fctxs[0].Fragment.ID)
	assert.Equal(t, "first", fctxs[1].Fragment.ID)
}

func TestLoad_BrokenFile(t *testing.T) {
	ctx := testutil.Context(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fragments: [\n"), 0o644))

	_, err := Load(ctx, path)
	assert.ErrorContains(t, err, "failed to decode fragments file")
}
