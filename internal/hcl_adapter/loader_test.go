package hcl_adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/fragmentgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const booksHCL = `
action "book-api" {
  factory = "http"
  config  = {
    endpoint = "http://books/{param.id}"
    timeout  = 1500
    ratio    = 0.5
    retry    = true
    headers  = { Accept = "application/json" }
    codes    = [200, 201]
  }
}

action "cached-books" {
  factory   = "cache"
  do_action = "book-api"
}

task "books" {
  root = "group"

  node "group" {
    subtasks = ["fetch", "static"]
    on       = { "_success" = "render", "_error" = "fallback" }
  }
  node "fetch" {
    action = "cached-books"
  }
  node "static" {
    action = "book-api"
    on     = { "custom" = "stub" }
  }
  node "render" {
    action = "book-api"
  }
  node "fallback" {
    action = "book-api"
  }
  node "stub" {}
}
`

func TestLoad_ActionsAndTasks(t *testing.T) {
	ctx := testutil.Context(t)
	dir := t.TempDir()
	writeFile(t, dir, "books.hcl", booksHCL)

	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)

	require.Contains(t, model.Actions, "book-api")
	api := model.Actions["book-api"]
	assert.Equal(t, "http", api.Factory)
	assert.Empty(t, api.DoAction)
	want := map[string]any{
		"endpoint": "http://books/{param.id}",
		"timeout":  1500,
		"ratio":    0.5,
		"retry":    true,
		"headers":  map[string]any{"Accept": "application/json"},
		"codes":    []any{200, 201},
	}
	if diff := cmp.Diff(want, api.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	cached := model.Actions["cached-books"]
	assert.Equal(t, "book-api", cached.DoAction)
	assert.Equal(t, map[string]any{}, cached.Config)

	root := model.Tasks["books"]
	require.NotNil(t, root)
	assert.Equal(t, "group", root.Name)
	require.Len(t, root.Subtasks, 2)
	assert.Equal(t, "fetch", root.Subtasks[0].Name)
	assert.Equal(t, "cached-books", root.Subtasks[0].Action)
	assert.Equal(t, "render", root.On["_success"].Name)
	assert.Equal(t, "fallback", root.On["_error"].Name)

	stub := root.Subtasks[1].On["custom"]
	require.NotNil(t, stub)
	assert.Empty(t, stub.Action)
	assert.False(t, stub.IsComposite())
}

func TestLoad_ReferencesShareNodeOptions(t *testing.T) {
	ctx := testutil.Context(t)
	dir := t.TempDir()
	writeFile(t, dir, "loop.hcl", `
task "loop" {
  root = "a"
  node "a" {
    action = "x"
    on     = { "_success" = "b" }
  }
  node "b" {
    action = "x"
    on     = { "_success" = "a" }
  }
}
`)
	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)

	a := model.Tasks["loop"]
	assert.Same(t, a, a.On["_success"].On["_success"])
}

func TestLoad_MergesFilesAndSkipsMissingPaths(t *testing.T) {
	ctx := testutil.Context(t)
	dir := t.TempDir()
	writeFile(t, dir, "actions/a.hcl", `action "a" { factory = "inline-body" }`)
	writeFile(t, dir, "tasks/t.hcl", `task "t" {
  root = "n"
  node "n" { action = "a" }
}`)
	writeFile(t, dir, "ignored.txt", `not hcl`)

	model, err := NewLoader().Load(ctx, dir, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Len(t, model.Actions, 1)
	assert.Len(t, model.Tasks, 1)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]struct {
		files map[string]string
		want  string
	}{
		"unknown reference": {
			files: map[string]string{"t.hcl": `task "t" {
  root = "a"
  node "a" {
    action = "x"
    on     = { "_success" = "ghost" }
  }
}`},
			want: "references unknown node 'ghost'",
		},
		"missing root": {
			files: map[string]string{"t.hcl": `task "t" {
  root = "nope"
  node "a" { action = "x" }
}`},
			want: "root node 'nope' is not defined",
		},
		"duplicate node": {
			files: map[string]string{"t.hcl": `task "t" {
  root = "a"
  node "a" { action = "x" }
  node "a" { action = "y" }
}`},
			want: "duplicate node 'a'",
		},
		"action and subtasks": {
			files: map[string]string{"t.hcl": `task "t" {
  root = "a"
  node "a" {
    action   = "x"
    subtasks = ["b"]
  }
  node "b" {}
}`},
			want: "declares both an action and subtasks",
		},
		"duplicate alias across files": {
			files: map[string]string{
				"a.hcl": `action "x" { factory = "inline-body" }`,
				"b.hcl": `action "x" { factory = "inline-payload" }`,
			},
			want: "action 'x' is defined more than once",
		},
		"config is not an object": {
			files: map[string]string{"a.hcl": `action "x" {
  factory = "inline-body"
  config  = "text"
}`},
			want: "must be an object",
		},
		"syntax error": {
			files: map[string]string{"a.hcl": `action "x" {`},
			want:  "failed to parse HCL file",
		},
		"unknown attribute": {
			files: map[string]string{"a.hcl": `action "x" {
  factory = "inline-body"
  colour  = "red"
}`},
			want: "failed to decode HCL file",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := testutil.Context(t)
			dir := t.TempDir()
			for file, content := range tc.files {
				writeFile(t, dir, file, content)
			}
			_, err := NewLoader().Load(ctx, dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
