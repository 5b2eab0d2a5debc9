package payload_to_body

import (
	"testing"

	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/registry"
	"github.com/specialistvlad/fragmentgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadToBody(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)
	factory, ok := r.ActionFactory(Name)
	require.True(t, ok)
	assert.False(t, factory.Cacheable)

	cases := map[string]struct {
		key        string
		wantBody   string
		transition string
	}{
		"whole payload": {key: "", wantBody: `{"book":{"title":"Dune"}}`, transition: fragment.Success},
		"nested key":    {key: "book.title", wantBody: `"Dune"`, transition: fragment.Success},
		"object key":    {key: "book", wantBody: `{"title":"Dune"}`, transition: fragment.Success},
		"missing key":   {key: "book.author", wantBody: "untouched", transition: fragment.Error},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := testutil.Context(t)
			a, err := factory.Create(ctx, "render", map[string]any{"key": tc.key}, action.Runtime{}, nil)
			require.NoError(t, err)

			f := fragment.New("snippet", "untouched", nil).AppendPayload("book", map[string]any{"title": "Dune"})
			res, err := a.Apply(ctx, fragment.NewContext(f, fragment.ClientRequest{}))
			require.NoError(t, err)
			assert.Equal(t, tc.transition, res.Transition())
			assert.Equal(t, tc.wantBody, res.Fragment.Body)
		})
	}
}
