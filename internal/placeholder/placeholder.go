// Package placeholder fills {source.path} markers in a string from a
// fragment.Context. Supported sources are payload, config, header, param,
// fragment (id, type) and uri (path, extension). Unknown or unresolved
// markers become the empty string.
package placeholder

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/specialistvlad/fragmentgrid/internal/fragment"
)

var marker = regexp.MustCompile(`\{([a-zA-Z]+)\.([^{}]+)\}`)

// Resolve replaces every marker in s with its value from fctx.
func Resolve(s string, fctx fragment.Context) string {
	return replace(s, fctx, func(v string) string { return v })
}

// ResolveEscaped is Resolve with every substituted value query-escaped, for
// building URLs.
func ResolveEscaped(s string, fctx fragment.Context) string {
	return replace(s, fctx, url.QueryEscape)
}

// Has reports whether s contains at least one marker.
func Has(s string) bool {
	return marker.MatchString(s)
}

func replace(s string, fctx fragment.Context, escape func(string) string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	return marker.ReplaceAllStringFunc(s, func(m string) string {
		groups := marker.FindStringSubmatch(m)
		v, ok := Value(groups[1], groups[2], fctx)
		if !ok {
			return ""
		}
		return escape(v)
	})
}

// Value looks up a single placeholder such as ("payload", "user.name").
func Value(source, key string, fctx fragment.Context) (string, bool) {
	switch source {
	case "payload":
		if fctx.Fragment == nil {
			return "", false
		}
		return lookup(fctx.Fragment.Payload, key)
	case "config":
		if fctx.Fragment == nil {
			return "", false
		}
		return lookup(fctx.Fragment.Configuration, key)
	case "header":
		v := fctx.Request.Headers.Get(key)
		return v, v != ""
	case "param":
		if !fctx.Request.Params.Has(key) {
			return "", false
		}
		return fctx.Request.Params.Get(key), true
	case "fragment":
		if fctx.Fragment == nil {
			return "", false
		}
		switch key {
		case "id":
			return fctx.Fragment.ID, true
		case "type":
			return fctx.Fragment.Type, true
		}
	case "uri":
		switch key {
		case "path":
			return fctx.Request.Path, fctx.Request.Path != ""
		case "extension":
			ext := strings.TrimPrefix(path.Ext(fctx.Request.Path), ".")
			return ext, ext != ""
		}
	}
	return "", false
}

func lookup(m map[string]any, key string) (string, bool) {
	v, ok := fragment.Lookup(m, key)
	if !ok || v == nil {
		return "", false
	}
	return stringify(v), true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}
