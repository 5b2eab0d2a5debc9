// Package fragmentsource reads the fragments a run processes from JSON or
// YAML files. A file holds either a list of entries or an object with a
// "fragments" list:
//
//	fragments:
//	  - type: snippet
//	    body: "<div></div>"
//	    configuration:
//	      data-task: books
//	    request:
//	      path: /books
//	      params: { id: "42" }
//
// A blank id is replaced with a generated one.
package fragmentsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file types Load understands.
var Extensions = []string{".json", ".yaml", ".yml"}

// Entry is the on-disk shape of one fragment.
type Entry struct {
	ID            string         `json:"id" yaml:"id"`
	Type          string         `json:"type" yaml:"type"`
	Body          string         `json:"body" yaml:"body"`
	Configuration map[string]any `json:"configuration" yaml:"configuration"`
	Payload       map[string]any `json:"payload" yaml:"payload"`
	Request       Request        `json:"request" yaml:"request"`
}

// Request is the on-disk shape of the client request. Headers and params
// accept a single value per key.
type Request struct {
	Method  string            `json:"method" yaml:"method"`
	Path    string            `json:"path" yaml:"path"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Params  map[string]string `json:"params" yaml:"params"`
}

type document struct {
	Fragments []Entry `json:"fragments" yaml:"fragments"`
}

// Load reads every fragment file under path (a file or a directory) in
// lexical file order.
func Load(ctx context.Context, path string) ([]fragment.Context, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFiles(path, Extensions...)
	if err != nil {
		return nil, fmt.Errorf("failed to search fragments in %s: %w", path, err)
	}

	var out []fragment.Context
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read fragments file %s: %w", file, err)
		}
		entries, err := Decode(data, filepath.Ext(file))
		if err != nil {
			return nil, fmt.Errorf("failed to decode fragments file %s: %w", file, err)
		}
		logger.Debug("Fragments file loaded.", "file", file, "count", len(entries))
		for _, e := range entries {
			out = append(out, e.Context())
		}
	}
	return out, nil
}

// Decode parses one file's content. ext selects the format (".json",
// ".yaml" or ".yml").
func Decode(data []byte, ext string) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch strings.ToLower(ext) {
	case ".json":
		if trimmed[0] == '[' {
			var entries []Entry
			if err := json.Unmarshal(trimmed, &entries); err != nil {
				return nil, err
			}
			return entries, nil
		}
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		return doc.Fragments, nil

	case ".yaml", ".yml":
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, err
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			var entries []Entry
			if err := node.Decode(&entries); err != nil {
				return nil, err
			}
			return entries, nil
		}
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Fragments, nil

	default:
		return nil, fmt.Errorf("unsupported fragments file type '%s'", ext)
	}
}

// Context converts the entry into a fragment.Context.
func (e Entry) Context() fragment.Context {
	f := fragment.New(e.Type, e.Body, e.Configuration)
	if e.ID != "" {
		f.ID = e.ID
	}
	if e.Payload != nil {
		f.MergeInPayload(e.Payload)
	}

	req := fragment.ClientRequest{
		Method:  e.Request.Method,
		Path:    e.Request.Path,
		Headers: http.Header{},
		Params:  url.Values{},
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	for k, v := range e.Request.Headers {
		req.Headers.Set(k, v)
	}
	for k, v := range e.Request.Params {
		req.Params.Set(k, v)
	}
	return fragment.NewContext(f, req)
}
