package fragment

import (
	"net/http"
	"net/url"
)

// ClientRequest is a snapshot of the request that produced the fragment. It is
// never modified during an execution.
type ClientRequest struct {
	Method  string      `json:"method" yaml:"method"`
	Path    string      `json:"path" yaml:"path"`
	Headers http.Header `json:"headers" yaml:"headers"`
	Params  url.Values  `json:"params" yaml:"params"`
}

// Context pairs the fragment being processed with the client request.
type Context struct {
	Fragment *Fragment
	Request  ClientRequest
}

// NewContext creates a Context.
func NewContext(f *Fragment, req ClientRequest) Context {
	return Context{Fragment: f, Request: req}
}

// WithFragment returns a copy of the context pointing at f.
func (c Context) WithFragment(f *Fragment) Context {
	c.Fragment = f
	return c
}
