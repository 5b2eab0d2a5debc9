package fragment

import (
	"encoding/json"
	"strings"
)

// Reserved transition names.
const (
	Success  = "_success"
	Error    = "_error"
	Fallback = "fallback"
)

// Result is the outcome of one action invocation.
type Result struct {
	Fragment   *Fragment
	transition string
	Log        map[string]any
}

// NewResult builds a Result. A blank transition is read back as Success.
func NewResult(f *Fragment, transition string, log map[string]any) Result {
	return Result{Fragment: f, transition: transition, Log: log}
}

// Transition returns the transition name, defaulting to Success when blank.
func (r Result) Transition() string {
	if strings.TrimSpace(r.transition) == "" {
		return Success
	}
	return r.transition
}

type wireResult struct {
	Fragment   *Fragment      `json:"fragment"`
	Transition string         `json:"transition"`
	ActionLog  map[string]any `json:"actionLog,omitempty"`
}

// MarshalJSON encodes the result as {fragment, transition, actionLog}.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireResult{Fragment: r.Fragment, Transition: r.Transition(), ActionLog: r.Log})
}

// UnmarshalJSON decodes the {fragment, transition, actionLog} shape.
func (r *Result) UnmarshalJSON(data []byte) error {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Fragment = w.Fragment
	r.transition = w.Transition
	r.Log = w.ActionLog
	return nil
}
