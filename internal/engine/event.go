package engine

import (
	"encoding/json"
	"sync"

	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/metadata"
)

// Status is the overall processing status of a fragment.
type Status string

const (
	StatusUnprocessed Status = "UNPROCESSED"
	StatusSuccess     Status = "SUCCESS"
	StatusFailure     Status = "FAILURE"
)

// EntryStatus is the status of a single event log entry.
type EntryStatus string

const (
	EntrySuccess               EntryStatus = "SUCCESS"
	EntryError                 EntryStatus = "ERROR"
	EntryUnsupportedTransition EntryStatus = "UNSUPPORTED_TRANSITION"
	EntryTimeout               EntryStatus = "TIMEOUT"
	EntryUnprocessed           EntryStatus = "UNPROCESSED"
)

// LogEntry records one node outcome.
type LogEntry struct {
	Task       string         `json:"task"`
	Node       string         `json:"node"`
	Label      string         `json:"label"`
	Status     EntryStatus    `json:"status"`
	Transition string         `json:"transition,omitempty"`
	Timestamp  int64          `json:"timestamp"`
	NodeLog    map[string]any `json:"nodeLog,omitempty"`
}

// EventLog is the ordered list of node outcomes of one fragment. Composite
// branches append concurrently, so access is synchronized.
type EventLog struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Append adds an entry.
func (l *EventLog) Append(e LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the entries in append order.
func (l *EventLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), l.entries...)
}

// Earliest returns the smallest entry timestamp, or 0 when empty.
func (l *EventLog) Earliest() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var min int64
	for i, e := range l.entries {
		if i == 0 || e.Timestamp < min {
			min = e.Timestamp
		}
	}
	return min
}

// Latest returns the largest entry timestamp, or 0 when empty.
func (l *EventLog) Latest() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var max int64
	for _, e := range l.entries {
		if e.Timestamp > max {
			max = e.Timestamp
		}
	}
	return max
}

// MarshalJSON encodes the entries as an array.
func (l *EventLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Entries())
}

// FragmentEvent is the outcome of processing one fragment.
type FragmentEvent struct {
	Fragment *fragment.Fragment
	Status   Status
	Task     string
	Log      *EventLog

	root  string
	nodes map[string]*metadata.NodeMetadata
}

func newUnprocessedEvent(f *fragment.Fragment) *FragmentEvent {
	return &FragmentEvent{Fragment: f, Status: StatusUnprocessed, Log: NewEventLog()}
}

// Nodes returns the per-node metadata of the run, keyed by node id.
func (e *FragmentEvent) Nodes() map[string]*metadata.NodeMetadata {
	return e.nodes
}

// ExecutionLog is the serializable trace of one fragment.
type ExecutionLog struct {
	Fragment   *fragment.Fragment  `json:"fragment"`
	Status     Status              `json:"status"`
	Task       string              `json:"task,omitempty"`
	StartTime  int64               `json:"startTime"`
	FinishTime int64               `json:"finishTime"`
	Events     *EventLog           `json:"events"`
	Graph      *metadata.GraphNode `json:"graph,omitempty"`
}

// ExecutionLog builds the trace handed to log consumers.
func (e *FragmentEvent) ExecutionLog() ExecutionLog {
	out := ExecutionLog{
		Fragment:   e.Fragment,
		Status:     e.Status,
		Task:       e.Task,
		StartTime:  e.Log.Earliest(),
		FinishTime: e.Log.Latest(),
		Events:     e.Log,
	}
	if e.root != "" {
		out.Graph = metadata.BuildGraph(e.root, e.nodes)
	}
	return out
}
