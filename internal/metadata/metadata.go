package metadata

import (
	"sync"

	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/node"
	"github.com/specialistvlad/fragmentgrid/internal/task"
)

// Status is the execution status shown for a node in the execution graph.
type Status string

const (
	StatusSuccess     Status = "SUCCESS"
	StatusError       Status = "ERROR"
	StatusOther       Status = "OTHER"
	StatusUnprocessed Status = "UNPROCESSED"
	StatusMissing     Status = "MISSING"
)

// StatusFor maps the transition a node completed with to its status.
func StatusFor(transition string) Status {
	switch transition {
	case fragment.Success:
		return StatusSuccess
	case fragment.Error:
		return StatusError
	default:
		return StatusOther
	}
}

// NodeMetadata is the tracing record of one compiled node. Timestamps are
// Unix milliseconds; zero means the node did not run.
type NodeMetadata struct {
	NodeID      string
	Label       string
	Type        node.Kind
	Transitions map[string]string
	Nested      []string
	Operation   node.Operation

	Start      int64
	End        int64
	Status     Status
	Transition string
	Response   map[string]any
}

// FromTask creates the structural metadata of every node in t.
func FromTask(t *task.Task) map[string]*NodeMetadata {
	out := make(map[string]*NodeMetadata)
	for _, n := range t.Nodes() {
		out[n.ID] = &NodeMetadata{
			NodeID:      n.ID,
			Label:       n.Label,
			Type:        n.Kind,
			Transitions: n.Edges(),
			Nested:      append([]string(nil), n.Nested...),
			Operation:   n.Operation,
			Status:      StatusUnprocessed,
		}
	}
	return out
}

// Collector records execution timestamps for one task run. It is safe for
// the concurrent branches of composite nodes.
type Collector struct {
	mu    sync.Mutex
	nodes map[string]*NodeMetadata
}

// NewCollector starts an empty record for t.
func NewCollector(t *task.Task) *Collector {
	return &Collector{nodes: FromTask(t)}
}

// Started stores the start time of a node.
func (c *Collector) Started(id string, at int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.nodes[id]; ok {
		m.Start = at
	}
}

// Finished stores the outcome of a node.
func (c *Collector) Finished(id string, at int64, transition string, status Status, response map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.nodes[id]; ok {
		m.End = at
		m.Transition = transition
		m.Status = status
		m.Response = response
	}
}

// Snapshot returns a copy of the records with composite timestamps rolled up.
func (c *Collector) Snapshot() map[string]*NodeMetadata {
	c.mu.Lock()
	out := make(map[string]*NodeMetadata, len(c.nodes))
	for id, m := range c.nodes {
		cp := *m
		out[id] = &cp
	}
	c.mu.Unlock()

	CalculateTimestamps(out)
	return out
}
