package metadata

import (
	"sort"

	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/node"
)

// GraphNode is one vertex of the execution graph handed to log consumers.
type GraphNode struct {
	ID        string                `json:"id"`
	Type      string                `json:"type"`
	Label     string                `json:"label"`
	Status    Status                `json:"status"`
	Started   int64                 `json:"started,omitempty"`
	Finished  int64                 `json:"finished,omitempty"`
	Operation *node.Operation       `json:"operation,omitempty"`
	Subtasks  []*GraphNode          `json:"subtasks,omitempty"`
	On        map[string]*GraphNode `json:"on,omitempty"`
	Response  map[string]any        `json:"response,omitempty"`
}

// BuildGraph converts flat metadata into a tree rooted at rootID. A
// non-success transition that was taken but has no edge is shown as a
// synthetic node with StatusMissing.
func BuildGraph(rootID string, nodes map[string]*NodeMetadata) *GraphNode {
	return build(rootID, nodes, map[string]bool{})
}

func build(id string, nodes map[string]*NodeMetadata, visiting map[string]bool) *GraphNode {
	m, ok := nodes[id]
	if !ok || visiting[id] {
		return nil
	}
	visiting[id] = true
	defer delete(visiting, id)

	g := &GraphNode{
		ID:       m.NodeID,
		Type:     m.Type.String(),
		Label:    m.Label,
		Status:   m.Status,
		Started:  m.Start,
		Finished: m.End,
		Response: m.Response,
	}
	if m.Operation.Factory != "" {
		op := m.Operation
		g.Operation = &op
	}
	for _, nestedID := range m.Nested {
		if child := build(nestedID, nodes, visiting); child != nil {
			g.Subtasks = append(g.Subtasks, child)
		}
	}

	transitions := make([]string, 0, len(m.Transitions))
	for t := range m.Transitions {
		transitions = append(transitions, t)
	}
	sort.Strings(transitions)
	for _, t := range transitions {
		if child := build(m.Transitions[t], nodes, visiting); child != nil {
			if g.On == nil {
				g.On = make(map[string]*GraphNode)
			}
			g.On[t] = child
		}
	}

	if m.Transition != "" && m.Transition != fragment.Success {
		if _, ok := m.Transitions[m.Transition]; !ok {
			if g.On == nil {
				g.On = make(map[string]*GraphNode)
			}
			g.On[m.Transition] = &GraphNode{
				ID:     m.NodeID + "-missing",
				Type:   node.KindStub.String(),
				Label:  "!",
				Status: StatusMissing,
			}
		}
	}
	return g
}
