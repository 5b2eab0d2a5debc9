package node

import "github.com/specialistvlad/fragmentgrid/internal/action"

// Node is a single vertex of a compiled task graph. It is a tagged variant:
// Kind selects which of the fields below are meaningful. Nodes reference
// each other by id, never by pointer, and are immutable once compiled.
type Node struct {
	// ID is the generated, unique identifier of this compiled vertex.
	ID string
	// Label is the human-readable name from the configuration.
	Label string
	// Kind distinguishes single, composite and stub nodes.
	Kind Kind

	// Action is the operation a single node applies. Nil for other kinds.
	Action action.Action
	// Operation describes how Action was built, for tracing.
	Operation Operation
	// Transitions maps a transition name to the id of the next node.
	// Only single nodes carry transitions.
	Transitions map[string]string

	// Nested lists the ids of the branches a composite node fans out to.
	Nested []string
	// OnSuccess and OnError are the composite's successors. Blank means terminal.
	OnSuccess string
	OnError   string
}

// Operation is the diagnostic description of a node's action.
type Operation struct {
	Factory string         `json:"factory"`
	Data    map[string]any `json:"data,omitempty"`
}

// NewSingle creates a node wrapping one action.
func NewSingle(id, label string, a action.Action, op Operation) *Node {
	return &Node{ID: id, Label: label, Kind: KindSingle, Action: a, Operation: op, Transitions: map[string]string{}}
}

// NewComposite creates a node grouping the given branches.
func NewComposite(id, label string, nested []string) *Node {
	return &Node{ID: id, Label: label, Kind: KindComposite, Nested: nested}
}

// NewStub creates a terminal placeholder node.
func NewStub(id, label string) *Node {
	return &Node{ID: id, Label: label, Kind: KindStub}
}

// Next returns the id of the node that follows transition. A missing entry
// means the node is terminal for that transition.
func (n *Node) Next(transition string) (string, bool) {
	switch n.Kind {
	case KindSingle:
		id, ok := n.Transitions[transition]
		return id, ok
	case KindComposite:
		var id string
		switch transition {
		case successTransition:
			id = n.OnSuccess
		case errorTransition:
			id = n.OnError
		}
		return id, id != ""
	default:
		return "", false
	}
}

// Edges returns every outgoing edge as transition name to node id.
func (n *Node) Edges() map[string]string {
	edges := make(map[string]string)
	switch n.Kind {
	case KindSingle:
		for k, v := range n.Transitions {
			edges[k] = v
		}
	case KindComposite:
		if n.OnSuccess != "" {
			edges[successTransition] = n.OnSuccess
		}
		if n.OnError != "" {
			edges[errorTransition] = n.OnError
		}
	}
	return edges
}
