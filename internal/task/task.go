package task

import "github.com/specialistvlad/fragmentgrid/internal/node"

// Task is a named, compiled graph. It owns an arena of nodes indexed by id
// and is immutable once built, so one Task is shared by every fragment that
// selects it.
type Task struct {
	Name  string
	Root  string
	nodes map[string]*node.Node
	order []string
}

// RootNode returns the entry vertex.
func (t *Task) RootNode() *node.Node {
	return t.nodes[t.Root]
}

// Node returns the vertex with the given id.
func (t *Task) Node(id string) (*node.Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Next resolves the successor of n for transition.
func (t *Task) Next(n *node.Node, transition string) (*node.Node, bool) {
	id, ok := n.Next(transition)
	if !ok {
		return nil, false
	}
	next, ok := t.nodes[id]
	return next, ok
}

// Nodes returns every vertex in compilation order (depth-first, parents
// before children).
func (t *Task) Nodes() []*node.Node {
	out := make([]*node.Node, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.nodes[id])
	}
	return out
}
