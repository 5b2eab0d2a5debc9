package config

// Model is the unified, format-agnostic representation of the application
// configuration.
type Model struct {
	Actions map[string]*ActionOptions
	Tasks   map[string]*NodeOptions
}

// NewModel returns an empty model with initialized maps.
func NewModel() *Model {
	return &Model{
		Actions: make(map[string]*ActionOptions),
		Tasks:   make(map[string]*NodeOptions),
	}
}

// ActionOptions describes one action alias: which factory builds it, the
// opaque config handed to that factory, and an optional nested alias the
// built action wraps.
type ActionOptions struct {
	Factory  string
	Config   map[string]any
	DoAction string
}

// NodeOptions is one vertex of a declared task graph. Exactly one of Action
// or Subtasks is expected; a node with neither is a placeholder.
//
// On maps a transition to the node that follows it. Loaders resolve node
// references into pointers, so the tree may loop back on itself when the
// configuration does; compilers must guard against that.
type NodeOptions struct {
	Name     string
	Action   string
	Subtasks []*NodeOptions
	On       map[string]*NodeOptions
}

// IsComposite reports whether the node groups nested subtasks.
func (n *NodeOptions) IsComposite() bool {
	return len(n.Subtasks) > 0
}
