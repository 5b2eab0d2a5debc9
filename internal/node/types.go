package node

import "github.com/specialistvlad/fragmentgrid/internal/fragment"

const (
	successTransition = fragment.Success
	errorTransition   = fragment.Error
)

// Kind distinguishes between different kinds of nodes in the graph.
type Kind int

const (
	// KindSingle wraps one action and routes on its transition.
	KindSingle Kind = iota
	// KindComposite fans out to nested branches and joins them.
	KindComposite
	// KindStub does nothing and has no successors.
	KindStub
)

// String returns the lowercase name used in logs and execution graphs.
func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindComposite:
		return "composite"
	case KindStub:
		return "stub"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
