package metadata

import (
	"testing"

	"github.com/specialistvlad/fragmentgrid/internal/node"
	"github.com/stretchr/testify/assert"
)

func single(id string, start, end int64, transitions map[string]string) *NodeMetadata {
	return &NodeMetadata{NodeID: id, Type: node.KindSingle, Start: start, End: end, Transitions: transitions}
}

func composite(id string, nested ...string) *NodeMetadata {
	return &NodeMetadata{NodeID: id, Type: node.KindComposite, Nested: nested, Transitions: map[string]string{}}
}

func TestCalculateTimestamps_TwoLeaves(t *testing.T) {
	nodes := map[string]*NodeMetadata{
		"c": composite("c", "a", "b"),
		"a": single("a", 10, 20, nil),
		"b": single("b", 15, 25, nil),
	}

	CalculateTimestamps(nodes)

	assert.Equal(t, int64(10), nodes["c"].Start)
	assert.Equal(t, int64(25), nodes["c"].End)
}

func TestCalculateTimestamps_FollowsTransitions(t *testing.T) {
	nodes := map[string]*NodeMetadata{
		"c":    composite("c", "a", "b"),
		"a":    single("a", 10, 20, map[string]string{"_success": "a2"}),
		"a2":   single("a2", 21, 40, map[string]string{"_error": "a3"}),
		"a3":   single("a3", 41, 55, nil),
		"b":    single("b", 12, 30, map[string]string{"_error": "skip"}),
		"skip": single("skip", 0, 0, nil),
	}

	CalculateTimestamps(nodes)

	assert.Equal(t, int64(10), nodes["c"].Start)
	assert.Equal(t, int64(55), nodes["c"].End)
}

func TestCalculateTimestamps_NestedCompositesResolveBottomUp(t *testing.T) {
	nodes := map[string]*NodeMetadata{
		"outer": composite("outer", "inner", "z"),
		"inner": composite("inner", "x", "y"),
		"x":     single("x", 5, 9, nil),
		"y":     single("y", 7, 30, nil),
		"z":     single("z", 6, 12, nil),
	}

	CalculateTimestamps(nodes)

	assert.Equal(t, int64(5), nodes["inner"].Start)
	assert.Equal(t, int64(30), nodes["inner"].End)
	assert.Equal(t, int64(5), nodes["outer"].Start)
	assert.Equal(t, int64(30), nodes["outer"].End)
}

func TestCalculateTimestamps_CompositeSuccessorExtendsEnd(t *testing.T) {
	nodes := map[string]*NodeMetadata{
		"outer": composite("outer", "inner"),
		"inner": composite("inner", "x"),
		"x":     single("x", 5, 9, nil),
		"after": single("after", 10, 50, nil),
	}
	nodes["inner"].Transitions = map[string]string{"_success": "after"}

	CalculateTimestamps(nodes)

	assert.Equal(t, int64(9), nodes["inner"].End)
	assert.Equal(t, int64(50), nodes["outer"].End)
}

func TestCalculateTimestamps_LeavesSingleNodesUntouched(t *testing.T) {
	nodes := map[string]*NodeMetadata{"a": single("a", 3, 4, nil)}
	CalculateTimestamps(nodes)
	assert.Equal(t, int64(3), nodes["a"].Start)
	assert.Equal(t, int64(4), nodes["a"].End)
}
