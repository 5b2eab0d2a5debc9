package metadata

import "github.com/specialistvlad/fragmentgrid/internal/node"

// CalculateTimestamps rewrites the start and end of every composite node.
// Start is the earliest start among its nested nodes. End is the latest end
// reachable from any nested node by following transitions, so work done
// after a branch's first node still counts towards the composite. Nested
// composites are resolved first.
func CalculateTimestamps(nodes map[string]*NodeMetadata) {
	done := make(map[string]bool)
	for id, m := range nodes {
		if m.Type == node.KindComposite {
			calculate(id, nodes, done)
		}
	}
}

func calculate(id string, nodes map[string]*NodeMetadata, done map[string]bool) {
	if done[id] {
		return
	}
	done[id] = true

	m := nodes[id]
	var start, end int64
	found := false
	for _, nestedID := range m.Nested {
		child, ok := nodes[nestedID]
		if !ok {
			continue
		}
		if child.Type == node.KindComposite {
			calculate(nestedID, nodes, done)
		}
		if child.Start == 0 && child.End == 0 {
			continue
		}
		latest := latestReachable(nestedID, nodes, done, map[string]bool{})
		if !found || child.Start < start {
			start = child.Start
		}
		if !found || latest > end {
			end = latest
		}
		found = true
	}
	if found {
		m.Start = start
		m.End = end
	}
}

func latestReachable(id string, nodes map[string]*NodeMetadata, done, visiting map[string]bool) int64 {
	m, ok := nodes[id]
	if !ok || visiting[id] {
		return 0
	}
	if m.Type == node.KindComposite {
		calculate(id, nodes, done)
	}
	visiting[id] = true
	defer delete(visiting, id)

	latest := m.End
	for _, target := range m.Transitions {
		if t := latestReachable(target, nodes, done, visiting); t > latest {
			latest = t
		}
	}
	return latest
}
