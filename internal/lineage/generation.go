package lineage

import "DeviceLineage/internal/domain"

type stackItem struct {
	id    string
	depth int
}

// Label assigns every node reachable from root its generation. The walk is a
// depth-first traversal over an explicit stack and the first discovery of a
// node fixes its depth, so a node with several parents takes the depth of the
// path popped first rather than the shortest one. Siblings are pushed in stored
// order and therefore popped in reverse.
func Label(graph domain.Graph, root string) ([]string, domain.Generations) {
	var nodes []string
	generations := domain.Generations{}

	stack := []stackItem{{id: root, depth: 0}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := generations[top.id]; ok {
			continue
		}
		generations[top.id] = top.depth
		nodes = append(nodes, top.id)

		for _, child := range graph.Children(top.id) {
			stack = append(stack, stackItem{id: child, depth: top.depth + 1})
		}
	}

	return nodes, generations
}
