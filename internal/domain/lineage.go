package domain

import "errors"

var (
	// ErrInvalidInput marks a request without a usable product code or identifier.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownSubmission is returned when no metadata record exists for an identifier.
	ErrUnknownSubmission = errors.New("unknown submission")
)

// Chain is the ancestry of one identifier: [src, pred(src), pred(pred(src)), ...].
// No identifier appears twice.
type Chain []string

// Origin returns the oldest identifier in the chain.
func (c Chain) Origin() string {
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1]
}

// Contains reports whether id is already part of the chain.
func (c Chain) Contains(id string) bool {
	for _, v := range c {
		if v == id {
			return true
		}
	}
	return false
}

// Edge is one parent -> child link of the lineage graph.
type Edge struct {
	Parent string
	Child  string
}

// Edges lists the chain's parent -> child links from the oldest end to the newest.
func (c Chain) Edges() []Edge {
	if len(c) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(c)-1)
	for i := len(c) - 1; i > 0; i-- {
		edges = append(edges, Edge{Parent: c[i], Child: c[i-1]})
	}
	return edges
}

// Graph maps a parent identifier to its ordered, duplicate-free children.
// Leaves have no key.
type Graph map[string][]string

// AddEdge appends child under parent unless the edge already exists.
func (g Graph) AddEdge(parent, child string) bool {
	if g.HasEdge(parent, child) {
		return false
	}
	g[parent] = append(g[parent], child)
	return true
}

// Children returns the stored children of id.
func (g Graph) Children(id string) []string {
	return g[id]
}

// HasEdge reports whether parent -> child is present.
func (g Graph) HasEdge(parent, child string) bool {
	for _, existing := range g[parent] {
		if existing == child {
			return true
		}
	}
	return false
}

// EdgeCount returns the number of parent -> child links.
func (g Graph) EdgeCount() int {
	total := 0
	for _, children := range g {
		total += len(children)
	}
	return total
}

// Generations maps an identifier to its depth below the root.
type Generations map[string]int
