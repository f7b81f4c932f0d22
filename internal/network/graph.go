// Package network builds undirected protein interaction graphs and computes
// centrality metrics over them.
package network

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"stringnet/internal/database"
)

// Graph is an undirected interaction graph over Ensembl protein identifiers.
// The zero value is not usable; use NewGraph.
type Graph struct {
	g     *simple.UndirectedGraph
	ids   map[string]int64
	names map[int64]string
	next  int64
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		g:     simple.NewUndirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
}

// FromLinks builds a graph from interaction rows. Self interactions are
// dropped; duplicate rows collapse to a single edge.
func FromLinks(links []database.Link) *Graph {
	g := NewGraph()
	for _, link := range links {
		g.AddEdge(link.EnsemblID1, link.EnsemblID2)
	}
	return g
}

func (g *Graph) intern(name string) int64 {
	if id, ok := g.ids[name]; ok {
		return id
	}
	id := g.next
	g.next++
	g.ids[name] = id
	g.names[id] = name
	g.g.AddNode(simple.Node(id))
	return id
}

// AddEdge adds an undirected edge between two proteins, creating nodes as
// needed. Self edges are ignored.
func (g *Graph) AddEdge(a, b string) {
	if a == b {
		return
	}
	ua := g.intern(a)
	ub := g.intern(b)
	g.g.SetEdge(simple.Edge{F: simple.Node(ua), T: simple.Node(ub)})
}

// Order returns the number of nodes.
func (g *Graph) Order() int {
	return g.g.Nodes().Len()
}

// Size returns the number of edges.
func (g *Graph) Size() int {
	return g.g.Edges().Len()
}

// HasNode reports whether a protein is present in the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.ids[name]
	return ok
}

// Degree returns the degree of a protein, or 0 if absent.
func (g *Graph) Degree(name string) int {
	id, ok := g.ids[name]
	if !ok {
		return 0
	}
	return g.g.From(id).Len()
}

// Nodes returns the protein identifiers in sorted order.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.ids))
	for name := range g.ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// name resolves an internal node id back to its protein identifier.
func (g *Graph) name(id int64) string {
	return g.names[id]
}
