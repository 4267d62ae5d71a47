package stdlib

import (
	"naux/internal/environment"
	"naux/internal/value"
)

// graph_new/graph_add_edge/graph_neighbors wrap the heap-object Graph
// variant, grounded on
// original_source/naux-lang/src/stdlib/graph.rs.
func init() {
	environment.Register("graph_new", graphNew)
	environment.Register("graph_add_edge", graphAddEdge)
	environment.Register("graph_neighbors", graphNeighbors)
}

func graphNew(args []value.Value) (value.Value, error) {
	directed := len(args) > 0 && args[0].Kind() == value.Bool && args[0].Bool()
	return value.NewHeap(value.NewGraph(directed)), nil
}

func asGraph(v value.Value) (*value.Graph, bool) {
	if v.Kind() != value.Heap || v.Heap().Kind != value.GraphObj {
		return nil, false
	}
	return v.Heap().Graph, true
}

func asText(v value.Value) (string, bool) {
	if v.Kind() != value.Heap || v.Heap().Kind != value.TextObj {
		return "", false
	}
	return v.Heap().Text, true
}

func graphAddEdge(args []value.Value) (value.Value, error) {
	if len(args) < 3 {
		return value.Nil, argErr("graph_add_edge(graph, from, to, [weight])")
	}
	g, ok := asGraph(args[0])
	if !ok {
		return value.Nil, argErr("graph_add_edge: first argument must be a graph")
	}
	from, ok := asText(args[1])
	if !ok {
		return value.Nil, argErr("graph_add_edge: from must be text")
	}
	to, ok := asText(args[2])
	if !ok {
		return value.Nil, argErr("graph_add_edge: to must be text")
	}
	weight := 1.0
	if len(args) > 3 && args[3].IsNumeric() {
		weight = args[3].AsFloat()
	}
	g.AddEdge(from, to, weight)
	return args[0], nil
}

func graphNeighbors(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Nil, argErr("graph_neighbors(graph, node)")
	}
	g, ok := asGraph(args[0])
	if !ok {
		return value.Nil, argErr("graph_neighbors: first argument must be a graph")
	}
	node, ok := asText(args[1])
	if !ok {
		return value.Nil, argErr("graph_neighbors: node must be text")
	}
	edges := g.Adj[node]
	out := make([]value.Value, len(edges))
	for i, e := range edges {
		out[i] = value.NewTextValue(e.Neighbor)
	}
	return value.NewHeap(value.NewList(out)), nil
}
