package stdlib

import (
	"naux/internal/diagnostics"
	"naux/internal/environment"
	"naux/internal/value"
)

// dsu_new/dsu_union/dsu_find are a representative sample of NAUX's
// out-of-scope algorithmic standard library, registered as opaque
// builtins: a functional disjoint-set union over a {p, r} map of
// parent/rank lists, grounded on
// original_source/naux-lang/src/stdlib/algo.rs. Full coverage of the
// algorithmic library (LIS, KMP, FFT, segment trees, ...) is explicitly
// out of scope.
func init() {
	environment.Register("dsu_new", dsuNew)
	environment.Register("dsu_union", dsuUnion)
	environment.Register("dsu_find", dsuFind)
}

func argErr(sig string) error {
	return diagnostics.New(diagnostics.KindRuntimeArgCount, sig, nil)
}

func toIntList(v value.Value) ([]int64, bool) {
	if v.Kind() != value.Heap || v.Heap().Kind != value.ListObj {
		return nil, false
	}
	out := make([]int64, len(v.Heap().List))
	for i, e := range v.Heap().List {
		if !e.IsNumeric() {
			return nil, false
		}
		out[i] = int64(e.AsFloat())
	}
	return out, true
}

func intListValue(xs []int64) value.Value {
	items := make([]value.Value, len(xs))
	for i, x := range xs {
		items[i] = value.NewInt(x)
	}
	return value.NewHeap(value.NewList(items))
}

func extractDsu(v value.Value) (parent, rank []int64, ok bool) {
	if v.Kind() != value.Heap || v.Heap().Kind != value.MapObj {
		return nil, nil, false
	}
	p, okP := v.Heap().Map["p"]
	r, okR := v.Heap().Map["r"]
	if !okP || !okR {
		return nil, nil, false
	}
	parent, ok1 := toIntList(p)
	rank, ok2 := toIntList(r)
	return parent, rank, ok1 && ok2 && okP && okR
}

func makeDsu(parent, rank []int64) value.Value {
	m := map[string]value.Value{"p": intListValue(parent), "r": intListValue(rank)}
	return value.NewHeap(value.NewMap(m))
}

func dsuNew(args []value.Value) (value.Value, error) {
	if len(args) != 1 || !args[0].IsNumeric() {
		return value.Nil, argErr("dsu_new(n)")
	}
	n := int(args[0].AsFloat())
	parent := make([]int64, n)
	rank := make([]int64, n)
	for i := range parent {
		parent[i] = int64(i)
	}
	return makeDsu(parent, rank), nil
}

func findRoot(x int, parent []int64) int {
	for parent[x] != int64(x) {
		parent[x] = parent[parent[x]]
		x = int(parent[x])
	}
	return x
}

func dsuFind(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Nil, argErr("dsu_find(dsu, x)")
	}
	parent, rank, ok := extractDsu(args[0])
	if !ok || !args[1].IsNumeric() {
		return value.Nil, argErr("dsu_find(dsu, x)")
	}
	x := int(args[1].AsFloat())
	root := findRoot(x, parent)
	return value.NewHeap(value.NewList([]value.Value{value.NewInt(int64(root)), makeDsu(parent, rank)})), nil
}

func dsuUnion(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Nil, argErr("dsu_union(dsu, a, b)")
	}
	parent, rank, ok := extractDsu(args[0])
	if !ok || !args[1].IsNumeric() || !args[2].IsNumeric() {
		return value.Nil, argErr("dsu_union(dsu, a, b)")
	}
	a := findRoot(int(args[1].AsFloat()), parent)
	b := findRoot(int(args[2].AsFloat()), parent)
	if a != b {
		switch {
		case rank[a] < rank[b]:
			parent[a] = int64(b)
		case rank[a] > rank[b]:
			parent[b] = int64(a)
		default:
			parent[b] = int64(a)
			rank[a]++
		}
	}
	return makeDsu(parent, rank), nil
}
