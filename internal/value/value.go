// Package value implements the tagged-union Value type shared by the
// tree-walking interpreter and the bytecode VM: small integers, floats,
// booleans, null, and reference-counted heap objects (text, list, map,
// graph, set, priority queue, function).
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the Value tagged union.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	Null
	Heap
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Null:
		return "null"
	case Heap:
		return "heap"
	default:
		return "?"
	}
}

// Value is the runtime value every NAUX expression produces. Exactly one
// of i/f/b/obj is meaningful, selected by Kind.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	obj  *HeapObject
}

// NewInt builds a small-integer value.
func NewInt(i int64) Value { return Value{kind: Int, i: i} }

// NewFloat builds a float value.
func NewFloat(f float64) Value { return Value{kind: Float, f: f} }

// NewBool builds a boolean value.
func NewBool(b bool) Value { return Value{kind: Bool, b: b} }

// Nil is the null value.
var Nil = Value{kind: Null}

// NewHeap wraps a heap object reference, retaining it.
func NewHeap(o *HeapObject) Value {
	o.Retain()
	return Value{kind: Heap, obj: o}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNumeric reports whether v is an Int or a Float.
func (v Value) IsNumeric() bool { return v.kind == Int || v.kind == Float }

// Int returns the raw int64 payload; callers must check Kind first.
func (v Value) Int() int64 { return v.i }

// Float returns the raw float64 payload; callers must check Kind first.
func (v Value) Float() float64 { return v.f }

// Bool returns the raw bool payload; callers must check Kind first.
func (v Value) Bool() bool { return v.b }

// Heap returns the heap object reference; nil if v is not a Heap value.
func (v Value) Heap() *HeapObject { return v.obj }

// AsFloat widens a numeric value to float64. A non-numeric value yields
// 0, so callers guard with IsNumeric.
func (v Value) AsFloat() float64 {
	if v.kind == Int {
		return float64(v.i)
	}
	return v.f
}

// Retain bumps the refcount of v's heap object, if any. Non-heap values
// are no-ops.
func (v Value) Retain() Value {
	if v.kind == Heap {
		v.obj.Retain()
	}
	return v
}

// Release drops v's heap object reference, if any, recursively releasing
// contained values once the count reaches zero.
func (v Value) Release() {
	if v.kind == Heap {
		v.obj.Release()
	}
}

// Truthy implements the truthiness contract: false/0/empty collections
// and text are falsy, null is falsy, everything else is truthy.
func Truthy(v Value) bool {
	switch v.kind {
	case Bool:
		return v.b
	case Int:
		return v.i != 0
	case Float:
		return v.f != 0
	case Null:
		return false
	case Heap:
		switch v.obj.Kind {
		case TextObj:
			return v.obj.Text != ""
		case ListObj:
			return len(v.obj.List) != 0
		case MapObj:
			return len(v.obj.Map) != 0
		case SetObj:
			return len(v.obj.Set) != 0
		case PQObj:
			return v.obj.PQ.Len() != 0
		case GraphObj:
			return len(v.obj.Graph.Adj) != 0
		case FunctionObj:
			return true
		}
	}
	return false
}

const floatEqULP = 1

// ulpEqual compares two floats for equality within one unit in the last
// place, per the value-model equality contract.
func ulpEqual(a, b float64) bool {
	if a == b {
		return true
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	diff := math.Abs(a - b)
	ulp := math.Nextafter(a, b) - a
	return diff <= math.Abs(ulp)*floatEqULP || diff == 0
}

// Equal implements the value-model equality contract: numeric
// cross-kind equality when exactly representable, ULP float equality,
// structural equality for text/list/map/set, identity for graph and
// function.
func Equal(a, b Value) bool {
	if a.kind == Int && b.kind == Int {
		return a.i == b.i
	}
	if a.kind == Float && b.kind == Float {
		return ulpEqual(a.f, b.f)
	}
	if a.IsNumeric() && b.IsNumeric() {
		af, bf := a.AsFloat(), b.AsFloat()
		if a.kind == Int && float64(a.i) != af {
			return false
		}
		if b.kind == Int && float64(b.i) != bf {
			return false
		}
		return ulpEqual(af, bf)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Bool:
		return a.b == b.b
	case Null:
		return true
	case Heap:
		return heapEqual(a.obj, b.obj)
	}
	return false
}

func heapEqual(a, b *HeapObject) bool {
	if a == b {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TextObj:
		return a.Text == b.Text
	case ListObj:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case MapObj:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for k, av := range a.Map {
			bv, ok := b.Map[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case SetObj:
		if len(a.Set) != len(b.Set) {
			return false
		}
		for _, av := range a.Set {
			if !setContains(b, av) {
				return false
			}
		}
		return true
	case GraphObj, FunctionObj:
		return false // identity only, handled by the a == b check above
	}
	return false
}

// Canonical renders v as a deterministic textual form used as the
// fallback total order for heterogeneous comparisons (priority queue
// ordering only needs a total order, not a meaningful one).
func Canonical(v Value) string {
	switch v.kind {
	case Int:
		return "i:" + strconv.FormatInt(v.i, 10)
	case Float:
		return "f:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case Bool:
		return "b:" + strconv.FormatBool(v.b)
	case Null:
		return "n:"
	case Heap:
		switch v.obj.Kind {
		case TextObj:
			return "t:" + v.obj.Text
		case ListObj:
			parts := make([]string, len(v.obj.List))
			for i, e := range v.obj.List {
				parts[i] = Canonical(e)
			}
			return "l:[" + strings.Join(parts, ",") + "]"
		case MapObj:
			keys := make([]string, 0, len(v.obj.Map))
			for k := range v.obj.Map {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = k + "=" + Canonical(v.obj.Map[k])
			}
			return "m:{" + strings.Join(parts, ",") + "}"
		case SetObj:
			parts := make([]string, len(v.obj.Set))
			for i, e := range v.obj.Set {
				parts[i] = Canonical(e)
			}
			sort.Strings(parts)
			return "s:{" + strings.Join(parts, ",") + "}"
		case GraphObj:
			return fmt.Sprintf("g:%p", v.obj)
		case FunctionObj:
			return fmt.Sprintf("fn:%p", v.obj)
		case PQObj:
			return fmt.Sprintf("pq:%p", v.obj)
		}
	}
	return "?"
}

// Compare implements the total order used by the priority queue: numeric
// kinds compare numerically, everything else falls back to lexicographic
// comparison of the canonical textual form.
func Compare(a, b Value) int {
	if a.IsNumeric() && b.IsNumeric() {
		af, bf := a.AsFloat(), b.AsFloat()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(Canonical(a), Canonical(b))
}

// TypeName returns the NAUX-level type name used in type/* diagnostics.
func TypeName(v Value) string {
	switch v.kind {
	case Int, Float:
		return "number"
	case Bool:
		return "bool"
	case Null:
		return "null"
	case Heap:
		switch v.obj.Kind {
		case TextObj:
			return "text"
		case ListObj:
			return "list"
		case MapObj:
			return "map"
		case GraphObj:
			return "graph"
		case SetObj:
			return "set"
		case PQObj:
			return "priority-queue"
		case FunctionObj:
			return "function"
		}
	}
	return "unknown"
}
