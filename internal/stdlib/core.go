package stdlib

import (
	"naux/internal/environment"
	"naux/internal/value"
)

// len/__index/to_text are the core builtins every evaluation engine
// relies on (the VM additionally fast-paths the first two, see
// internal/vm), grounded on
// original_source/naux-lang/src/runtime/env.rs's register_builtins.
func init() {
	environment.Register("len", builtinLen)
	environment.Register("__index", builtinIndex)
	environment.Register("to_text", builtinToText)
}

func builtinLen(args []value.Value) (value.Value, error) {
	if len(args) == 0 || args[0].Kind() != value.Heap {
		return value.NewInt(0), nil
	}
	obj := args[0].Heap()
	switch obj.Kind {
	case value.ListObj:
		return value.NewInt(int64(len(obj.List))), nil
	case value.TextObj:
		return value.NewInt(int64(len([]rune(obj.Text)))), nil
	case value.MapObj:
		return value.NewInt(int64(len(obj.Map))), nil
	case value.SetObj:
		return value.NewInt(int64(len(obj.Set))), nil
	case value.PQObj:
		return value.NewInt(int64(obj.PQLen())), nil
	default:
		return value.NewInt(0), nil
	}
}

func builtinIndex(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Nil, argErr("__index(list/map, key)")
	}
	target, key := args[0], args[1]
	if target.Kind() != value.Heap {
		return value.Nil, argErr("invalid __index operands")
	}
	switch target.Heap().Kind {
	case value.ListObj:
		if !key.IsNumeric() {
			return value.Nil, argErr("invalid __index operands")
		}
		i := int(key.AsFloat())
		if i < 0 || i >= len(target.Heap().List) {
			return value.Nil, nil
		}
		return target.Heap().List[i], nil
	case value.MapObj:
		s, ok := asText(key)
		if !ok {
			return value.Nil, argErr("invalid __index operands")
		}
		if v, ok := target.Heap().Map[s]; ok {
			return v, nil
		}
		return value.Nil, nil
	default:
		return value.Nil, argErr("invalid __index operands")
	}
}

func builtinToText(args []value.Value) (value.Value, error) {
	v := firstArg(args)
	if s, ok := asText(v); ok {
		return value.NewTextValue(s), nil
	}
	return value.NewTextValue(value.Canonical(v)), nil
}
