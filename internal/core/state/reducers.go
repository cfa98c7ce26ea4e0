package state

import (
	"fmt"
	"reflect"
)

// Reducer merges an incoming value into the current value of a field.
// Implementations must be pure: no side effects, no mutation of either
// argument, same output for the same inputs.
type Reducer interface {
	Reduce(current, incoming any) any
}

// ReducerFunc adapts an ordinary function to the Reducer interface.
type ReducerFunc func(current, incoming any) any

// Reduce calls the underlying function.
func (f ReducerFunc) Reduce(current, incoming any) any {
	return f(current, incoming)
}

// ReducerType names a built-in reducer for declarative schemas.
type ReducerType string

const (
	ReducerReplace ReducerType = "replace"
	ReducerAppend  ReducerType = "append"
	ReducerMerge   ReducerType = "merge"
	ReducerMax     ReducerType = "max"
	ReducerMin     ReducerType = "min"
)

// New returns the built-in reducer for the given type.
func New(t ReducerType) (Reducer, error) {
	switch t {
	case ReducerReplace:
		return Replace(), nil
	case ReducerAppend:
		return Append(), nil
	case ReducerMerge:
		return Merge(), nil
	case ReducerMax:
		return Max(), nil
	case ReducerMin:
		return Min(), nil
	default:
		return nil, fmt.Errorf("unknown reducer type: %s", t)
	}
}

// Replace returns a reducer that substitutes the incoming value for the
// current one. This is the default for fields declared without a reducer.
func Replace() Reducer {
	return ReducerFunc(func(_, incoming any) any {
		return incoming
	})
}

// Append returns a reducer that concatenates ordered sequences. Incoming
// items are added after existing ones, arrival order is preserved and
// nothing is deduplicated. Non-slice operands are promoted to
// single-element slices and operands of mismatched element types are
// widened to []any.
func Append() Reducer {
	return ReducerFunc(appendValues)
}

func appendValues(current, incoming any) any {
	if current == nil {
		return copySliceOrWrap(incoming)
	}
	if incoming == nil {
		return current
	}

	cv := reflect.ValueOf(current)
	iv := reflect.ValueOf(incoming)
	switch {
	case cv.Kind() == reflect.Slice && iv.Kind() == reflect.Slice:
		if cv.Type() != iv.Type() {
			// Decoded snapshots hold []any while live nodes return
			// typed slices; widen instead of requiring equal types.
			out := make([]any, 0, cv.Len()+iv.Len())
			out = appendElems(out, cv)
			return appendElems(out, iv)
		}
		out := reflect.MakeSlice(cv.Type(), 0, cv.Len()+iv.Len())
		out = reflect.AppendSlice(out, cv)
		out = reflect.AppendSlice(out, iv)
		return out.Interface()
	case cv.Kind() == reflect.Slice:
		if !iv.Type().AssignableTo(cv.Type().Elem()) {
			out := make([]any, 0, cv.Len()+1)
			out = appendElems(out, cv)
			return append(out, incoming)
		}
		out := reflect.MakeSlice(cv.Type(), 0, cv.Len()+1)
		out = reflect.AppendSlice(out, cv)
		out = reflect.Append(out, iv)
		return out.Interface()
	case iv.Kind() == reflect.Slice:
		if !cv.Type().AssignableTo(iv.Type().Elem()) {
			out := make([]any, 0, iv.Len()+1)
			out = append(out, current)
			return appendElems(out, iv)
		}
		out := reflect.MakeSlice(iv.Type(), 0, iv.Len()+1)
		out = reflect.Append(out, cv)
		out = reflect.AppendSlice(out, iv)
		return out.Interface()
	default:
		return []any{current, incoming}
	}
}

func appendElems(dst []any, v reflect.Value) []any {
	for i := 0; i < v.Len(); i++ {
		dst = append(dst, v.Index(i).Interface())
	}
	return dst
}

func copySliceOrWrap(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}
	out := reflect.MakeSlice(rv.Type(), 0, rv.Len())
	return reflect.AppendSlice(out, rv).Interface()
}

// Merge returns a reducer that recursively merges map[string]any values.
// Keys present in the incoming map win over current keys, except when both
// sides hold nested maps, which are merged key by key. Non-map operands
// fall back to replacement.
func Merge() Reducer {
	return ReducerFunc(mergeValues)
}

func mergeValues(current, incoming any) any {
	cm, cok := current.(map[string]any)
	im, iok := incoming.(map[string]any)
	if !cok || !iok {
		return incoming
	}
	out := make(map[string]any, len(cm)+len(im))
	for k, v := range cm {
		out[k] = v
	}
	for k, v := range im {
		if existing, ok := out[k]; ok {
			out[k] = mergeValues(existing, v)
		} else {
			out[k] = v
		}
	}
	return out
}

// Max returns a reducer that keeps the larger of the two values for
// ordered types (ints, floats, strings). Mixed or unordered operands
// resolve to the incoming value.
func Max() Reducer {
	return ReducerFunc(func(current, incoming any) any {
		return pickOrdered(current, incoming, false)
	})
}

// Min returns a reducer that keeps the smaller of the two values.
func Min() Reducer {
	return ReducerFunc(func(current, incoming any) any {
		return pickOrdered(current, incoming, true)
	})
}

func pickOrdered(current, incoming any, min bool) any {
	if current == nil {
		return incoming
	}
	switch c := current.(type) {
	case int:
		if i, ok := incoming.(int); ok {
			return pick(c, i, min)
		}
	case int64:
		if i, ok := incoming.(int64); ok {
			return pick(c, i, min)
		}
	case float64:
		if i, ok := incoming.(float64); ok {
			return pick(c, i, min)
		}
	case string:
		if i, ok := incoming.(string); ok {
			return pick(c, i, min)
		}
	}
	return incoming
}

func pick[T int | int64 | float64 | string](current, incoming T, min bool) T {
	if (min && incoming < current) || (!min && incoming > current) {
		return incoming
	}
	return current
}
