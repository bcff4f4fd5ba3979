// Package ctyconv bridges plain Go values (as produced by JSON/YAML decoding
// and by blocks) and go-cty values, and parses literal type annotations.
package ctyconv

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Opaque is the capsule type carrying Go values that have no cty
// counterpart, such as images.
var Opaque = cty.Capsule("opaque", reflect.TypeOf((*any)(nil)).Elem())

// ToCty converts a Go value into a cty.Value. Maps become objects and slices
// become tuples so heterogeneous data survives the trip; anything unknown is
// wrapped in the Opaque capsule.
func ToCty(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return x, nil
	case string:
		return cty.StringVal(x), nil
	case bool:
		return cty.BoolVal(x), nil
	case float64:
		return cty.NumberFloatVal(x), nil
	case float32:
		return cty.NumberFloatVal(float64(x)), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int32:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case uint:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint32:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint64:
		return cty.NumberUIntVal(x), nil
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(x))
		for i, e := range x {
			ev, err := ToCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return ToCty(items)
	case map[string]any:
		if len(x) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(x))
		for k, e := range x {
			ev, err := ToCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf(".%s: %w", k, err)
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	}
	boxed := v
	return cty.CapsuleVal(Opaque, &boxed), nil
}

// FromCty converts a cty.Value back into plain Go data. Numbers always come
// back as float64, collections as []any and map[string]any.
func FromCty(val cty.Value) (any, error) {
	if val == cty.NilVal || !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsCapsuleType():
		if ptr, ok := val.EncapsulatedValue().(*any); ok {
			return *ptr, nil
		}
		return val.EncapsulatedValue(), nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			gv, err := FromCty(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = gv
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			gv, err := FromCty(v)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
}

// Conform converts v to the given type and returns it as plain Go data. A nil
// or DynamicPseudoType target accepts anything unchanged.
func Conform(v any, ty cty.Type) (any, error) {
	if ty == cty.NilType || ty == cty.DynamicPseudoType {
		return v, nil
	}
	cv, err := ToCty(v)
	if err != nil {
		return nil, err
	}
	converted, err := convert.Convert(cv, ty)
	if err != nil {
		return nil, err
	}
	return FromCty(converted)
}

// ParseType parses a type annotation such as "number" or "list(string)". An
// empty annotation is "any".
func ParseType(annotation string) (cty.Type, error) {
	if annotation == "" {
		return cty.DynamicPseudoType, nil
	}
	expr, diags := hclsyntax.ParseExpression([]byte(annotation), "type", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("invalid type annotation %q: %s", annotation, diags.Error())
	}
	ty, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("invalid type annotation %q: %s", annotation, diags.Error())
	}
	return ty, nil
}

// TypeString renders a type the way it would be written in an annotation.
func TypeString(ty cty.Type) string {
	if ty == cty.NilType {
		return "any"
	}
	if ty.IsCapsuleType() {
		return ty.FriendlyName()
	}
	return typeexpr.TypeString(ty)
}

// SortedKeys returns the keys of m in lexicographic order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
