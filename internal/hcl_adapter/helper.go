package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/blockflow/internal/ctyconv"
	"github.com/specialistvlad/blockflow/internal/selector"
)

// staticValue turns a step parameter expression into a plain Go value.
// References to `inputs.<name>` and `steps.<name>.<field>` (or
// `steps.<name>.*`) become selector strings, so HCL and JSON workflows reach
// the compiler in the same shape. Everything else must be a constant.
func staticValue(e hcl.Expression) (any, error) {
	switch v := e.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if sel, ok := traversalSelector(v.Traversal, false); ok {
			return sel, nil
		}

	case *hclsyntax.SplatExpr:
		src, ok := v.Source.(*hclsyntax.ScopeTraversalExpr)
		_, anon := v.Each.(*hclsyntax.AnonSymbolExpr)
		if ok && anon {
			if sel, ok := traversalSelector(src.Traversal, true); ok {
				return sel, nil
			}
		}

	case *hclsyntax.TemplateWrapExpr:
		return staticValue(v.Wrapped)

	case *hclsyntax.TupleConsExpr:
		items := make([]any, 0, len(v.Exprs))
		for _, it := range v.Exprs {
			gv, err := staticValue(it)
			if err != nil {
				return nil, err
			}
			items = append(items, gv)
		}
		return items, nil

	case *hclsyntax.ObjectConsExpr:
		fields := make(map[string]any, len(v.Items))
		for _, item := range v.Items {
			key, err := objectKey(item.KeyExpr)
			if err != nil {
				return nil, err
			}
			gv, err := staticValue(item.ValueExpr)
			if err != nil {
				return nil, err
			}
			fields[key] = gv
		}
		return fields, nil
	}

	val, diags := e.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: values must be constants or references to inputs and steps: %w", e.Range(), diags)
	}
	return ctyconv.FromCty(val)
}

// traversalSelector maps a root traversal onto a selector string. With
// splat set, the traversal names a step and the selector takes all of its
// outputs.
func traversalSelector(t hcl.Traversal, splat bool) (string, bool) {
	var names []string
	for _, step := range t {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			names = append(names, s.Name)
		case hcl.TraverseAttr:
			names = append(names, s.Name)
		default:
			return "", false
		}
	}

	var sel selector.Selector
	switch {
	case len(names) == 2 && names[0] == "inputs" && !splat:
		sel = selector.Selector{Scope: selector.Inputs, Name: names[1]}
	case len(names) == 3 && names[0] == "steps" && !splat:
		sel = selector.Selector{Scope: selector.Steps, Name: names[1], Field: names[2]}
	case len(names) == 2 && names[0] == "steps" && splat:
		sel = selector.Selector{Scope: selector.Steps, Name: names[1], Field: selector.Wildcard}
	default:
		return "", false
	}
	return sel.String(), true
}

// attrValue evaluates an optional attribute that must hold a constant.
func attrValue(attr *hcl.Attribute) (any, bool, error) {
	if attr == nil {
		return nil, false, nil
	}
	v, err := staticValue(attr.Expr)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}
