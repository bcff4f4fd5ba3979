// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package expr

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/blockflow/internal/ctyconv"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// EvalError reports a failure while interpreting a node.
type EvalError struct {
	Variant string
	Err     error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Variant, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Eval interprets n against the given parameter values and returns plain Go
// data (see ctyconv.FromCty).
func Eval(n Node, params map[string]any) (any, error) {
	scope := make(map[string]cty.Value, len(params))
	for k, v := range params {
		cv, err := ctyconv.ToCty(v)
		if err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", k, err)
		}
		scope[k] = cv
	}
	v, err := eval(n, scope)
	if err != nil {
		return nil, err
	}
	return ctyconv.FromCty(v)
}

func eval(n Node, scope map[string]cty.Value) (cty.Value, error) {
	fail := func(err error) (cty.Value, error) {
		return cty.NilVal, &EvalError{Variant: n.Variant(), Err: err}
	}

	switch v := n.(type) {
	case *Literal:
		cv, err := ctyconv.ToCty(v.Value)
		if err != nil {
			return fail(err)
		}
		return cv, nil

	case *Parameter:
		cv, ok := scope[v.Name]
		if !ok {
			return fail(fmt.Errorf("unknown parameter '%s'", v.Name))
		}
		return cv, nil

	case *Property:
		cur, err := eval(v.Of, scope)
		if err != nil {
			return cty.NilVal, err
		}
		for _, step := range v.Path {
			var key cty.Value
			switch s := step.(type) {
			case string:
				key = cty.StringVal(s)
			case int:
				key = cty.NumberIntVal(int64(s))
			default:
				return fail(fmt.Errorf("invalid path element %v", step))
			}
			next, diags := hcl.Index(cur, key, nil)
			if diags.HasErrors() {
				return fail(fmt.Errorf("cannot access %v: %s", step, diagSummary(diags)))
			}
			cur = next
		}
		return cur, nil

	case *BinaryOperation:
		return evalBinary(v, scope)

	case *UnaryOperation:
		op, ok := unaryOperators[v.Operator]
		if !ok {
			return fail(fmt.Errorf("unknown unary operator %q", v.Operator))
		}
		operand, err := eval(v.Operand, scope)
		if err != nil {
			return cty.NilVal, err
		}
		out, err := op.fn.Call([]cty.Value{operand})
		if err != nil {
			return fail(fmt.Errorf("%s: %w", v.Operator, err))
		}
		return out, nil

	case *Conditional:
		cond, err := eval(v.Condition, scope)
		if err != nil {
			return cty.NilVal, err
		}
		b, err := asBool(cond)
		if err != nil {
			return fail(fmt.Errorf("condition: %w", err))
		}
		if b {
			return eval(v.Then, scope)
		}
		return eval(v.Else, scope)

	case *Call:
		fn, ok := operations[v.Function]
		if !ok {
			return fail(fmt.Errorf("unknown operation '%s'", v.Function))
		}
		args := make([]cty.Value, len(v.Args))
		for i, a := range v.Args {
			av, err := eval(a, scope)
			if err != nil {
				return cty.NilVal, err
			}
			args[i] = av
		}
		out, err := fn.Call(args)
		if err != nil {
			return fail(fmt.Errorf("%s(): %w", v.Function, err))
		}
		return out, nil

	case *List:
		if len(v.Items) == 0 {
			return cty.EmptyTupleVal, nil
		}
		items := make([]cty.Value, len(v.Items))
		for i, it := range v.Items {
			iv, err := eval(it, scope)
			if err != nil {
				return cty.NilVal, err
			}
			items[i] = iv
		}
		return cty.TupleVal(items), nil

	case *Object:
		if len(v.Fields) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(v.Fields))
		for _, k := range ctyconv.SortedKeys(v.Fields) {
			fv, err := eval(v.Fields[k], scope)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = fv
		}
		return cty.ObjectVal(attrs), nil

	case *Template:
		var sb strings.Builder
		for _, p := range v.Parts {
			pv, err := eval(p, scope)
			if err != nil {
				return cty.NilVal, err
			}
			if pv.IsNull() {
				continue
			}
			sv, err := convert.Convert(pv, cty.String)
			if err != nil {
				return fail(fmt.Errorf("template part cannot be rendered as a string: %w", err))
			}
			sb.WriteString(sv.AsString())
		}
		return cty.StringVal(sb.String()), nil
	}

	return cty.NilVal, fmt.Errorf("unsupported expression node %T", n)
}

func evalBinary(v *BinaryOperation, scope map[string]cty.Value) (cty.Value, error) {
	fail := func(err error) (cty.Value, error) {
		return cty.NilVal, &EvalError{Variant: v.Variant(), Err: fmt.Errorf("%s: %w", v.Operator, err)}
	}
	op, ok := binaryOperators[v.Operator]
	if !ok {
		return fail(fmt.Errorf("unknown binary operator"))
	}

	left, err := eval(v.Left, scope)
	if err != nil {
		return cty.NilVal, err
	}

	switch v.Operator {
	case "and", "or":
		lb, err := asBool(left)
		if err != nil {
			return fail(err)
		}
		if v.Operator == "and" && !lb {
			return cty.False, nil
		}
		if v.Operator == "or" && lb {
			return cty.True, nil
		}
		right, err := eval(v.Right, scope)
		if err != nil {
			return cty.NilVal, err
		}
		rb, err := asBool(right)
		if err != nil {
			return fail(err)
		}
		return cty.BoolVal(rb), nil
	}

	right, err := eval(v.Right, scope)
	if err != nil {
		return cty.NilVal, err
	}

	args := []cty.Value{left, right}
	if v.Operator == "in" {
		args = []cty.Value{right, left}
	}
	out, err := op.fn.Call(args)
	if err != nil {
		return fail(err)
	}
	return out, nil
}

func asBool(v cty.Value) (bool, error) {
	if v.IsNull() {
		return false, fmt.Errorf("expected a boolean, got null")
	}
	b, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("expected a boolean, got %s", v.Type().FriendlyName())
	}
	return b.True(), nil
}

func diagSummary(diags hcl.Diagnostics) string {
	parts := make([]string, 0, len(diags))
	for _, d := range diags {
		parts = append(parts, d.Summary)
	}
	return strings.Join(parts, "; ")
}
