// This file translates HCL native-syntax expressions into the engine's
// expression tree, so dynamic block bodies can be written as `a * factor`
// instead of the verbose object form.

package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/blockflow/internal/ctyconv"
	"github.com/specialistvlad/blockflow/internal/expr"
	"github.com/zclconf/go-cty/cty"
)

var binaryOps = map[*hclsyntax.Operation]string{
	hclsyntax.OpAdd:                "+",
	hclsyntax.OpSubtract:           "-",
	hclsyntax.OpMultiply:           "*",
	hclsyntax.OpDivide:             "/",
	hclsyntax.OpModulo:             "%",
	hclsyntax.OpEqual:              "==",
	hclsyntax.OpNotEqual:           "!=",
	hclsyntax.OpGreaterThan:        ">",
	hclsyntax.OpGreaterThanOrEqual: ">=",
	hclsyntax.OpLessThan:           "<",
	hclsyntax.OpLessThanOrEqual:    "<=",
	hclsyntax.OpLogicalAnd:         "and",
	hclsyntax.OpLogicalOr:          "or",
}

var unaryOps = map[*hclsyntax.Operation]string{
	hclsyntax.OpLogicalNot: "not",
	hclsyntax.OpNegate:     "-",
}

// ParseExpression parses an HCL expression from source text and translates
// it into an expression tree.
func ParseExpression(src string) (expr.Node, error) {
	e, diags := hclsyntax.ParseExpression([]byte(src), "<expression>", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse expression %q: %w", src, diags)
	}
	return TranslateExpression(e)
}

// TranslateExpression converts an HCL expression into an expression tree.
// Bare identifiers become parameter references.
func TranslateExpression(e hcl.Expression) (expr.Node, error) {
	switch v := e.(type) {
	case *hclsyntax.LiteralValueExpr:
		return literal(v.Val)

	case *hclsyntax.TemplateExpr:
		if v.IsStringLiteral() {
			val, diags := v.Value(nil)
			if diags.HasErrors() {
				return nil, diags
			}
			return literal(val)
		}
		parts := make([]expr.Node, 0, len(v.Parts))
		for _, p := range v.Parts {
			n, err := TranslateExpression(p)
			if err != nil {
				return nil, err
			}
			parts = append(parts, n)
		}
		return &expr.Template{Parts: parts}, nil

	case *hclsyntax.TemplateWrapExpr:
		return TranslateExpression(v.Wrapped)

	case *hclsyntax.ParenthesesExpr:
		return TranslateExpression(v.Expression)

	case *hclsyntax.ScopeTraversalExpr:
		root := &expr.Parameter{Name: v.Traversal.RootName()}
		path, err := traversalPath(v.Traversal[1:])
		if err != nil {
			return nil, err
		}
		if len(path) == 0 {
			return root, nil
		}
		return &expr.Property{Of: root, Path: path}, nil

	case *hclsyntax.RelativeTraversalExpr:
		src, err := TranslateExpression(v.Source)
		if err != nil {
			return nil, err
		}
		path, err := traversalPath(v.Traversal)
		if err != nil {
			return nil, err
		}
		return &expr.Property{Of: src, Path: path}, nil

	case *hclsyntax.IndexExpr:
		coll, err := TranslateExpression(v.Collection)
		if err != nil {
			return nil, err
		}
		key, diags := v.Key.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%s: index keys must be constant", v.Key.Range())
		}
		step, err := keyStep(key)
		if err != nil {
			return nil, err
		}
		return &expr.Property{Of: coll, Path: []any{step}}, nil

	case *hclsyntax.BinaryOpExpr:
		op, ok := binaryOps[v.Op]
		if !ok {
			return nil, fmt.Errorf("%s: unsupported operator", v.SrcRange)
		}
		left, err := TranslateExpression(v.LHS)
		if err != nil {
			return nil, err
		}
		right, err := TranslateExpression(v.RHS)
		if err != nil {
			return nil, err
		}
		return &expr.BinaryOperation{Operator: op, Left: left, Right: right}, nil

	case *hclsyntax.UnaryOpExpr:
		op, ok := unaryOps[v.Op]
		if !ok {
			return nil, fmt.Errorf("%s: unsupported operator", v.SrcRange)
		}
		operand, err := TranslateExpression(v.Val)
		if err != nil {
			return nil, err
		}
		return &expr.UnaryOperation{Operator: op, Operand: operand}, nil

	case *hclsyntax.ConditionalExpr:
		cond, err := TranslateExpression(v.Condition)
		if err != nil {
			return nil, err
		}
		then, err := TranslateExpression(v.TrueResult)
		if err != nil {
			return nil, err
		}
		els, err := TranslateExpression(v.FalseResult)
		if err != nil {
			return nil, err
		}
		return &expr.Conditional{Condition: cond, Then: then, Else: els}, nil

	case *hclsyntax.FunctionCallExpr:
		if v.ExpandFinal {
			return nil, fmt.Errorf("%s: argument expansion is not supported", v.NameRange)
		}
		args := make([]expr.Node, 0, len(v.Args))
		for _, a := range v.Args {
			n, err := TranslateExpression(a)
			if err != nil {
				return nil, err
			}
			args = append(args, n)
		}
		return &expr.Call{Function: v.Name, Args: args}, nil

	case *hclsyntax.TupleConsExpr:
		items := make([]expr.Node, 0, len(v.Exprs))
		for _, it := range v.Exprs {
			n, err := TranslateExpression(it)
			if err != nil {
				return nil, err
			}
			items = append(items, n)
		}
		return &expr.List{Items: items}, nil

	case *hclsyntax.ObjectConsExpr:
		fields := make(map[string]expr.Node, len(v.Items))
		for _, item := range v.Items {
			key, err := objectKey(item.KeyExpr)
			if err != nil {
				return nil, err
			}
			n, err := TranslateExpression(item.ValueExpr)
			if err != nil {
				return nil, err
			}
			fields[key] = n
		}
		return &expr.Object{Fields: fields}, nil
	}

	return nil, fmt.Errorf("%s: unsupported expression %T", e.Range(), e)
}

func literal(v cty.Value) (expr.Node, error) {
	gv, err := ctyconv.FromCty(v)
	if err != nil {
		return nil, err
	}
	return &expr.Literal{Value: gv}, nil
}

func traversalPath(t hcl.Traversal) ([]any, error) {
	path := make([]any, 0, len(t))
	for _, step := range t {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			path = append(path, s.Name)
		case hcl.TraverseIndex:
			k, err := keyStep(s.Key)
			if err != nil {
				return nil, err
			}
			path = append(path, k)
		default:
			return nil, fmt.Errorf("%s: unsupported traversal step %T", step.SourceRange(), step)
		}
	}
	return path, nil
}

func keyStep(key cty.Value) (any, error) {
	switch key.Type() {
	case cty.String:
		return key.AsString(), nil
	case cty.Number:
		bf := key.AsBigFloat()
		if !bf.IsInt() {
			return nil, fmt.Errorf("index %s is not an integer", bf.String())
		}
		i, _ := bf.Int64()
		return int(i), nil
	}
	return nil, fmt.Errorf("index must be a string or an integer, got %s", key.Type().FriendlyName())
}

func objectKey(e hclsyntax.Expression) (string, error) {
	if kw := hcl.ExprAsKeyword(e); kw != "" {
		return kw, nil
	}
	if wrapped, ok := e.(*hclsyntax.ObjectConsKeyExpr); ok {
		if kw := hcl.ExprAsKeyword(wrapped.Wrapped); kw != "" {
			return kw, nil
		}
	}
	v, diags := e.Value(nil)
	if diags.HasErrors() || v.Type() != cty.String || v.IsNull() {
		return "", fmt.Errorf("%s: object keys must be identifiers or constant strings", e.Range())
	}
	return v.AsString(), nil
}
