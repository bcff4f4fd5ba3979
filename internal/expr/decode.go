// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package expr

import (
	"fmt"
	"math"

	"github.com/specialistvlad/blockflow/internal/kind"
)

// DecodeError reports a malformed serialized expression.
type DecodeError struct {
	Path string
	Msg  string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return "invalid expression: " + e.Msg
	}
	return fmt.Sprintf("invalid expression at %s: %s", e.Path, e.Msg)
}

// Decode builds a tree from the generic object form produced by JSON or YAML
// decoding, for example:
//
//	{"type": "BinaryOperation", "operator": "+",
//	 "left": {"type": "Parameter", "name": "a"},
//	 "right": {"type": "Literal", "value": 1}}
func Decode(raw any) (Node, error) {
	return decodeAt(raw, "$")
}

func decodeAt(raw any, path string) (Node, error) {
	if n, ok := raw.(Node); ok {
		return n, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &DecodeError{Path: path, Msg: fmt.Sprintf("expected an object, got %T", raw)}
	}
	variant, _ := obj["type"].(string)
	switch variant {
	case "Literal":
		return &Literal{Value: obj["value"]}, nil
	case "Parameter":
		name, err := stringField(obj, "name", path)
		if err != nil {
			return nil, err
		}
		return &Parameter{Name: name}, nil
	case "Property":
		of, err := decodeField(obj, "of", path)
		if err != nil {
			return nil, err
		}
		rawPath, _ := obj["path"].([]any)
		if len(rawPath) == 0 {
			return nil, &DecodeError{Path: path + ".path", Msg: "must be a non-empty list"}
		}
		steps := make([]any, len(rawPath))
		for i, p := range rawPath {
			step, err := pathStep(p)
			if err != nil {
				return nil, &DecodeError{Path: fmt.Sprintf("%s.path[%d]", path, i), Msg: err.Error()}
			}
			steps[i] = step
		}
		return &Property{Of: of, Path: steps}, nil
	case "BinaryOperation":
		op, err := stringField(obj, "operator", path)
		if err != nil {
			return nil, err
		}
		if _, known := binaryOperators[op]; !known {
			return nil, &DecodeError{Path: path + ".operator", Msg: fmt.Sprintf("unknown binary operator %q", op)}
		}
		left, err := decodeField(obj, "left", path)
		if err != nil {
			return nil, err
		}
		right, err := decodeField(obj, "right", path)
		if err != nil {
			return nil, err
		}
		return &BinaryOperation{Operator: op, Left: left, Right: right}, nil
	case "UnaryOperation":
		op, err := stringField(obj, "operator", path)
		if err != nil {
			return nil, err
		}
		if _, known := unaryOperators[op]; !known {
			return nil, &DecodeError{Path: path + ".operator", Msg: fmt.Sprintf("unknown unary operator %q", op)}
		}
		operand, err := decodeField(obj, "operand", path)
		if err != nil {
			return nil, err
		}
		return &UnaryOperation{Operator: op, Operand: operand}, nil
	case "Conditional":
		cond, err := decodeField(obj, "condition", path)
		if err != nil {
			return nil, err
		}
		then, err := decodeField(obj, "then", path)
		if err != nil {
			return nil, err
		}
		els, err := decodeField(obj, "else", path)
		if err != nil {
			return nil, err
		}
		return &Conditional{Condition: cond, Then: then, Else: els}, nil
	case "Call":
		fn, err := stringField(obj, "function", path)
		if err != nil {
			return nil, err
		}
		args, err := decodeList(obj, "args", path)
		if err != nil {
			return nil, err
		}
		return &Call{Function: fn, Args: args}, nil
	case "List":
		items, err := decodeList(obj, "items", path)
		if err != nil {
			return nil, err
		}
		return &List{Items: items}, nil
	case "Object":
		rawFields, _ := obj["fields"].(map[string]any)
		fields := make(map[string]Node, len(rawFields))
		for k, v := range rawFields {
			n, err := decodeAt(v, path+".fields."+k)
			if err != nil {
				return nil, err
			}
			fields[k] = n
		}
		return &Object{Fields: fields}, nil
	case "Template":
		parts, err := decodeList(obj, "parts", path)
		if err != nil {
			return nil, err
		}
		return &Template{Parts: parts}, nil
	case "":
		return nil, &DecodeError{Path: path, Msg: "missing 'type' discriminator"}
	}
	return nil, &DecodeError{Path: path, Msg: fmt.Sprintf("unknown node type %q", variant)}
}

func stringField(obj map[string]any, field, path string) (string, error) {
	s, ok := obj[field].(string)
	if !ok || s == "" {
		return "", &DecodeError{Path: path + "." + field, Msg: "must be a non-empty string"}
	}
	return s, nil
}

func decodeField(obj map[string]any, field, path string) (Node, error) {
	raw, ok := obj[field]
	if !ok {
		return nil, &DecodeError{Path: path + "." + field, Msg: "is required"}
	}
	return decodeAt(raw, path+"."+field)
}

func decodeList(obj map[string]any, field, path string) ([]Node, error) {
	raw, ok := obj[field]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &DecodeError{Path: path + "." + field, Msg: "must be a list"}
	}
	out := make([]Node, len(items))
	for i, it := range items {
		n, err := decodeAt(it, fmt.Sprintf("%s.%s[%d]", path, field, i))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func pathStep(p any) (any, error) {
	if s, ok := p.(string); ok {
		return s, nil
	}
	if f, ok := kind.Number(p); ok && f == math.Trunc(f) {
		return int(f), nil
	}
	return nil, fmt.Errorf("path elements must be strings or integers, got %T", p)
}
