// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package expr

import (
	"sort"

	"github.com/specialistvlad/blockflow/internal/ctyconv"
	"github.com/zclconf/go-cty/cty/function"
)

// Description is the introspection contract of the language: what a
// dynamic block author may call and which operators exist.
type Description struct {
	NodeTypes  []string               `json:"node_types"`
	Operations []OperationDescription `json:"operations_description"`
	Operators  []OperatorDescription  `json:"operators_descriptions"`
}

// OperationDescription describes one callable operation.
type OperationDescription struct {
	Name        string                `json:"operation_type"`
	Description string                `json:"description,omitempty"`
	Arguments   []ArgumentDescription `json:"arguments"`
	Variadic    *ArgumentDescription  `json:"variadic_argument,omitempty"`
}

// ArgumentDescription describes a positional argument of an operation.
type ArgumentDescription struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Nullable    bool   `json:"nullable"`
}

// OperatorDescription describes an operator.
type OperatorDescription struct {
	Symbol         string `json:"operator_type"`
	Description    string `json:"description"`
	OperandsNumber int    `json:"operands_number"`
}

// Describe returns the language description, sorted for stable output.
func Describe() Description {
	d := Description{
		NodeTypes: []string{
			"BinaryOperation", "Call", "Conditional", "List", "Literal",
			"Object", "Parameter", "Property", "Template", "UnaryOperation",
		},
	}

	for _, name := range ctyconv.SortedKeys(operations) {
		fn := operations[name]
		od := OperationDescription{Name: name, Description: fn.Description()}
		for _, p := range fn.Params() {
			od.Arguments = append(od.Arguments, describeParam(p))
		}
		if vp := fn.VarParam(); vp != nil {
			arg := describeParam(*vp)
			od.Variadic = &arg
		}
		d.Operations = append(d.Operations, od)
	}

	for sym, op := range binaryOperators {
		d.Operators = append(d.Operators, OperatorDescription{Symbol: sym, Description: op.description, OperandsNumber: 2})
	}
	for sym, op := range unaryOperators {
		d.Operators = append(d.Operators, OperatorDescription{Symbol: sym, Description: op.description, OperandsNumber: 1})
	}
	sort.Slice(d.Operators, func(i, j int) bool {
		if d.Operators[i].OperandsNumber != d.Operators[j].OperandsNumber {
			return d.Operators[i].OperandsNumber > d.Operators[j].OperandsNumber
		}
		return d.Operators[i].Symbol < d.Operators[j].Symbol
	})
	return d
}

func describeParam(p function.Parameter) ArgumentDescription {
	return ArgumentDescription{
		Name:        p.Name,
		Type:        ctyconv.TypeString(p.Type),
		Description: p.Description,
		Nullable:    p.AllowNull,
	}
}
