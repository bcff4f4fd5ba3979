// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package expr

import "github.com/specialistvlad/blockflow/internal/ctyconv"

// Node is one vertex of an expression tree.
type Node interface {
	// Variant is the tag used in the serialized form.
	Variant() string
	isNode()
}

// Literal is a constant value.
type Literal struct {
	Value any
}

// Parameter reads a block parameter by name.
type Parameter struct {
	Name string
}

// Property walks into a map or list. Path elements are attribute names
// (string) or indexes (int).
type Property struct {
	Of   Node
	Path []any
}

// BinaryOperation applies an infix operator.
type BinaryOperation struct {
	Operator string
	Left     Node
	Right    Node
}

// UnaryOperation applies a prefix operator.
type UnaryOperation struct {
	Operator string
	Operand  Node
}

// Conditional picks Then or Else depending on Condition.
type Conditional struct {
	Condition Node
	Then      Node
	Else      Node
}

// Call invokes a named operation from the function catalog.
type Call struct {
	Function string
	Args     []Node
}

// List builds a list.
type List struct {
	Items []Node
}

// Object builds a mapping.
type Object struct {
	Fields map[string]Node
}

// Template concatenates the string form of its parts.
type Template struct {
	Parts []Node
}

func (Literal) Variant() string         { return "Literal" }
func (Parameter) Variant() string       { return "Parameter" }
func (Property) Variant() string        { return "Property" }
func (BinaryOperation) Variant() string { return "BinaryOperation" }
func (UnaryOperation) Variant() string  { return "UnaryOperation" }
func (Conditional) Variant() string     { return "Conditional" }
func (Call) Variant() string            { return "Call" }
func (List) Variant() string            { return "List" }
func (Object) Variant() string          { return "Object" }
func (Template) Variant() string        { return "Template" }

func (Literal) isNode()         {}
func (Parameter) isNode()       {}
func (Property) isNode()        {}
func (BinaryOperation) isNode() {}
func (UnaryOperation) isNode()  {}
func (Conditional) isNode()     {}
func (Call) isNode()            {}
func (List) isNode()            {}
func (Object) isNode()          {}
func (Template) isNode()        {}

// Walk visits n and every node below it, depth first. Returning false from fn
// stops descent into that node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *Property:
		Walk(v.Of, fn)
	case *BinaryOperation:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	case *UnaryOperation:
		Walk(v.Operand, fn)
	case *Conditional:
		Walk(v.Condition, fn)
		Walk(v.Then, fn)
		Walk(v.Else, fn)
	case *Call:
		for _, a := range v.Args {
			Walk(a, fn)
		}
	case *List:
		for _, it := range v.Items {
			Walk(it, fn)
		}
	case *Object:
		for _, k := range ctyconv.SortedKeys(v.Fields) {
			Walk(v.Fields[k], fn)
		}
	case *Template:
		for _, p := range v.Parts {
			Walk(p, fn)
		}
	}
}

// Parameters returns the sorted, unique parameter names referenced by n.
func Parameters(n Node) []string {
	seen := make(map[string]struct{})
	Walk(n, func(x Node) bool {
		if p, ok := x.(*Parameter); ok {
			seen[p.Name] = struct{}{}
		}
		return true
	})
	return ctyconv.SortedKeys(seen)
}

// Functions returns the sorted, unique operation names called by n.
func Functions(n Node) []string {
	seen := make(map[string]struct{})
	Walk(n, func(x Node) bool {
		if c, ok := x.(*Call); ok {
			seen[c.Function] = struct{}{}
		}
		return true
	})
	return ctyconv.SortedKeys(seen)
}
