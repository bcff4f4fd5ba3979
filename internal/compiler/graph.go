// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package compiler

import (
	"strings"

	"github.com/specialistvlad/blockflow/internal/dag"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/model"
	"github.com/specialistvlad/blockflow/internal/selector"
)

// Graph is a compiled, validated workflow.
type Graph struct {
	Workflow *model.Workflow
	// Inputs and Outputs keep declaration order.
	Inputs  []*Input
	Outputs []*Output

	steps     map[string]*Step
	inputs    map[string]*Input
	declOrder []string
	topo      []string
	dag       *dag.Graph
}

// Input is a declared workflow input with its resolved kinds.
type Input struct {
	*model.Input
	Kinds kind.Set
	// Batched inputs define the batch dimension of a run.
	Batched bool
}

// Step is a compiled workflow step.
type Step struct {
	Name     string
	Index    int
	Block    manifest.Block
	Manifest *manifest.Manifest
	// Bindings is keyed by parameter name.
	Bindings map[string]*Binding
	// Batched steps produce one output mapping per batch element.
	Batched bool
}

// Binding is a parameter bound to its workflow value.
type Binding struct {
	Parameter *manifest.Parameter
	// Value is the bound value with every selector replaced by a
	// *selector.Selector. Nested values are []any and map[string]any.
	Value any
	// Selectors lists every selector found in Value.
	Selectors []*selector.Selector
	// Batched is set when any selector references batched data.
	Batched bool
}

// Output is a declared workflow output with its resolved selector.
type Output struct {
	Name     string
	Selector *selector.Selector
	Kinds    kind.Set
	Batched  bool
}

// Step returns a compiled step by name.
func (g *Graph) Step(name string) (*Step, bool) {
	s, ok := g.steps[name]
	return s, ok
}

// Input returns a compiled input by name.
func (g *Graph) Input(name string) (*Input, bool) {
	in, ok := g.inputs[name]
	return in, ok
}

// Steps returns every step in declaration order.
func (g *Graph) Steps() []*Step {
	out := make([]*Step, 0, len(g.declOrder))
	for _, name := range g.declOrder {
		out = append(out, g.steps[name])
	}
	return out
}

// TopologicalOrder returns the step names such that every step follows the
// steps it depends on. The order is the same on every call and for every
// compilation of the same workflow.
func (g *Graph) TopologicalOrder() []string {
	return append([]string(nil), g.topo...)
}

// Edges returns every dependency edge between graph nodes. Node identifiers
// are "$inputs.<name>" and "$steps.<name>".
func (g *Graph) Edges() []dag.Edge {
	return g.dag.Edges()
}

// Dependencies returns the names of the steps the given step reads from.
func (g *Graph) Dependencies(step string) []string {
	ids, err := g.dag.Dependencies(selector.StepNodeID(step))
	if err != nil {
		return nil
	}
	return stepNames(ids)
}

// Dependents returns the names of the steps reading from the given step.
func (g *Graph) Dependents(step string) []string {
	ids, err := g.dag.Dependents(selector.StepNodeID(step))
	if err != nil {
		return nil
	}
	return stepNames(ids)
}

// Batched reports whether any workflow input is batched.
func (g *Graph) Batched() bool {
	for _, in := range g.Inputs {
		if in.Batched {
			return true
		}
	}
	return false
}

var stepPrefix = selector.StepNodeID("")

// stepNames keeps step node IDs and strips their prefix.
func stepNames(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := strings.CutPrefix(id, stepPrefix); ok {
			out = append(out, name)
		}
	}
	return out
}
