// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/dag"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/model"
	"github.com/specialistvlad/blockflow/internal/registry"
	"github.com/specialistvlad/blockflow/internal/selector"
)

// Option configures Compile.
type Option func(*options)

type options struct {
	declarationOrder bool
}

// WithDeclarationOrder requires steps to only select steps declared before
// them. Violations fail with ForwardReferenceError.
func WithDeclarationOrder() Option {
	return func(o *options) { o.declarationOrder = true }
}

// compilation carries the state of one Compile call.
type compilation struct {
	g     *Graph
	kinds *kind.Registry
	opts  options
}

// Compile validates a workflow against a block catalog and builds its
// dependency graph. Steps may be declared in any order: the graph is derived
// from the selectors, never from declaration order.
func Compile(ctx context.Context, wf *model.Workflow, desc *registry.BlocksDescription, opts ...Option) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compiling workflow.", "source", wf.FSInformation.String(), "steps", len(wf.Steps))

	c := &compilation{
		g: &Graph{
			Workflow: wf,
			steps:    make(map[string]*Step, len(wf.Steps)),
			inputs:   make(map[string]*Input, len(wf.Inputs)),
			dag:      dag.New(),
		},
		kinds: desc.Kinds(),
	}
	for _, opt := range opts {
		opt(&c.opts)
	}

	if err := c.registerInputs(wf.Inputs); err != nil {
		return nil, err
	}
	if err := c.registerSteps(wf.Steps, desc); err != nil {
		return nil, err
	}
	for _, decl := range wf.Steps {
		if err := c.bindStep(c.g.steps[decl.Name], decl); err != nil {
			return nil, err
		}
	}
	if err := c.order(); err != nil {
		return nil, err
	}
	if err := c.markBatched(); err != nil {
		return nil, err
	}
	if err := c.registerOutputs(wf.Outputs); err != nil {
		return nil, err
	}

	logger.Debug("Workflow compiled.", "order", c.g.topo, "edges", len(c.g.Edges()))
	return c.g, nil
}

func (c *compilation) registerInputs(inputs []*model.Input) error {
	for _, in := range inputs {
		if _, dup := c.g.inputs[in.Name]; dup {
			return &DuplicateNameError{Scope: "input", Name: in.Name}
		}
		if !in.Type.Known() {
			return &InvalidInputError{Input: in.Name, Cause: fmt.Errorf("unknown input type %q", in.Type)}
		}
		kinds, err := inputKinds(in, c.kinds)
		if err != nil {
			return &InvalidInputError{Input: in.Name, Cause: err}
		}
		ci := &Input{Input: in, Kinds: kinds, Batched: in.Type.Batched()}
		c.g.inputs[in.Name] = ci
		c.g.Inputs = append(c.g.Inputs, ci)
		c.g.dag.AddNode(selector.InputNodeID(in.Name))
	}
	return nil
}

// inputKinds returns the declared kinds of an input, or the kinds implied by
// its type.
func inputKinds(in *model.Input, kinds *kind.Registry) (kind.Set, error) {
	if len(in.Kinds) > 0 {
		set := kind.NewSet(in.Kinds...)
		if _, err := kinds.ResolveSet(set); err != nil {
			return nil, err
		}
		return set, nil
	}
	switch in.Type {
	case model.InputWorkflowImage, model.InputInferenceImage:
		return kind.NewSet(kind.ImageKind), nil
	case model.InputWorkflowVideoMetadata:
		return kind.NewSet(kind.VideoMetadataKind), nil
	}
	return kind.NewSet(kind.Wildcard), nil
}

func (c *compilation) registerSteps(steps []*model.Step, desc *registry.BlocksDescription) error {
	for i, decl := range steps {
		if _, dup := c.g.steps[decl.Name]; dup {
			return &DuplicateNameError{Scope: "step", Name: decl.Name}
		}
		bd, ok := desc.Lookup(decl.Type)
		if !ok {
			return &UnknownBlockTypeError{Step: decl.Name, Type: decl.Type}
		}
		c.g.steps[decl.Name] = &Step{
			Name:     decl.Name,
			Index:    i,
			Block:    bd.Block,
			Manifest: bd.Manifest,
			Bindings: make(map[string]*Binding),
		}
		c.g.declOrder = append(c.g.declOrder, decl.Name)
		c.g.dag.AddNode(selector.StepNodeID(decl.Name))
	}
	return nil
}

// order rejects cycles and fixes the topological order of the steps.
func (c *compilation) order() error {
	ids, err := c.g.dag.TopologicalOrder()
	if err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) {
			return &CyclicGraphError{Steps: stepNames(cycle.Path), Cause: cycle}
		}
		return err
	}
	c.g.topo = stepNames(ids)
	return nil
}

// markBatched walks steps in dependency order: a step is batched when any of
// its selectors reads batched data.
func (c *compilation) markBatched() error {
	for _, name := range c.g.topo {
		st := c.g.steps[name]
		for _, p := range st.Manifest.Parameters {
			b, ok := st.Bindings[p.Name]
			if !ok {
				continue
			}
			for _, sel := range b.Selectors {
				if !c.isBatched(sel) {
					continue
				}
				b.Batched = true
				st.Batched = true
				if st.Manifest.Batch && !p.Batch {
					return &IncompatibleKindError{
						Step:      st.Name,
						Parameter: p.Name,
						Selector:  sel.String(),
						Produced:  c.producedKinds(sel),
						Accepted:  p.Kinds,
						Reason:    "batched data cannot feed a non-batch parameter of a batch-capable block",
					}
				}
			}
		}
	}
	return nil
}

func (c *compilation) isBatched(sel *selector.Selector) bool {
	if sel.Scope == selector.Inputs {
		return c.g.inputs[sel.Name].Batched
	}
	return c.g.steps[sel.Name].Batched
}

// producedKinds returns the kinds a resolved selector yields. A wildcard
// selector yields the whole output mapping.
func (c *compilation) producedKinds(sel *selector.Selector) kind.Set {
	if sel.Scope == selector.Inputs {
		return c.g.inputs[sel.Name].Kinds
	}
	m := c.g.steps[sel.Name].Manifest
	if sel.IsWildcard() {
		set := m.OutputKinds()
		set[kind.DictionaryKind] = struct{}{}
		return set
	}
	out, _ := m.Output(sel.Field)
	return out.Kinds
}

func (c *compilation) registerOutputs(outputs []*model.Output) error {
	seen := make(map[string]struct{}, len(outputs))
	for _, o := range outputs {
		if _, dup := seen[o.Name]; dup {
			return &DuplicateNameError{Scope: "output", Name: o.Name}
		}
		seen[o.Name] = struct{}{}

		sel, err := selector.Parse(o.Selector)
		if err != nil {
			return &UnresolvedOutputError{Output: o.Name, Selector: o.Selector, Reason: err.Error()}
		}
		if reason := c.missing(sel); reason != "" {
			return &UnresolvedOutputError{Output: o.Name, Selector: o.Selector, Reason: reason}
		}
		c.g.Outputs = append(c.g.Outputs, &Output{
			Name:     o.Name,
			Selector: sel,
			Kinds:    c.producedKinds(sel),
			Batched:  c.isBatched(sel),
		})
	}
	return nil
}

// missing explains why sel does not resolve, or returns "".
func (c *compilation) missing(sel *selector.Selector) string {
	if sel.Scope == selector.Inputs {
		if _, ok := c.g.inputs[sel.Name]; !ok {
			return fmt.Sprintf("input '%s' is not declared", sel.Name)
		}
		return ""
	}
	st, ok := c.g.steps[sel.Name]
	if !ok {
		return fmt.Sprintf("step '%s' is not declared", sel.Name)
	}
	if sel.IsWildcard() {
		return ""
	}
	if _, ok := st.Manifest.Output(sel.Field); !ok {
		return fmt.Sprintf("step '%s' has no output '%s'", sel.Name, sel.Field)
	}
	return ""
}
