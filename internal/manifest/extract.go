// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package manifest

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/blockflow/internal/ctyconv"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/zclconf/go-cty/cty"
)

var (
	reservedParameterNames = map[string]struct{}{"type": {}, "name": {}}
	reservedOutputNames    = map[string]struct{}{"parent_id": {}, "*": {}}
)

// Extract reads a block's Definition, validates it against the kind registry
// and returns the normalized Manifest. All problems are reported together in
// a single InvalidManifestError.
func Extract(b Block, kinds *kind.Registry) (*Manifest, error) {
	def := b.Definition()
	var problems []string
	addProblem := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if def.Type == "" {
		addProblem("manifest type identifier must not be empty")
	}

	policy := def.ErrorPolicy
	if policy == "" {
		policy = ErrorPolicyFail
	}
	if _, err := ParseErrorPolicy(string(policy)); err != nil {
		addProblem("%v", err)
	}

	m := &Manifest{
		Type:             def.Type,
		Name:             def.Name,
		ShortDescription: def.ShortDescription,
		LongDescription:  def.LongDescription,
		Category:         def.Category,
		License:          def.License,
		Tags:             append([]string(nil), def.Tags...),
		Batch:            def.Batch,
		ErrorPolicy:      policy,
		Delegable:        def.Delegable,
		params:           make(map[string]*Parameter, len(def.Parameters)),
		outputs:          make(map[string]*Output, len(def.Outputs)),
	}
	if m.Name == "" {
		m.Name = def.Type
	}
	sort.Strings(m.Tags)

	for _, pd := range def.Parameters {
		p, paramProblems := extractParameter(pd, def.Batch, kinds)
		problems = append(problems, paramProblems...)
		if p == nil {
			continue
		}
		if _, dup := m.params[p.Name]; dup {
			addProblem("parameter '%s' is declared more than once", p.Name)
			continue
		}
		m.params[p.Name] = p
		m.Parameters = append(m.Parameters, p)
	}

	for _, od := range def.Outputs {
		if od.Name == "" {
			addProblem("output name must not be empty")
			continue
		}
		if _, reserved := reservedOutputNames[od.Name]; reserved {
			addProblem("output name '%s' is reserved", od.Name)
			continue
		}
		if _, dup := m.outputs[od.Name]; dup {
			addProblem("output '%s' is declared more than once", od.Name)
			continue
		}
		kinds, err := resolveKinds(od.Kinds, kinds)
		if err != nil {
			addProblem("output '%s': %v", od.Name, err)
			continue
		}
		if len(kinds) == 0 {
			kinds = kind.NewSet(kind.Wildcard)
		}
		o := &Output{Name: od.Name, Description: od.Description, Kinds: kinds}
		m.outputs[o.Name] = o
		m.Outputs = append(m.Outputs, o)
	}

	if len(problems) > 0 {
		return nil, &InvalidManifestError{Type: def.Type, Problems: problems}
	}

	sort.Slice(m.Parameters, func(i, j int) bool { return m.Parameters[i].Name < m.Parameters[j].Name })
	sort.Slice(m.Outputs, func(i, j int) bool { return m.Outputs[i].Name < m.Outputs[j].Name })
	return m, nil
}

func extractParameter(pd ParameterDefinition, batchBlock bool, kinds *kind.Registry) (*Parameter, []string) {
	var problems []string
	if pd.Name == "" {
		return nil, []string{"parameter name must not be empty"}
	}
	if _, reserved := reservedParameterNames[pd.Name]; reserved {
		return nil, []string{fmt.Sprintf("parameter name '%s' is reserved", pd.Name)}
	}

	accepts := pd.Accepts
	if accepts == "" {
		accepts = DefaultAccepts(pd.Kinds)
	}
	if _, err := ParseAccepts(string(accepts)); err != nil {
		problems = append(problems, fmt.Sprintf("parameter '%s': %v", pd.Name, err))
	}
	container := pd.Container
	if container == "" {
		container = ContainerScalar
	}
	if _, err := ParseContainer(string(container)); err != nil {
		problems = append(problems, fmt.Sprintf("parameter '%s': %v", pd.Name, err))
	}

	accepted, err := resolveKinds(pd.Kinds, kinds)
	if err != nil {
		problems = append(problems, fmt.Sprintf("parameter '%s': %v", pd.Name, err))
	}
	if accepts.AllowsSelector() && len(accepted) == 0 && err == nil {
		problems = append(problems, fmt.Sprintf("parameter '%s' accepts selectors but declares no kinds", pd.Name))
	}
	if pd.Batch && !batchBlock {
		problems = append(problems, fmt.Sprintf("parameter '%s' is a batch parameter on a block that does not accept batches", pd.Name))
	}

	ty := pd.Type
	if ty == cty.NilType {
		ty = cty.DynamicPseudoType
	}
	def := pd.Default
	if def != nil {
		conformed, err := ctyconv.Conform(def, ty)
		if err != nil {
			problems = append(problems, fmt.Sprintf("parameter '%s': default does not match type %s: %v", pd.Name, ctyconv.TypeString(ty), err))
		} else {
			def = conformed
		}
	}

	return &Parameter{
		Name:           pd.Name,
		Description:    pd.Description,
		Accepts:        accepts,
		Kinds:          accepted,
		Container:      container,
		Type:           ty,
		TypeAnnotation: ctyconv.TypeString(ty),
		Optional:       pd.Optional || pd.Default != nil,
		Default:        def,
		Batch:          pd.Batch,
		Examples:       pd.Examples,
	}, problems
}

func resolveKinds(names []string, kinds *kind.Registry) (kind.Set, error) {
	set := kind.NewSet(names...)
	if _, err := kinds.ResolveSet(set); err != nil {
		return nil, err
	}
	return set, nil
}
