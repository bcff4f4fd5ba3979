// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package manifest

import (
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/zclconf/go-cty/cty"
)

// Manifest is the validated, normalized description of a block.
type Manifest struct {
	Type             string       `json:"manifest_type_identifier"`
	Name             string       `json:"name"`
	ShortDescription string       `json:"short_description,omitempty"`
	LongDescription  string       `json:"long_description,omitempty"`
	Category         string       `json:"block_type,omitempty"`
	License          string       `json:"license,omitempty"`
	Tags             []string     `json:"search_keywords,omitempty"`
	Parameters       []*Parameter `json:"parameters"`
	Outputs          []*Output    `json:"outputs"`
	Batch            bool         `json:"accepts_batch_input"`
	ErrorPolicy      ErrorPolicy  `json:"error_policy"`
	Delegable        bool         `json:"delegable"`

	params  map[string]*Parameter
	outputs map[string]*Output
}

// Parameter is a normalized parameter declaration.
type Parameter struct {
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Accepts        Accepts   `json:"accepts"`
	Kinds          kind.Set  `json:"kind"`
	Container      Container `json:"container"`
	Type           cty.Type  `json:"-"`
	TypeAnnotation string    `json:"type_annotation"`
	Optional       bool      `json:"optional"`
	Default        any       `json:"default,omitempty"`
	Batch          bool      `json:"batch"`
	Examples       []any     `json:"examples,omitempty"`
}

// Output is a normalized output declaration.
type Output struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Kinds       kind.Set `json:"kind"`
}

// Parameter looks up a parameter by name.
func (m *Manifest) Parameter(name string) (*Parameter, bool) {
	p, ok := m.params[name]
	return p, ok
}

// Output looks up an output by name.
func (m *Manifest) Output(name string) (*Output, bool) {
	o, ok := m.outputs[name]
	return o, ok
}

// OutputKinds returns the union of every output's kinds. Used for wildcard
// selectors that take the whole output mapping.
func (m *Manifest) OutputKinds() kind.Set {
	s := kind.NewSet()
	for _, o := range m.Outputs {
		for n := range o.Kinds {
			s[n] = struct{}{}
		}
	}
	return s
}
