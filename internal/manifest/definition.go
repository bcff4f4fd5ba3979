// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package manifest

import "github.com/zclconf/go-cty/cty"

// Definition is what a block declares about itself.
type Definition struct {
	// Type is the manifest type identifier used in workflow steps, for example
	// "core/property_definition@v1".
	Type             string
	Name             string
	ShortDescription string
	LongDescription  string
	// Category groups blocks in catalogs ("model", "transformation", ...).
	Category string
	License  string
	Tags     []string

	Parameters []ParameterDefinition
	Outputs    []OutputDefinition

	// Batch marks the block as able to process a whole batch per call.
	Batch       bool
	ErrorPolicy ErrorPolicy
	// Delegable blocks may run through the remote backend.
	Delegable bool
}

// ParameterDefinition declares one block parameter.
type ParameterDefinition struct {
	Name        string
	Description string
	Accepts     Accepts
	// Kinds accepted when the parameter is bound to a selector.
	Kinds     []string
	Container Container
	// Type constrains literal values. cty.NilType means untyped.
	Type     cty.Type
	Optional bool
	Default  any
	// Batch parameters receive []any when the block runs in batch mode.
	Batch    bool
	Examples []any
}

// OutputDefinition declares one block output.
type OutputDefinition struct {
	Name        string
	Description string
	Kinds       []string
}
