// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines DynamicBlockDefinition, a block declared entirely as
// data.
//
// A definition lives only as long as the request that carries it. It is
// compiled into a transient block by the dynamic package and never persisted.
package model

// DynamicBlockDefinition is a data-only block declaration plus its body.
type DynamicBlockDefinition struct {
	Manifest DynamicManifest
	// Body maps each declared output to its expression: either the
	// tagged-variant object form, an HCL expression string, or an already
	// built expression tree.
	Body          map[string]any
	FSInformation *FSInfo
}

// DynamicManifest holds the manifest fields of a dynamic block.
type DynamicManifest struct {
	Type        string
	Name        string
	Description string
	Category    string
	License     string
	Tags        []string
	Inputs      []*DynamicInput
	Outputs     []*DynamicOutput
	Kinds       []*DynamicKind
	Batch       bool
	ErrorPolicy string
}

// DynamicInput declares a parameter of a dynamic block.
type DynamicInput struct {
	Name        string
	Description string
	Accepts     string
	Kinds       []string
	Container   string
	// ValueType is a literal type annotation such as "number" or
	// "list(string)". Empty means any.
	ValueType  string
	Optional   bool
	Default    any
	HasDefault bool
	Batch      bool
}

// DynamicOutput declares an output of a dynamic block.
type DynamicOutput struct {
	Name        string
	Description string
	Kinds       []string
}

// DynamicKind declares a kind that exists only for the current request.
type DynamicKind struct {
	Name        string
	Description string
}
