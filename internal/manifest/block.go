// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package manifest

import (
	"context"
	"fmt"
)

// Params are the resolved parameter values passed to a block invocation.
type Params map[string]any

// Outputs are the named values a block invocation produces.
type Outputs map[string]any

// Block is a unit of computation that can be placed in a workflow.
type Block interface {
	// Definition describes the block. It must return the same value on every
	// call.
	Definition() Definition
	// Run executes the block once. Batch-capable blocks receive []any for
	// every parameter declared with Batch and must return []any of the same
	// length for every output.
	Run(ctx context.Context, params Params) (Outputs, error)
}

// Accepts classifies what a parameter may be bound to in a workflow.
type Accepts string

const (
	AcceptsLiteral  Accepts = "literal"
	AcceptsSelector Accepts = "selector"
	AcceptsEither   Accepts = "either"
)

// AllowsSelector reports whether a selector may be bound.
func (a Accepts) AllowsSelector() bool {
	return a == AcceptsSelector || a == AcceptsEither
}

// AllowsLiteral reports whether a literal value may be bound.
func (a Accepts) AllowsLiteral() bool {
	return a == AcceptsLiteral || a == AcceptsEither
}

// ParseAccepts parses the textual form used in definition documents. The
// empty string stays unset and is resolved by DefaultAccepts during Extract.
func ParseAccepts(s string) (Accepts, error) {
	switch Accepts(s) {
	case AcceptsLiteral, AcceptsSelector, AcceptsEither, "":
		return Accepts(s), nil
	}
	return "", fmt.Errorf("unknown accepts value %q, expected one of literal, selector, either", s)
}

// DefaultAccepts is what a parameter that leaves Accepts unset takes: either
// when it declares kinds, literal otherwise. Static and dynamic blocks share
// it.
func DefaultAccepts(kinds []string) Accepts {
	if len(kinds) > 0 {
		return AcceptsEither
	}
	return AcceptsLiteral
}

// Container describes how selectors are nested inside a parameter value.
type Container string

const (
	ContainerScalar Container = "scalar"
	ContainerList   Container = "list"
	ContainerDict   Container = "dict"
)

// ParseContainer parses the textual form used in definition documents.
func ParseContainer(s string) (Container, error) {
	switch Container(s) {
	case ContainerScalar, ContainerList, ContainerDict:
		return Container(s), nil
	case "":
		return ContainerScalar, nil
	}
	return "", fmt.Errorf("unknown container %q, expected one of scalar, list, dict", s)
}

// ErrorPolicy decides what a step failure does to the run.
type ErrorPolicy string

const (
	// ErrorPolicyFail aborts the run.
	ErrorPolicyFail ErrorPolicy = "fail"
	// ErrorPolicyTolerate records NoOutput for the affected elements and
	// keeps going.
	ErrorPolicyTolerate ErrorPolicy = "tolerate"
)

// ParseErrorPolicy parses the textual form used in definition documents.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(s) {
	case ErrorPolicyFail, ErrorPolicyTolerate:
		return ErrorPolicy(s), nil
	case "":
		return ErrorPolicyFail, nil
	}
	return "", fmt.Errorf("unknown error policy %q, expected fail or tolerate", s)
}

// Sentinel is the type of NoOutput.
type Sentinel struct{}

// NoOutput marks a batch element for which a step produced nothing.
var NoOutput = Sentinel{}

// MarshalJSON renders NoOutput as null.
func (Sentinel) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (Sentinel) String() string {
	return "<no output>"
}

// IsNoOutput reports whether v is the NoOutput sentinel.
func IsNoOutput(v any) bool {
	_, ok := v.(Sentinel)
	return ok
}
