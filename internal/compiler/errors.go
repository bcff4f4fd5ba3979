// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package compiler

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/blockflow/internal/dag"
	"github.com/specialistvlad/blockflow/internal/kind"
)

// UnknownBlockTypeError is returned when a step names a block type the
// catalog does not contain.
type UnknownBlockTypeError struct {
	Step string
	Type string
}

func (e *UnknownBlockTypeError) Error() string {
	return fmt.Sprintf("step '%s': unknown block type '%s'", e.Step, e.Type)
}

// UnresolvedSelectorError is returned when a selector points at an input or
// step output that does not exist. Field is empty for input selectors.
type UnresolvedSelectorError struct {
	Step      string
	Parameter string
	Selector  string
	Target    string
	Field     string
	Reason    string
}

func (e *UnresolvedSelectorError) Error() string {
	return fmt.Sprintf("step '%s' parameter '%s': selector '%s' does not resolve: %s", e.Step, e.Parameter, e.Selector, e.Reason)
}

// ForwardReferenceError is returned, when declaration order is enforced, for
// a step selecting a step declared after it.
type ForwardReferenceError struct {
	Step      string
	Parameter string
	Target    string
}

func (e *ForwardReferenceError) Error() string {
	return fmt.Sprintf("step '%s' parameter '%s': references step '%s' which is declared later", e.Step, e.Parameter, e.Target)
}

// IncompatibleKindError is returned when a selector's producer cannot feed
// the consuming parameter.
type IncompatibleKindError struct {
	Step      string
	Parameter string
	Selector  string
	Produced  kind.Set
	Accepted  kind.Set
	// Reason is set when the kinds match but the batch shape does not.
	Reason string
}

func (e *IncompatibleKindError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("step '%s' parameter '%s': selector '%s': %s", e.Step, e.Parameter, e.Selector, e.Reason)
	}
	return fmt.Sprintf("step '%s' parameter '%s': selector '%s' produces %s but the parameter accepts %s",
		e.Step, e.Parameter, e.Selector, e.Produced, e.Accepted)
}

// CyclicGraphError is returned when steps depend on each other in a loop.
// Steps lists the step names along the cycle, first and last being the same.
type CyclicGraphError struct {
	Steps []string
	Cause *dag.CycleError
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("workflow steps form a cycle: %s", strings.Join(e.Steps, " -> "))
}

func (e *CyclicGraphError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// UnresolvedOutputError is returned when a declared workflow output selects
// something that does not exist.
type UnresolvedOutputError struct {
	Output   string
	Selector string
	Reason   string
}

func (e *UnresolvedOutputError) Error() string {
	return fmt.Sprintf("output '%s': selector '%s' does not resolve: %s", e.Output, e.Selector, e.Reason)
}

// DuplicateNameError is returned when two inputs, steps or outputs share a
// name.
type DuplicateNameError struct {
	// Scope is "input", "step" or "output".
	Scope string
	Name  string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate %s name '%s'", e.Scope, e.Name)
}

// InvalidStepParameterError is returned for parameters that are unknown,
// missing, or bound to a value the parameter does not accept.
type InvalidStepParameterError struct {
	Step      string
	Parameter string
	Reason    string
}

func (e *InvalidStepParameterError) Error() string {
	return fmt.Sprintf("step '%s' parameter '%s': %s", e.Step, e.Parameter, e.Reason)
}

// InvalidInputError is returned for a malformed workflow input declaration.
type InvalidInputError struct {
	Input string
	Cause error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("input '%s': %v", e.Input, e.Cause)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Cause
}
