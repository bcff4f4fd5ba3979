// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Workflow structure, the root of a workflow
// definition document.
//
// Steps may appear in any order. The order of Inputs and Outputs is kept
// because it is visible to users: outputs are reported in declaration order.
package model

// Workflow is a declared computation graph.
type Workflow struct {
	Version       string
	Inputs        []*Input
	Steps         []*Step
	Outputs       []*Output
	FSInformation *FSInfo
}

// InputType is the declared type of a workflow input.
type InputType string

const (
	InputWorkflowImage         InputType = "WorkflowImage"
	InputInferenceImage        InputType = "InferenceImage"
	InputWorkflowBatch         InputType = "WorkflowBatchInput"
	InputWorkflowVideoMetadata InputType = "WorkflowVideoMetadata"
	InputWorkflowParameter     InputType = "WorkflowParameter"
	InputInferenceParameter    InputType = "InferenceParameter"
)

// Known reports whether t is one of the supported input types.
func (t InputType) Known() bool {
	switch t {
	case InputWorkflowImage, InputInferenceImage, InputWorkflowBatch, InputWorkflowVideoMetadata,
		InputWorkflowParameter, InputInferenceParameter:
		return true
	}
	return false
}

// Batched reports whether values of this input type form the batch
// dimension of a run. Parameters are broadcast to every element instead.
func (t InputType) Batched() bool {
	switch t {
	case InputWorkflowImage, InputInferenceImage, InputWorkflowBatch, InputWorkflowVideoMetadata:
		return true
	}
	return false
}

// Input is a declared workflow input.
type Input struct {
	Type  InputType
	Name  string
	Kinds []string
	// Default is used when the runtime parameter is absent and HasDefault is
	// set.
	Default    any
	HasDefault bool
}

// Required reports whether a runtime value must be supplied. Batched inputs
// are always required; parameters are optional with a null default unless
// declared otherwise.
func (i *Input) Required() bool {
	return i.Type.Batched() && !i.HasDefault
}

// Output is a declared workflow output.
type Output struct {
	Type              string
	Name              string
	Selector          string
	CoordinatesSystem string
}
