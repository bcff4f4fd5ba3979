// This file declares the HCL shape of definition files. Every struct here is
// decoded with gohcl and then translated into the format-agnostic model.

package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is a struct used to decode all possible top-level items from any file.
type fileRoot struct {
	Version *hcl.Attribute     `hcl:"version,optional"`
	Inputs  []*inputBlock      `hcl:"input,block"`
	Steps   []*stepBlock       `hcl:"step,block"`
	Outputs []*outputBlock     `hcl:"output,block"`
	Blocks  []*blockDefinition `hcl:"block,block"`
}

// --- Workflow Structures ---

// inputBlock is a workflow input: `input "WorkflowImage" "image" {}`.
type inputBlock struct {
	Type    string         `hcl:"type,label"`
	Name    string         `hcl:"name,label"`
	Kinds   []string       `hcl:"kind,optional"`
	Default *hcl.Attribute `hcl:"default,optional"`
}

// stepBlock is one step. Every attribute in its body is a parameter.
type stepBlock struct {
	Type   string   `hcl:"type,label"`
	Name   string   `hcl:"name,label"`
	Params hcl.Body `hcl:",remain"`
}

// outputBlock is a workflow output bound to a selector.
type outputBlock struct {
	Name              string         `hcl:"name,label"`
	Selector          hcl.Expression `hcl:"selector"`
	Type              string         `hcl:"type,optional"`
	CoordinatesSystem string         `hcl:"coordinates_system,optional"`
}

// --- Dynamic Block Structures ---

// blockDefinition declares a dynamic block.
type blockDefinition struct {
	Type        string                `hcl:"type,label"`
	Name        string                `hcl:"name,optional"`
	Description string                `hcl:"description,optional"`
	Category    string                `hcl:"category,optional"`
	License     string                `hcl:"license,optional"`
	Tags        []string              `hcl:"tags,optional"`
	Batch       bool                  `hcl:"accepts_batch_input,optional"`
	ErrorPolicy string                `hcl:"error_policy,optional"`
	Kinds       []*blockKind          `hcl:"kind,block"`
	Inputs      []*blockInput         `hcl:"input,block"`
	Outputs     []*blockOutput        `hcl:"output,block"`
	Body        *blockOutputsBodySpec `hcl:"outputs,block"`
}

// blockKind declares a kind that lives only as long as the definition.
type blockKind struct {
	Name        string `hcl:"name,label"`
	Description string `hcl:"description,optional"`
}

// blockInput declares one parameter of a dynamic block. Type holds a type
// constraint expression such as `number` or `list(string)`.
type blockInput struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Accepts     string         `hcl:"accepts,optional"`
	Kinds       []string       `hcl:"kind,optional"`
	Container   string         `hcl:"container,optional"`
	Type        *hcl.Attribute `hcl:"type,optional"`
	Optional    bool           `hcl:"optional,optional"`
	Default     *hcl.Attribute `hcl:"default,optional"`
	Batch       bool           `hcl:"batch,optional"`
}

// blockOutput declares one output of a dynamic block.
type blockOutput struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Kinds       []string `hcl:"kind,optional"`
}

// blockOutputsBodySpec is the `outputs {}` block: one attribute per declared
// output, each holding the expression that computes it.
type blockOutputsBodySpec struct {
	Expressions hcl.Attributes `hcl:",remain"`
}
