package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/blockflow/internal/config"
	"github.com/specialistvlad/blockflow/internal/expr"
	"github.com/specialistvlad/blockflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workflowHCL = `
version = "1.0"

input "WorkflowImage" "image" {}

input "WorkflowParameter" "threshold" {
  kind    = ["float_zero_to_one"]
  default = 0.4
}

step "core/property_definition@v1" "count" {
  data     = steps.detect.predictions
  path     = "$.length()"
  extra    = [inputs.threshold, 2]
  mapping  = { img = inputs.image }
  all      = steps.detect.*
}

output "result" {
  selector = steps.count.output
}

output "raw" {
  type     = "JsonField"
  selector = "$steps.detect.*"
}
`

const blocksHCL = `
block "custom/scale@v1" {
  name        = "Scale"
  description = "Multiplies a value by a factor."

  kind "score" {
    description = "A unitless score."
  }

  input "value" {
    kind = ["float", "integer"]
  }

  input "factor" {
    accepts = "literal"
    type    = number
    default = 2
  }

  output "scaled" {
    kind = ["score"]
  }

  outputs {
    scaled = value * factor
  }
}
`

func TestLoader_LoadSource_Workflow(t *testing.T) {
	doc, err := NewLoader().LoadSource(context.Background(), []byte(workflowHCL), "workflow.hcl")
	require.NoError(t, err)
	require.NotNil(t, doc.Workflow)
	assert.Empty(t, doc.Blocks)

	wf := doc.Workflow
	assert.Equal(t, "1.0", wf.Version)
	require.Len(t, wf.Inputs, 2)
	assert.Equal(t, model.InputWorkflowImage, wf.Inputs[0].Type)
	assert.False(t, wf.Inputs[0].HasDefault)
	assert.Equal(t, "threshold", wf.Inputs[1].Name)
	assert.Equal(t, []string{"float_zero_to_one"}, wf.Inputs[1].Kinds)
	assert.True(t, wf.Inputs[1].HasDefault)
	assert.Equal(t, 0.4, wf.Inputs[1].Default)

	require.Len(t, wf.Steps, 1)
	step := wf.Steps[0]
	assert.Equal(t, "core/property_definition@v1", step.Type)
	assert.Equal(t, "count", step.Name)
	assert.Equal(t, map[string]any{
		"data":    "$steps.detect.predictions",
		"path":    "$.length()",
		"extra":   []any{"$inputs.threshold", 2.0},
		"mapping": map[string]any{"img": "$inputs.image"},
		"all":     "$steps.detect.*",
	}, step.Params)
	assert.Equal(t, "workflow.hcl", step.FSInformation.String())

	require.Len(t, wf.Outputs, 2)
	assert.Equal(t, "$steps.count.output", wf.Outputs[0].Selector)
	assert.Equal(t, "JsonField", wf.Outputs[0].Type)
	assert.Equal(t, "own", wf.Outputs[0].CoordinatesSystem)
	assert.Equal(t, "$steps.detect.*", wf.Outputs[1].Selector)
}

func TestLoader_LoadSource_DynamicBlock(t *testing.T) {
	doc, err := NewLoader().LoadSource(context.Background(), []byte(blocksHCL), "blocks.hcl")
	require.NoError(t, err)
	assert.Nil(t, doc.Workflow)
	require.Len(t, doc.Blocks, 1)

	def := doc.Blocks[0]
	man := def.Manifest
	assert.Equal(t, "custom/scale@v1", man.Type)
	assert.Equal(t, "Scale", man.Name)
	require.Len(t, man.Kinds, 1)
	assert.Equal(t, "score", man.Kinds[0].Name)

	require.Len(t, man.Inputs, 2)
	factor := man.Inputs[1]
	assert.Equal(t, "factor", factor.Name)
	assert.Equal(t, "literal", factor.Accepts)
	assert.Equal(t, "number", factor.ValueType)
	assert.True(t, factor.HasDefault)
	assert.Equal(t, 2.0, factor.Default)
	assert.Equal(t, "", man.Inputs[0].ValueType)

	require.Contains(t, def.Body, "scaled")
	node, ok := def.Body["scaled"].(expr.Node)
	require.True(t, ok)
	got, err := expr.Eval(node, map[string]any{"value": 3, "factor": 2})
	require.NoError(t, err)
	assert.Equal(t, 6.0, got)
}

func TestLoader_Load_Files(t *testing.T) {
	dir := t.TempDir()
	wfPath := filepath.Join(dir, "workflow.hcl")
	blocksPath := filepath.Join(dir, "blocks.hcl")
	require.NoError(t, os.WriteFile(wfPath, []byte(workflowHCL), 0o644))
	require.NoError(t, os.WriteFile(blocksPath, []byte(blocksHCL), 0o644))

	doc, err := NewLoader().Load(context.Background(), blocksPath, wfPath)
	require.NoError(t, err)
	require.NotNil(t, doc.Workflow)
	assert.Equal(t, wfPath, doc.Workflow.FSInformation.FilePath)
	assert.Len(t, doc.Blocks, 1)

	_, err = NewLoader().Load(context.Background(), wfPath, wfPath)
	var multi *config.MultipleWorkflowsError
	assert.ErrorAs(t, err, &multi)
}

func TestLoader_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"syntax", `step "a" {`},
		{"unknown input type", `input "Nope" "x" {}`},
		{"non-constant parameter", `
step "t" "s" {
  value = upper(inputs.name)
}`},
		{"output is not a reference", `
output "o" {
  selector = 3
}`},
		{"bad type constraint", `
block "b" {
  input "x" {
    type = banana
  }
}`},
		{"unsupported body expression", `
block "b" {
  outputs {
    y = [for v in xs : v]
  }
}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().LoadSource(context.Background(), []byte(tc.src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}
