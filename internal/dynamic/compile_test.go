package dynamic

import (
	"context"
	"testing"

	"github.com/specialistvlad/blockflow/internal/expr"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scaleDefinition multiplies a selector-bound value by a literal factor.
func scaleDefinition(blockType string) *model.DynamicBlockDefinition {
	return &model.DynamicBlockDefinition{
		Manifest: model.DynamicManifest{
			Type:        blockType,
			Description: "Multiplies a value by a factor.",
			Kinds:       []*model.DynamicKind{{Name: "score", Description: "A unitless score."}},
			Inputs: []*model.DynamicInput{
				{Name: "value", Accepts: "selector", Kinds: []string{kind.FloatKind, kind.IntegerKind}},
				{Name: "factor", Accepts: "literal", ValueType: "number", Default: 2, HasDefault: true},
			},
			Outputs: []*model.DynamicOutput{{Name: "scaled", Kinds: []string{"score"}}},
		},
		Body: map[string]any{
			"scaled": map[string]any{
				"type":     "BinaryOperation",
				"operator": "*",
				"left":     map[string]any{"type": "Parameter", "name": "value"},
				"right":    map[string]any{"type": "Parameter", "name": "factor"},
			},
		},
	}
}

func TestCompile_ValidDefinition(t *testing.T) {
	kinds := kind.Default().Child()
	blocks, err := Compile(context.Background(), []*model.DynamicBlockDefinition{scaleDefinition("custom/scale@v1")}, kinds)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	m, err := manifest.Extract(blocks[0], kinds)
	require.NoError(t, err)
	assert.Equal(t, "custom/scale@v1", m.Type)
	assert.Equal(t, Category, m.Category)
	factor, ok := m.Parameter("factor")
	require.True(t, ok)
	assert.True(t, factor.Optional)
	assert.Equal(t, "number", factor.TypeAnnotation)
	assert.Equal(t, 2.0, factor.Default)

	out, err := blocks[0].Run(context.Background(), manifest.Params{"value": 1.5, "factor": 4})
	require.NoError(t, err)
	assert.Equal(t, manifest.Outputs{"scaled": 6.0}, out)

	again, err := blocks[0].Run(context.Background(), manifest.Params{"value": 1.5, "factor": 4})
	require.NoError(t, err)
	assert.Equal(t, out, again, "same inputs must give same outputs")

	withDefault, err := blocks[0].Run(context.Background(), manifest.Params{"value": 3})
	require.NoError(t, err)
	assert.Equal(t, manifest.Outputs{"scaled": 6.0}, withDefault)
}

func TestCompile_UnsetAcceptsMatchesStaticBlocks(t *testing.T) {
	def := scaleDefinition("custom/scale@v1")
	def.Manifest.Inputs[0].Accepts = ""
	def.Manifest.Inputs = append(def.Manifest.Inputs, &model.DynamicInput{Name: "anything", Optional: true})
	kinds := kind.Default().Child()
	blocks, err := Compile(context.Background(), []*model.DynamicBlockDefinition{def}, kinds)
	require.NoError(t, err)

	m, err := manifest.Extract(blocks[0], kinds)
	require.NoError(t, err)
	value, _ := m.Parameter("value")
	assert.Equal(t, manifest.DefaultAccepts([]string{kind.FloatKind}), value.Accepts)
	anything, _ := m.Parameter("anything")
	assert.Equal(t, manifest.AcceptsEither, anything.Accepts)
	assert.True(t, anything.Kinds.Has(kind.Wildcard))
}

func TestCompile_EphemeralKindsStayInChild(t *testing.T) {
	kinds := kind.Default().Child()
	_, err := Compile(context.Background(), []*model.DynamicBlockDefinition{scaleDefinition("custom/scale@v1")}, kinds)
	require.NoError(t, err)

	_, err = kinds.Resolve("score")
	assert.NoError(t, err)
	_, err = kind.Default().Resolve("score")
	var unknown *kind.UnknownKindError
	assert.ErrorAs(t, err, &unknown)
}

func TestCompile_HCLStringBody(t *testing.T) {
	def := scaleDefinition("custom/hcl@v1")
	def.Body = map[string]any{"scaled": "value * factor + 1"}

	blocks, err := Compile(context.Background(), []*model.DynamicBlockDefinition{def}, kind.Default().Child())
	require.NoError(t, err)

	b := blocks[0].(*Block)
	node, ok := b.Expression("scaled")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"value", "factor"}, expr.Parameters(node))

	out, err := b.Run(context.Background(), manifest.Params{"value": 2, "factor": 3})
	require.NoError(t, err)
	assert.Equal(t, 7.0, out["scaled"])
}

func TestCompile_DuplicateType(t *testing.T) {
	defs := []*model.DynamicBlockDefinition{scaleDefinition("custom/same@v1"), scaleDefinition("custom/same@v1")}
	_, err := Compile(context.Background(), defs, kind.Default().Child())

	var dup *manifest.DuplicateBlockTypeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "custom/same@v1", dup.Type)
}

func TestCompile_InvalidDefinitions(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(d *model.DynamicBlockDefinition)
		problem string
	}{
		{
			name:    "unknown kind",
			mutate:  func(d *model.DynamicBlockDefinition) { d.Manifest.Inputs[0].Kinds = []string{"no_such_kind"} },
			problem: "no_such_kind",
		},
		{
			name:    "missing body expression",
			mutate:  func(d *model.DynamicBlockDefinition) { d.Body = map[string]any{} },
			problem: "no expression",
		},
		{
			name: "undeclared parameter",
			mutate: func(d *model.DynamicBlockDefinition) {
				d.Body["scaled"] = "value * offset"
			},
			problem: "undeclared input 'offset'",
		},
		{
			name:    "unknown operation",
			mutate:  func(d *model.DynamicBlockDefinition) { d.Body["scaled"] = "teleport(value)" },
			problem: "unknown operation 'teleport'",
		},
		{
			name:    "body for undeclared output",
			mutate:  func(d *model.DynamicBlockDefinition) { d.Body["extra"] = 1.0 },
			problem: "not a declared output",
		},
		{
			name:    "bad accepts",
			mutate:  func(d *model.DynamicBlockDefinition) { d.Manifest.Inputs[0].Accepts = "sometimes" },
			problem: "unknown accepts value",
		},
		{
			name:    "bad type annotation",
			mutate:  func(d *model.DynamicBlockDefinition) { d.Manifest.Inputs[1].ValueType = "banana" },
			problem: "input 'factor'",
		},
		{
			name:    "selector without kinds",
			mutate:  func(d *model.DynamicBlockDefinition) { d.Manifest.Inputs[0].Kinds = nil },
			problem: "declares no kinds",
		},
		{
			name:    "reserved output name",
			mutate:  func(d *model.DynamicBlockDefinition) { d.Manifest.Outputs[0].Name = "parent_id"; d.Body = map[string]any{"parent_id": 1.0} },
			problem: "reserved",
		},
		{
			name:    "malformed tree",
			mutate:  func(d *model.DynamicBlockDefinition) { d.Body["scaled"] = map[string]any{"type": "Nope"} },
			problem: "output 'scaled'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			def := scaleDefinition("custom/broken@v1")
			tc.mutate(def)

			_, err := Compile(context.Background(), []*model.DynamicBlockDefinition{def}, kind.Default().Child())
			var invalid *InvalidDynamicBlockError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "custom/broken@v1", invalid.Type)
			assert.Contains(t, invalid.Error(), tc.problem)
		})
	}
}

func TestCompile_ConflictingKind(t *testing.T) {
	def := scaleDefinition("custom/conflict@v1")
	def.Manifest.Kinds = []*model.DynamicKind{{Name: kind.ImageKind, Description: "not really an image"}}

	_, err := Compile(context.Background(), []*model.DynamicBlockDefinition{def}, kind.Default().Child())
	var invalid *InvalidDynamicBlockError
	require.ErrorAs(t, err, &invalid)
}

func TestBlock_RunBatch(t *testing.T) {
	def := scaleDefinition("custom/batch@v1")
	def.Manifest.Batch = true
	def.Manifest.Inputs[0].Batch = true

	blocks, err := Compile(context.Background(), []*model.DynamicBlockDefinition{def}, kind.Default().Child())
	require.NoError(t, err)

	out, err := blocks[0].Run(context.Background(), manifest.Params{"value": []any{1, 2, 3}, "factor": 10})
	require.NoError(t, err)
	assert.Equal(t, []any{10.0, 20.0, 30.0}, out["scaled"])

	_, err = blocks[0].Run(context.Background(), manifest.Params{"value": 1, "factor": 10})
	assert.ErrorContains(t, err, "must be a list")
}

func TestBlock_RunBatch_UnboundOptionalBatchInput(t *testing.T) {
	def := &model.DynamicBlockDefinition{
		Manifest: model.DynamicManifest{
			Type:  "custom/pair@v1",
			Batch: true,
			Inputs: []*model.DynamicInput{
				{Name: "image", Accepts: "selector", Kinds: []string{kind.ImageKind}, Batch: true},
				{Name: "note", Accepts: "selector", Kinds: []string{kind.StringKind}, Batch: true, Default: "none", HasDefault: true},
				{Name: "extra", Accepts: "selector", Kinds: []string{kind.StringKind}, Batch: true, Optional: true},
			},
			Outputs: []*model.DynamicOutput{
				{Name: "image", Kinds: []string{kind.ImageKind}},
				{Name: "note", Kinds: []string{kind.StringKind}},
			},
		},
		Body: map[string]any{
			"image": map[string]any{"type": "Parameter", "name": "image"},
			"note":  map[string]any{"type": "Parameter", "name": "note"},
		},
	}
	blocks, err := Compile(context.Background(), []*model.DynamicBlockDefinition{def}, kind.Default().Child())
	require.NoError(t, err)

	out, err := blocks[0].Run(context.Background(), manifest.Params{"image": []any{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, out["image"])
	assert.Equal(t, []any{"none", "none"}, out["note"])

	out, err = blocks[0].Run(context.Background(), manifest.Params{"image": []any{"a", "b"}, "note": []any{"x", "y"}, "extra": nil})
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y"}, out["note"])
}

func TestBlock_RunEvaluationError(t *testing.T) {
	blocks, err := Compile(context.Background(), []*model.DynamicBlockDefinition{scaleDefinition("custom/err@v1")}, kind.Default().Child())
	require.NoError(t, err)

	_, err = blocks[0].Run(context.Background(), manifest.Params{"value": "text", "factor": 2})
	assert.ErrorContains(t, err, "output 'scaled'")
}
