package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/blockflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workflowJSON = `{
  "version": "1.0",
  "inputs": [{"type": "WorkflowImage", "name": "image"}],
  "steps": [{"type": "core/print@v1", "name": "p", "value": "$inputs.image"}],
  "outputs": [{"type": "JsonField", "name": "out", "selector": "$steps.p.printed"}],
  "dynamic_blocks_definitions": [{
    "type": "DynamicBlockDefinition",
    "manifest": {"block_type": "inline/echo@v1", "outputs": {"v": {"kind": ["*"]}}},
    "body": {"outputs": {"v": {"type": "Literal", "value": 1}}}
  }]
}`

const blocksYAML = `
- manifest:
    block_type: yaml/first@v1
    inputs:
      x:
        kind: [integer]
    outputs:
      y:
        kind: [integer]
  body:
    y: "x + 1"
- manifest:
    block_type: yaml/second@v1
    outputs:
      z: {}
  body:
    z: {type: Literal, value: true}
`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestInterpret(t *testing.T) {
	data, err := Decode([]byte(workflowJSON), ".json")
	require.NoError(t, err)

	doc, err := Interpret(data, model.NewFSInfo("wf.json"))
	require.NoError(t, err)
	require.NotNil(t, doc.Workflow)
	assert.Len(t, doc.Workflow.Steps, 1)
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "inline/echo@v1", doc.Blocks[0].Manifest.Type)
}

func TestInterpret_Rejects(t *testing.T) {
	_, err := Interpret(map[string]any{"unrelated": 1}, nil)
	var defErr *model.DefinitionError
	require.ErrorAs(t, err, &defErr)

	_, err = Interpret("text", nil)
	require.ErrorAs(t, err, &defErr)
}

func TestDecode_YAMLMatchesJSONShape(t *testing.T) {
	data, err := Decode([]byte("a:\n  1: one\nb: [x, 2]\n"), ".yml")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"1": "one"},
		"b": []any{"x", 2},
	}, data)

	_, err = Decode([]byte("{}"), ".toml")
	assert.Error(t, err)
}

func TestDispatcher_Load(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "workflow.json", workflowJSON)
	blocksDir := filepath.Join(dir, "blocks")
	require.NoError(t, os.Mkdir(blocksDir, 0o755))
	write(t, blocksDir, "blocks.yaml", blocksYAML)
	write(t, blocksDir, "README.md", "ignored")

	d := NewDispatcher(NewDataLoader())
	assert.Equal(t, []string{".json", ".yaml", ".yml"}, d.Extensions())

	doc, err := d.Load(context.Background(), filepath.Join(dir, "workflow.json"), blocksDir)
	require.NoError(t, err)
	require.NotNil(t, doc.Workflow)

	types := make([]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		types = append(types, b.Manifest.Type)
	}
	assert.Equal(t, []string{"yaml/first@v1", "yaml/second@v1", "inline/echo@v1"}, types)
	assert.Equal(t, "x + 1", doc.Blocks[0].Body["y"])
}

func TestDispatcher_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "workflow.toml", "x = 1")

	_, err := NewDispatcher(NewDataLoader()).Load(context.Background(), p)
	assert.ErrorContains(t, err, "no loader")
}

func TestDocument_Merge(t *testing.T) {
	a := &Document{Workflow: &model.Workflow{FSInformation: model.NewFSInfo("a.json")}}
	b := &Document{Workflow: &model.Workflow{FSInformation: model.NewFSInfo("b.json")}}

	err := a.Merge(b)
	var multi *MultipleWorkflowsError
	require.ErrorAs(t, err, &multi)
	assert.Equal(t, "a.json", multi.First)
	assert.Equal(t, "b.json", multi.Second)

	require.NoError(t, a.Merge(&Document{Blocks: []*model.DynamicBlockDefinition{{}}}))
	assert.Len(t, a.Blocks, 1)
	require.NoError(t, a.Merge(nil))
}
