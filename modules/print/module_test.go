package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	out := &bytes.Buffer{}
	static := registry.NewStatic(&Module{Out: out})
	blocks := static.Blocks()
	require.Len(t, blocks, 1)

	res, err := blocks[0].Run(context.Background(), manifest.Params{
		"label": "detections",
		"value": map[string]any{"count": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": 2}, res["value"])
	assert.Equal(t, "      detections = {\"count\":2}\n", out.String())
}

func TestPrint_ManifestExtracts(t *testing.T) {
	m, err := manifest.Extract(&Block{}, kind.Default())
	require.NoError(t, err)
	assert.Equal(t, Type, m.Type)

	label, ok := m.Parameter("label")
	require.True(t, ok)
	assert.True(t, label.Optional)
}
