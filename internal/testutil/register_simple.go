package testutil

import (
	"context"

	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a fixed set of blocks.
type SimpleModule struct {
	Blocks []manifest.Block
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Static) {
	for _, b := range m.Blocks {
		r.Add(b)
	}
}

// FuncBlock is a block whose behavior is a plain function.
type FuncBlock struct {
	Def manifest.Definition
	Fn  func(ctx context.Context, params manifest.Params) (manifest.Outputs, error)
}

// Definition implements manifest.Block.
func (b *FuncBlock) Definition() manifest.Definition { return b.Def }

// Run implements manifest.Block.
func (b *FuncBlock) Run(ctx context.Context, params manifest.Params) (manifest.Outputs, error) {
	if b.Fn == nil {
		return manifest.Outputs{}, nil
	}
	return b.Fn(ctx, params)
}
