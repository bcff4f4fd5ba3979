// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"sort"

	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/dynamic"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/model"
)

// Source says where a block came from.
type Source string

const (
	SourceStatic  Source = "static"
	SourceDynamic Source = "dynamic"
)

// BlockDescription is one catalog entry.
type BlockDescription struct {
	*manifest.Manifest
	Source Source         `json:"block_source"`
	Block  manifest.Block `json:"-"`
}

// BlocksDescription is the validated catalog for one request.
type BlocksDescription struct {
	Blocks []*BlockDescription

	byType map[string]*BlockDescription
	kinds  *kind.Registry
}

// Lookup finds a block by type identifier.
func (d *BlocksDescription) Lookup(blockType string) (*BlockDescription, bool) {
	b, ok := d.byType[blockType]
	return b, ok
}

// Kinds returns the kind registry the catalog was validated against.
func (d *BlocksDescription) Kinds() *kind.Registry {
	return d.kinds
}

// Build extracts every block's manifest and merges static and dynamic blocks
// into one catalog sorted by type identifier. A type claimed twice fails with
// manifest.DuplicateBlockTypeError.
func Build(ctx context.Context, kinds *kind.Registry, static, dynamicBlocks []manifest.Block) (*BlocksDescription, error) {
	logger := ctxlog.FromContext(ctx)

	d := &BlocksDescription{
		byType: make(map[string]*BlockDescription, len(static)+len(dynamicBlocks)),
		kinds:  kinds,
	}
	add := func(b manifest.Block, src Source) error {
		m, err := manifest.Extract(b, kinds)
		if err != nil {
			return err
		}
		if _, dup := d.byType[m.Type]; dup {
			return &manifest.DuplicateBlockTypeError{Type: m.Type}
		}
		bd := &BlockDescription{Manifest: m, Source: src, Block: b}
		d.byType[m.Type] = bd
		d.Blocks = append(d.Blocks, bd)
		return nil
	}

	for _, b := range static {
		if err := add(b, SourceStatic); err != nil {
			return nil, err
		}
	}
	for _, b := range dynamicBlocks {
		if err := add(b, SourceDynamic); err != nil {
			return nil, err
		}
	}
	sort.Slice(d.Blocks, func(i, j int) bool { return d.Blocks[i].Type < d.Blocks[j].Type })

	logger.Debug("Block catalog built.", "static", len(static), "dynamic", len(dynamicBlocks))
	return d, nil
}

// Load compiles dynamic definitions against a request-scoped child of kinds
// and builds the catalog together with the static blocks.
func Load(ctx context.Context, kinds *kind.Registry, static *Static, defs []*model.DynamicBlockDefinition) (*BlocksDescription, error) {
	scoped := kinds.Child()
	compiled, err := dynamic.Compile(ctx, defs, scoped)
	if err != nil {
		return nil, err
	}
	return Build(ctx, scoped, static.Blocks(), compiled)
}
