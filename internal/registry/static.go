// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/blockflow/internal/manifest"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Static)
}

// Static holds the compiled-in blocks of one application instance.
type Static struct {
	blocks map[string]manifest.Block
}

// NewStatic creates a Static registry and lets every module register into it.
func NewStatic(modules ...Module) *Static {
	s := &Static{blocks: make(map[string]manifest.Block)}
	for _, m := range modules {
		m.Register(s)
	}
	return s
}

// Add registers a block. Registering two blocks with one type identifier is
// a programming error and panics.
func (s *Static) Add(b manifest.Block) {
	t := b.Definition().Type
	if _, exists := s.blocks[t]; exists {
		panic(fmt.Sprintf("block with type '%s' already registered", t))
	}
	slog.Debug("Registering block.", "block_type", t)
	s.blocks[t] = b
}

// Blocks returns the registered blocks sorted by type identifier.
func (s *Static) Blocks() []manifest.Block {
	if s == nil {
		return nil
	}
	types := make([]string, 0, len(s.blocks))
	for t := range s.blocks {
		types = append(types, t)
	}
	sort.Strings(types)
	out := make([]manifest.Block, 0, len(types))
	for _, t := range types {
		out = append(out, s.blocks[t])
	}
	return out
}
