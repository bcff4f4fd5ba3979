// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"

	"github.com/specialistvlad/blockflow/internal/expr"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/model"
)

// Description answers a describe-blocks query.
type Description struct {
	Blocks      []*BlockDescription `json:"blocks"`
	Kinds       []kind.Kind         `json:"declared_kinds"`
	Connections *BlocksConnections  `json:"connections"`
	Expressions expr.Description    `json:"expression_language"`
	Dynamic     []string            `json:"dynamic_block_types,omitempty"`

	// DefinitionSchema describes the dynamic block document format.
	DefinitionSchema map[string]any `json:"dynamic_block_definition_schema"`
}

// Describe compiles the given dynamic definitions in a request-scoped kind
// registry, builds the catalog with the static blocks and derives every
// connection. Nothing it compiles outlives the call.
func Describe(ctx context.Context, kinds *kind.Registry, static *Static, defs []*model.DynamicBlockDefinition) (*Description, error) {
	desc, err := Load(ctx, kinds, static, defs)
	if err != nil {
		return nil, err
	}

	out := &Description{
		Blocks:      desc.Blocks,
		Kinds:       desc.Kinds().All(),
		Connections: DiscoverConnections(desc),
		Expressions: expr.Describe(),

		DefinitionSchema: DynamicBlockDefinitionSchema(),
	}
	for _, b := range desc.Blocks {
		if b.Source == SourceDynamic {
			out.Dynamic = append(out.Dynamic, b.Type)
		}
	}
	return out, nil
}
