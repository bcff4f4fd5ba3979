// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"sort"

	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
)

// SelectorConnection says that a block parameter can be bound to a selector
// producing some kind.
type SelectorConnection struct {
	ManifestType        string `json:"manifest_type_identifier"`
	PropertyName        string `json:"property_name"`
	PropertyDescription string `json:"property_description,omitempty"`
	// MatchedBy is "kind" when the parameter names the kind and "wildcard"
	// when it accepts every kind.
	MatchedBy     string `json:"matched_by"`
	IsListElement bool   `json:"is_list_element"`
	IsDictElement bool   `json:"is_dict_element"`
}

// OutputConnection says that a block output produces some kind.
type OutputConnection struct {
	ManifestType string `json:"manifest_type_identifier"`
	OutputName   string `json:"output_name"`
}

// PrimitiveConnection describes a parameter that takes literal values.
type PrimitiveConnection struct {
	ManifestType        string `json:"manifest_type_identifier"`
	PropertyName        string `json:"property_name"`
	PropertyDescription string `json:"property_description,omitempty"`
	TypeAnnotation      string `json:"type_annotation"`
}

// BlocksConnections is the legal wiring derived from a catalog.
type BlocksConnections struct {
	// Inputs maps every kind to the parameters that can receive it.
	Inputs map[string][]SelectorConnection `json:"kinds_connections"`
	// Outputs maps every kind to the block outputs that produce it.
	Outputs    map[string][]OutputConnection `json:"output_connections"`
	Primitives []PrimitiveConnection         `json:"primitives_connections"`
}

// DiscoverConnections derives the wiring of a catalog. Parameters and outputs
// declaring the wildcard kind are listed under every kind. The result is
// sorted, so the same catalog always yields the same connections.
func DiscoverConnections(desc *BlocksDescription) *BlocksConnections {
	kinds := desc.Kinds().All()
	c := &BlocksConnections{
		Inputs:  make(map[string][]SelectorConnection, len(kinds)),
		Outputs: make(map[string][]OutputConnection, len(kinds)),
	}

	for _, k := range kinds {
		c.Inputs[k.Name] = []SelectorConnection{}
		c.Outputs[k.Name] = []OutputConnection{}
	}

	for _, b := range desc.Blocks {
		for _, p := range b.Parameters {
			if p.Accepts.AllowsLiteral() {
				c.Primitives = append(c.Primitives, PrimitiveConnection{
					ManifestType:        b.Type,
					PropertyName:        p.Name,
					PropertyDescription: p.Description,
					TypeAnnotation:      p.TypeAnnotation,
				})
			}
			if !p.Accepts.AllowsSelector() {
				continue
			}
			for _, k := range kinds {
				matched := matchKind(p.Kinds, k.Name)
				if matched == "" {
					continue
				}
				c.Inputs[k.Name] = append(c.Inputs[k.Name], SelectorConnection{
					ManifestType:        b.Type,
					PropertyName:        p.Name,
					PropertyDescription: p.Description,
					MatchedBy:           matched,
					IsListElement:       p.Container == manifest.ContainerList,
					IsDictElement:       p.Container == manifest.ContainerDict,
				})
			}
		}
		for _, o := range b.Outputs {
			for _, k := range kinds {
				if matchKind(o.Kinds, k.Name) == "" {
					continue
				}
				c.Outputs[k.Name] = append(c.Outputs[k.Name], OutputConnection{ManifestType: b.Type, OutputName: o.Name})
			}
		}
	}

	for _, conns := range c.Inputs {
		sort.Slice(conns, func(i, j int) bool {
			if conns[i].ManifestType != conns[j].ManifestType {
				return conns[i].ManifestType < conns[j].ManifestType
			}
			return conns[i].PropertyName < conns[j].PropertyName
		})
	}
	for _, conns := range c.Outputs {
		sort.Slice(conns, func(i, j int) bool {
			if conns[i].ManifestType != conns[j].ManifestType {
				return conns[i].ManifestType < conns[j].ManifestType
			}
			return conns[i].OutputName < conns[j].OutputName
		})
	}
	sort.Slice(c.Primitives, func(i, j int) bool {
		if c.Primitives[i].ManifestType != c.Primitives[j].ManifestType {
			return c.Primitives[i].ManifestType < c.Primitives[j].ManifestType
		}
		return c.Primitives[i].PropertyName < c.Primitives[j].PropertyName
	})
	return c
}

func matchKind(set kind.Set, name string) string {
	switch {
	case set.Has(name):
		return "kind"
	case set.IsWildcard():
		return "wildcard"
	}
	return ""
}
