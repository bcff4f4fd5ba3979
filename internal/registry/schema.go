// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"github.com/specialistvlad/blockflow/internal/expr"
	"github.com/specialistvlad/blockflow/internal/manifest"
)

// DynamicBlockDefinitionSchema returns a JSON Schema describing the dynamic
// block document accepted by model.ParseDynamicBlocks. Tooling uses it to
// build definitions without reading the decoder.
func DynamicBlockDefinitionSchema() map[string]any {
	str := map[string]any{"type": "string"}
	kinds := map[string]any{"type": "array", "items": str}

	input := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": str,
			"accepts": map[string]any{
				"type": "string",
				"enum": []any{string(manifest.AcceptsLiteral), string(manifest.AcceptsSelector), string(manifest.AcceptsEither)},
				"description": "Unset means either when kind is declared, literal otherwise. " +
					"With neither accepts nor kind the input takes selectors of any kind as well as literals.",
			},
			"kind": kinds,
			"container": map[string]any{
				"type": "string",
				"enum": []any{string(manifest.ContainerScalar), string(manifest.ContainerList), string(manifest.ContainerDict)},
			},
			"value_type": map[string]any{
				"type":        "string",
				"description": "Literal type annotation such as number, string or list(string). Unset means any.",
			},
			"is_optional":   map[string]any{"type": "boolean"},
			"default_value": map[string]any{"description": "Makes the input optional."},
			"batch":         map[string]any{"type": "boolean", "description": "Receives one value per batch element. Requires accepts_batch_input."},
		},
		"additionalProperties": false,
	}

	output := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": str,
			"kind":        kinds,
		},
		"additionalProperties": false,
	}

	declaredKind := map[string]any{
		"type":     "object",
		"required": []any{"name"},
		"properties": map[string]any{
			"name":        str,
			"description": str,
		},
	}

	nodeTypes := make([]any, 0)
	for _, t := range expr.Describe().NodeTypes {
		nodeTypes = append(nodeTypes, t)
	}
	expression := map[string]any{
		"oneOf": []any{
			map[string]any{"type": "string", "description": "HCL expression over the declared inputs."},
			map[string]any{
				"type":        "object",
				"required":    []any{"type"},
				"properties":  map[string]any{"type": map[string]any{"type": "string", "enum": nodeTypes}},
				"description": "Tagged expression tree.",
			},
			map[string]any{"type": []any{"number", "boolean", "null"}, "description": "Constant."},
		},
	}

	definition := map[string]any{
		"type":     "object",
		"required": []any{"manifest", "body"},
		"properties": map[string]any{
			"manifest": map[string]any{
				"type":     "object",
				"required": []any{"block_type"},
				"properties": map[string]any{
					"block_type":          str,
					"name":                str,
					"description":         str,
					"block_category":      str,
					"license":             str,
					"tags":                map[string]any{"type": "array", "items": str},
					"accepts_batch_input": map[string]any{"type": "boolean"},
					"error_policy": map[string]any{
						"type": "string",
						"enum": []any{string(manifest.ErrorPolicyFail), string(manifest.ErrorPolicyTolerate)},
					},
					"inputs":  map[string]any{"type": "object", "additionalProperties": input},
					"outputs": map[string]any{"type": "object", "additionalProperties": output},
					"kinds":   map[string]any{"type": "array", "items": declaredKind},
				},
			},
			"body": map[string]any{
				"type":                 "object",
				"description":          "One expression per declared output, optionally nested under outputs.",
				"additionalProperties": expression,
			},
		},
	}

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"title":       "DynamicBlockDefinition",
		"description": "A block declared as data: manifest fields plus one expression per output.",
		"oneOf": []any{
			map[string]any{"$ref": "#/$defs/definition"},
			map[string]any{"type": "array", "items": map[string]any{"$ref": "#/$defs/definition"}},
			map[string]any{
				"type":     "object",
				"required": []any{"dynamic_blocks_definitions"},
				"properties": map[string]any{
					"dynamic_blocks_definitions": map[string]any{"type": "array", "items": map[string]any{"$ref": "#/$defs/definition"}},
				},
			},
		},
		"$defs": map[string]any{"definition": definition},
	}
}
