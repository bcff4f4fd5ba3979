// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the format-agnostic representation of the two
// documents users hand to the engine: workflow definitions and dynamic block
// definitions.
//
// # Core Concepts
//
//   - Workflow: declared inputs, an unordered set of steps and the outputs to
//     report. Steps reference each other only through selectors
//     ($inputs.name, $steps.name.field, $steps.name.*).
//
//   - Step: one invocation of a block type with raw parameter values. A value
//     is a literal, a selector string, or lists/maps nesting those.
//
//   - DynamicBlockDefinition: a block declared as data: manifest fields plus
//     one expression per output.
//
//   - FSInfo: links a definition back to the file it was loaded from, for
//     error messages.
//
// JSON and YAML documents are decoded into generic maps first and then turned
// into model values by ParseWorkflow and ParseDynamicBlocks. The HCL loader
// builds the same structures directly.
package model
