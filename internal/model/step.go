// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Step structure, one configured invocation of a block.
//
// Params keeps the raw values from the document. Whether a value is a literal
// or a selector is only decided by the compiler, which knows the block's
// manifest.
package model

// Step is the format-agnostic representation of a workflow step.
type Step struct {
	Type          string
	Name          string
	Params        map[string]any
	FSInformation *FSInfo
}
