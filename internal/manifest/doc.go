// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package manifest defines the contract every workflow block satisfies and
// extracts the normalized, immutable Manifest the rest of the engine works
// with.
//
// A block declares itself through a Definition: its identifier, metadata,
// parameters and outputs. Extract validates that declaration against the kind
// registry and produces a Manifest. Compiled-in blocks and dynamic blocks go
// through exactly the same path, so nothing downstream can tell them apart.
package manifest
