// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package manifest

import (
	"fmt"
	"strings"
)

// InvalidManifestError collects every problem found in a block definition.
type InvalidManifestError struct {
	Type     string
	Problems []string
}

func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid manifest for block '%s':\n- %s", e.Type, strings.Join(e.Problems, "\n- "))
}

// DuplicateBlockTypeError is returned when two blocks claim one identifier.
type DuplicateBlockTypeError struct {
	Type string
}

func (e *DuplicateBlockTypeError) Error() string {
	return fmt.Sprintf("block type '%s' is declared more than once", e.Type)
}
