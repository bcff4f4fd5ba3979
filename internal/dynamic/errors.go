// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package dynamic

import (
	"fmt"
	"strings"
)

// InvalidDynamicBlockError collects every problem found in one definition.
type InvalidDynamicBlockError struct {
	Type     string
	Source   string
	Problems []string
}

func (e *InvalidDynamicBlockError) Error() string {
	return fmt.Sprintf("invalid dynamic block '%s' (%s):\n- %s", e.Type, e.Source, strings.Join(e.Problems, "\n- "))
}
