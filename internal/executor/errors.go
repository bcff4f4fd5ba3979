// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package executor

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/blockflow/internal/ctyconv"
)

// InputValidationError is returned before any step runs when a runtime
// parameter is missing or does not carry the declared kind.
type InputValidationError struct {
	Input  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("input '%s': %s", e.Input, e.Reason)
}

// BatchSizeMismatchError is returned when batched inputs disagree on the
// number of elements.
type BatchSizeMismatchError struct {
	Sizes map[string]int
}

func (e *BatchSizeMismatchError) Error() string {
	parts := make([]string, 0, len(e.Sizes))
	for _, name := range ctyconv.SortedKeys(e.Sizes) {
		parts = append(parts, fmt.Sprintf("%s=%d", name, e.Sizes[name]))
	}
	return "batched inputs have different sizes: " + strings.Join(parts, ", ")
}

// StepExecutionError is the failure of a step whose error policy is fail.
type StepExecutionError struct {
	Step      string
	BlockType string
	Cause     error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step '%s' (%s) failed: %v", e.Step, e.BlockType, e.Cause)
}

func (e *StepExecutionError) Unwrap() error {
	return e.Cause
}
