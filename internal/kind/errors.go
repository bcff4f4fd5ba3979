// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package kind

import "fmt"

// DuplicateKindError is returned when a kind name is registered twice with
// different definitions.
type DuplicateKindError struct {
	Name string
}

func (e *DuplicateKindError) Error() string {
	return fmt.Sprintf("kind '%s' is already registered with a different definition", e.Name)
}

// UnknownKindError is returned when a kind name cannot be resolved.
type UnknownKindError struct {
	Name string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown kind '%s'", e.Name)
}
