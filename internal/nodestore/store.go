// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package nodestore defines the interface for storing and retrieving the
// mutable execution state of steps during one workflow run.
//
// The store keeps execution state (status, outputs, errors) apart from the
// immutable compiled graph. It is created fresh for every run and discarded
// when the run ends.
//
// Each step completes exactly once: either SetOutputs or SetError is the
// single completion write for its key, after which Done(step) is closed.
// Readers only look at keys whose Done channel is closed, so no other
// coordination between writers and readers is needed.
package nodestore

import (
	"context"
	"fmt"

	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/node"
)

// AlreadyCompletedError is returned by a second completion write for a step.
type AlreadyCompletedError struct {
	Step string
}

func (e *AlreadyCompletedError) Error() string {
	return fmt.Sprintf("step '%s' has already completed", e.Step)
}

// Store manages the execution state of steps during a run.
//
// Implementations MUST be safe for concurrent use.
type Store interface {
	// SetStatus updates the lifecycle status of a step.
	SetStatus(ctx context.Context, step string, status node.Status) error

	// GetStatus returns the status of a step, StatusPending if none was set.
	GetStatus(ctx context.Context, step string) (node.Status, error)

	// SetOutputs records the per-batch-element outputs of a step and
	// completes it. Elements may hold manifest.NoOutput values.
	SetOutputs(ctx context.Context, step string, outputs []manifest.Outputs) error

	// GetOutputs returns the recorded outputs, nil if the step has not
	// completed successfully.
	GetOutputs(ctx context.Context, step string) ([]manifest.Outputs, error)

	// SetError records the failure of a step and completes it.
	SetError(ctx context.Context, step string, stepErr error) error

	// GetError returns the recorded failure, nil if there is none.
	GetError(ctx context.Context, step string) (error, error)

	// Done returns a channel closed once the step has completed.
	Done(step string) <-chan struct{}
}
