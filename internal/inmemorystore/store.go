// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package inmemorystore

import (
	"context"
	"sync"

	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/node"
	"github.com/specialistvlad/blockflow/internal/nodestore"
)

// Store is an in-memory implementation of nodestore.Store using sync.Map
// for fine-grained concurrent access without global lock contention.
//
// The store maintains independent sync.Maps:
//   - states: step name to node.Status
//   - outputs: step name to []manifest.Outputs
//   - errors: step name to error
//   - done: step name to a *completion
type Store struct {
	states  sync.Map
	outputs sync.Map
	errors  sync.Map
	done    sync.Map
}

type completion struct {
	once   sync.Once
	closed chan struct{}
}

// New creates a new, empty in-memory state store.
func New() *Store {
	return &Store{}
}

var _ nodestore.Store = (*Store)(nil)

// SetStatus updates the execution status of a step.
func (s *Store) SetStatus(ctx context.Context, step string, status node.Status) error {
	s.states.Store(step, status)
	return nil
}

// GetStatus retrieves the execution status of a step.
// If a status has not been set, it returns StatusPending.
func (s *Store) GetStatus(ctx context.Context, step string) (node.Status, error) {
	status, ok := s.states.Load(step)
	if !ok {
		return node.StatusPending, nil
	}
	return status.(node.Status), nil
}

// SetOutputs records the outputs of a step and closes its Done channel.
func (s *Store) SetOutputs(ctx context.Context, step string, outputs []manifest.Outputs) error {
	if !s.complete(step) {
		return &nodestore.AlreadyCompletedError{Step: step}
	}
	s.outputs.Store(step, outputs)
	s.states.Store(step, node.StatusDone)
	s.signal(step)
	return nil
}

// GetOutputs retrieves the recorded outputs of a completed step.
func (s *Store) GetOutputs(ctx context.Context, step string) ([]manifest.Outputs, error) {
	outputs, ok := s.outputs.Load(step)
	if !ok {
		return nil, nil
	}
	return outputs.([]manifest.Outputs), nil
}

// SetError records the failure of a step and closes its Done channel.
func (s *Store) SetError(ctx context.Context, step string, stepErr error) error {
	if !s.complete(step) {
		return &nodestore.AlreadyCompletedError{Step: step}
	}
	s.errors.Store(step, stepErr)
	s.states.Store(step, node.StatusFailed)
	s.signal(step)
	return nil
}

// GetError retrieves the recorded error of a failed step.
func (s *Store) GetError(ctx context.Context, step string) (error, error) {
	err, ok := s.errors.Load(step)
	if !ok {
		return nil, nil
	}
	return err.(error), nil
}

// Done returns the completion channel of a step.
func (s *Store) Done(step string) <-chan struct{} {
	return s.completion(step).closed
}

func (s *Store) completion(step string) *completion {
	c, _ := s.done.LoadOrStore(step, &completion{closed: make(chan struct{})})
	return c.(*completion)
}

// complete claims the single completion write for step.
func (s *Store) complete(step string) bool {
	claimed := false
	s.completion(step).once.Do(func() { claimed = true })
	return claimed
}

func (s *Store) signal(step string) {
	close(s.completion(step).closed)
}
