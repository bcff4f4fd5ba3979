// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package node holds the run-scoped scheduling state of a single workflow
// step: its unmet dependency counter, its lifecycle status and its terminal
// error.
package node

import (
	"sync"
	"sync/atomic"
)

// Status represents the execution state of a node in the graph.
type Status int32

const (
	// StatusPending indicates the node is waiting for its dependencies to complete.
	StatusPending Status = iota
	// StatusRunning indicates the node is currently being executed by a worker.
	StatusRunning
	// StatusDone indicates the node has completed execution successfully.
	StatusDone
	// StatusFailed indicates the node has failed execution.
	StatusFailed
	// StatusSkipped indicates the node never ran, because an upstream node
	// failed or the run was cancelled.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed || s == StatusSkipped
}

// Node is a single step vertex during one run.
type Node struct {
	// Name is the step name from the workflow definition.
	Name string
	// Dependents are the nodes unlocked when this one completes.
	Dependents []*Node

	// Error stores any error that occurred during the node's execution, or
	// the reason it was skipped.
	Error error

	// depCount is an atomic counter for unmet dependencies, used by the scheduler.
	depCount atomic.Int32
	// state is the node's current execution state, managed atomically.
	state atomic.Int32
	// finishOnce ensures a node reaches a terminal state exactly once.
	finishOnce sync.Once
}

// New creates a pending node waiting on deps dependencies.
func New(name string, deps int) *Node {
	n := &Node{Name: name}
	n.depCount.Store(int32(deps))
	return n
}

// DepCount atomically returns the current number of unmet dependencies.
func (n *Node) DepCount() int32 {
	return n.depCount.Load()
}

// DecrementDepCount atomically decrements the dependency counter and returns the new value.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}

// SetStatus atomically sets the node's execution state.
func (n *Node) SetStatus(s Status) {
	n.state.Store(int32(s))
}

// Status atomically retrieves the node's execution state.
func (n *Node) Status() Status {
	return Status(n.state.Load())
}

// Finish moves the node to a terminal status and records err. Only the first
// call has an effect; it reports whether this call was the one that did.
func (n *Node) Finish(s Status, err error) bool {
	var first bool
	n.finishOnce.Do(func() {
		n.Error = err
		n.SetStatus(s)
		first = true
	})
	return first
}

// Skip marks the node as skipped with the given reason. It returns true if
// the node had not already reached a terminal state.
func (n *Node) Skip(reason error) bool {
	return n.Finish(StatusSkipped, reason)
}
