// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/zishang520/engine.io/v2/types"
)

// Event names of the worker protocol.
const (
	InvokeEvent = "invoke_step"
	ResultEvent = "step_result"
)

// ErrClosed is returned for invocations still pending when the backend is
// closed, and for every invocation after that.
var ErrClosed = errors.New("remote backend closed")

// Conn is the part of a socket.io socket the backend needs.
type Conn interface {
	Emit(ev string, args ...any) error
	On(ev types.EventName, listeners ...types.Listener) error
}

// RemoteError is an error reported by the worker for one invocation.
type RemoteError struct {
	BlockType string
	Message   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote worker failed to run '%s': %s", e.BlockType, e.Message)
}

type result struct {
	outputs manifest.Outputs
	err     error
}

// Backend matches step_result answers to pending invocations.
type Backend struct {
	conn  Conn
	close func()

	mu      sync.Mutex
	pending map[string]chan result
	closed  bool
}

// New creates a backend on an already connected socket.
func New(conn Conn) (*Backend, error) {
	b := &Backend{
		conn:    conn,
		pending: make(map[string]chan result),
	}
	if err := conn.On(types.EventName(ResultEvent), b.dispatch); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", ResultEvent, err)
	}
	return b, nil
}

// Invoke emits one invocation and waits for its answer or for ctx to end.
func (b *Backend) Invoke(ctx context.Context, blockType string, params manifest.Params) (manifest.Outputs, error) {
	id := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("request_id", id, "block_type", blockType)

	ch := make(chan result, 1)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	b.pending[id] = ch
	b.mu.Unlock()
	defer b.forget(id)

	payload := map[string]any{
		"request_id": id,
		"block_type": blockType,
		"parameters": map[string]any(params),
	}
	logger.Debug("Emitting remote invocation.", "event", InvokeEvent)
	if err := b.conn.Emit(InvokeEvent, payload); err != nil {
		return nil, fmt.Errorf("failed to emit %s: %w", InvokeEvent, err)
	}

	select {
	case res := <-ch:
		if res.err != nil {
			var remoteErr *RemoteError
			if errors.As(res.err, &remoteErr) {
				remoteErr.BlockType = blockType
			}
			return nil, res.err
		}
		logger.Debug("Received remote result.")
		return res.outputs, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s: %w", ResultEvent, ctx.Err())
	}
}

// Pending returns the number of invocations waiting for an answer.
func (b *Backend) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Close fails every pending invocation with ErrClosed and disconnects the
// socket if the backend dialed it.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	pending := b.pending
	b.pending = make(map[string]chan result)
	b.mu.Unlock()

	for _, ch := range pending {
		ch <- result{err: ErrClosed}
	}
	if b.close != nil {
		b.close()
	}
	return nil
}

func (b *Backend) forget(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

// dispatch handles one step_result event.
func (b *Backend) dispatch(args ...any) {
	if len(args) == 0 {
		return
	}
	msg, ok := args[0].(map[string]any)
	if !ok {
		return
	}
	id, _ := msg["request_id"].(string)

	b.mu.Lock()
	ch, ok := b.pending[id]
	delete(b.pending, id)
	b.mu.Unlock()
	if !ok {
		return
	}

	if text, _ := msg["error"].(string); text != "" {
		ch <- result{err: &RemoteError{Message: text}}
		return
	}
	outputs, _ := msg["outputs"].(map[string]any)
	if outputs == nil {
		outputs = map[string]any{}
	}
	ch <- result{outputs: manifest.Outputs(outputs)}
}
