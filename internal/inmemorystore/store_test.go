package inmemorystore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/node"
	"github.com/specialistvlad/blockflow/internal/nodestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetStatus(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Get status of a step that doesn't exist yet
	status, err := s.GetStatus(ctx, "detect")
	require.NoError(t, err)
	assert.Equal(t, node.StatusPending, status)

	err = s.SetStatus(ctx, "detect", node.StatusRunning)
	require.NoError(t, err)

	status, err = s.GetStatus(ctx, "detect")
	require.NoError(t, err)
	assert.Equal(t, node.StatusRunning, status)
}

func TestSetAndGetOutputs(t *testing.T) {
	s := New()
	ctx := context.Background()

	output, err := s.GetOutputs(ctx, "detect")
	require.NoError(t, err)
	assert.Nil(t, output)

	expected := []manifest.Outputs{
		{"predictions": 1},
		{"predictions": manifest.NoOutput},
	}
	require.NoError(t, s.SetOutputs(ctx, "detect", expected))

	retrieved, err := s.GetOutputs(ctx, "detect")
	require.NoError(t, err)
	assert.Equal(t, expected, retrieved)

	status, err := s.GetStatus(ctx, "detect")
	require.NoError(t, err)
	assert.Equal(t, node.StatusDone, status)
}

func TestSetAndGetError(t *testing.T) {
	s := New()
	ctx := context.Background()

	retrievedErr, err := s.GetError(ctx, "detect")
	require.NoError(t, err)
	assert.Nil(t, retrievedErr)

	expectedErr := errors.New("a test error occurred")
	require.NoError(t, s.SetError(ctx, "detect", expectedErr))

	retrievedErr, err = s.GetError(ctx, "detect")
	require.NoError(t, err)
	assert.Equal(t, expectedErr, retrievedErr)

	status, err := s.GetStatus(ctx, "detect")
	require.NoError(t, err)
	assert.Equal(t, node.StatusFailed, status)
}

func TestSecondCompletionWriteIsRejected(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SetOutputs(ctx, "a", []manifest.Outputs{{"x": 1}}))

	err := s.SetOutputs(ctx, "a", []manifest.Outputs{{"x": 2}})
	var completed *nodestore.AlreadyCompletedError
	require.ErrorAs(t, err, &completed)
	assert.Equal(t, "a", completed.Step)

	require.ErrorAs(t, s.SetError(ctx, "a", errors.New("late")), &completed)

	out, err := s.GetOutputs(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []manifest.Outputs{{"x": 1}}, out)
	stepErr, err := s.GetError(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, stepErr)
}

func TestDone(t *testing.T) {
	s := New()
	ctx := context.Background()

	done := s.Done("a")
	select {
	case <-done:
		t.Fatal("done closed before completion")
	default:
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = s.SetError(ctx, "a", errors.New("boom"))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done was not closed after completion")
	}

	// A channel requested after completion is already closed.
	select {
	case <-s.Done("a"):
	default:
		t.Fatal("done not closed for a completed step")
	}
}

// TestStore_ConcurrentAccess verifies that the store can be safely accessed by
// multiple goroutines simultaneously without data races or lost writes.
func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	numGoroutines := 100
	var wg sync.WaitGroup

	wg.Add(numGoroutines)

	// Phase 1: Concurrent Writes
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			step := fmt.Sprintf("step_%d", i)
			if i%2 == 0 {
				_ = s.SetOutputs(ctx, step, []manifest.Outputs{{"value": i}})
			} else {
				_ = s.SetError(ctx, step, fmt.Errorf("error for step %d", i))
			}
		}(i)
	}

	wg.Wait()

	// Phase 2: Concurrent Reads / Verification
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			step := fmt.Sprintf("step_%d", i)
			<-s.Done(step)

			if i%2 == 0 {
				output, err := s.GetOutputs(ctx, step)
				assert.NoError(t, err)
				assert.Equal(t, []manifest.Outputs{{"value": i}}, output, "mismatched output for step %d", i)
				return
			}
			stepErr, err := s.GetError(ctx, step)
			assert.NoError(t, err)
			assert.EqualError(t, stepErr, fmt.Sprintf("error for step %d", i), "mismatched error for step %d", i)
		}(i)
	}

	wg.Wait()
}
