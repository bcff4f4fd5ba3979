package node

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	n := New("detect", 2)
	assert.Equal(t, "detect", n.Name)
	assert.Equal(t, int32(2), n.DepCount())
	assert.Equal(t, StatusPending, n.Status())

	assert.Equal(t, int32(1), n.DecrementDepCount())
	assert.Equal(t, int32(0), n.DecrementDepCount())
}

func TestFinish_OnlyFirstCallWins(t *testing.T) {
	n := New("a", 0)
	first := errors.New("boom")

	require.True(t, n.Finish(StatusFailed, first))
	assert.False(t, n.Skip(errors.New("later")))
	assert.False(t, n.Finish(StatusDone, nil))

	assert.Equal(t, StatusFailed, n.Status())
	assert.Same(t, first, n.Error)
}

func TestSkip_Concurrent(t *testing.T) {
	n := New("a", 0)
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n.Skip(errors.New("skipped")) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, StatusSkipped, n.Status())
}

func TestStatus_String(t *testing.T) {
	tests := map[Status]string{
		StatusPending: "pending",
		StatusRunning: "running",
		StatusDone:    "done",
		StatusFailed:  "failed",
		StatusSkipped: "skipped",
		Status(42):    "unknown",
	}
	for s, want := range tests {
		assert.Equal(t, want, s.String())
	}
	assert.True(t, StatusSkipped.Terminal())
	assert.False(t, StatusRunning.Terminal())
}
