package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/blockflow/internal/inmemorystore"
	"github.com/specialistvlad/blockflow/internal/node"
	"github.com/specialistvlad/blockflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusRejectingStore fails every status write.
type statusRejectingStore struct {
	*inmemorystore.Store
}

func (statusRejectingStore) SetStatus(context.Context, string, node.Status) error {
	return errors.New("store is read-only")
}

func TestRecordFailure_LogsSecondCompletion(t *testing.T) {
	ctx, logs := testutil.NewLoggedContext()
	store := inmemorystore.New()
	require.NoError(t, store.SetOutputs(ctx, "detect", nil))

	r := &run{store: store}
	r.recordFailure(ctx, "detect", errors.New("model exploded"))

	assert.Contains(t, logs.String(), "Failed to record step failure.")
	assert.Contains(t, logs.String(), "has already completed")
	got, err := store.GetError(ctx, "detect")
	require.NoError(t, err)
	assert.Nil(t, got, "the first completion write stands")
}

func TestRecordStatus_LogsRejectedWrite(t *testing.T) {
	ctx, logs := testutil.NewLoggedContext()
	r := &run{store: statusRejectingStore{inmemorystore.New()}}

	r.recordStatus(ctx, "detect", node.StatusRunning)

	assert.Contains(t, logs.String(), "Failed to record step status.")
	assert.Contains(t, logs.String(), "store is read-only")
}
