package remote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zishang520/engine.io/v2/types"
)

// fakeConn is an in-memory socket. reply decides the answer to every
// emitted invocation; a nil answer means the worker stays silent.
type fakeConn struct {
	types.EventEmitter

	mu      sync.Mutex
	emitted []map[string]any
	reply   func(req map[string]any) map[string]any
	emitErr error
}

func newFakeConn(reply func(req map[string]any) map[string]any) *fakeConn {
	return &fakeConn{EventEmitter: types.NewEventEmitter(), reply: reply}
}

func (c *fakeConn) Emit(ev string, args ...any) error {
	if c.emitErr != nil {
		return c.emitErr
	}
	req := args[0].(map[string]any)
	c.mu.Lock()
	c.emitted = append(c.emitted, req)
	c.mu.Unlock()
	if ans := c.reply(req); ans != nil {
		go c.EventEmitter.Emit(types.EventName(ResultEvent), ans)
	}
	return nil
}

func TestInvoke_Success(t *testing.T) {
	conn := newFakeConn(func(req map[string]any) map[string]any {
		params := req["parameters"].(map[string]any)
		return map[string]any{
			"request_id": req["request_id"],
			"outputs":    map[string]any{"label": "remote:" + params["name"].(string)},
		}
	})
	b, err := New(conn)
	require.NoError(t, err)

	out, err := b.Invoke(context.Background(), "test/classify@v1", manifest.Params{"name": "cat"})
	require.NoError(t, err)
	assert.Equal(t, manifest.Outputs{"label": "remote:cat"}, out)

	require.Len(t, conn.emitted, 1)
	assert.Equal(t, "test/classify@v1", conn.emitted[0]["block_type"])
	assert.NotEmpty(t, conn.emitted[0]["request_id"])
	assert.Zero(t, b.Pending())
}

func TestInvoke_RemoteError(t *testing.T) {
	conn := newFakeConn(func(req map[string]any) map[string]any {
		return map[string]any{"request_id": req["request_id"], "error": "out of memory"}
	})
	b, err := New(conn)
	require.NoError(t, err)

	_, err = b.Invoke(context.Background(), "test/classify@v1", nil)
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "test/classify@v1", remoteErr.BlockType)
	assert.EqualError(t, err, "remote worker failed to run 'test/classify@v1': out of memory")
}

func TestInvoke_ContextDeadline(t *testing.T) {
	b, err := New(newFakeConn(func(map[string]any) map[string]any { return nil }))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = b.Invoke(ctx, "test/slow@v1", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, b.Pending(), "an abandoned invocation is forgotten")
}

func TestInvoke_EmitError(t *testing.T) {
	conn := newFakeConn(nil)
	conn.emitErr = errors.New("socket closed")
	b, err := New(conn)
	require.NoError(t, err)

	_, err = b.Invoke(context.Background(), "test/any@v1", nil)
	assert.ErrorContains(t, err, "socket closed")
	assert.Zero(t, b.Pending())
}

func TestDispatch_IgnoresUnknownAndMalformedAnswers(t *testing.T) {
	var (
		mu  sync.Mutex
		ids []string
	)
	conn := newFakeConn(func(req map[string]any) map[string]any {
		mu.Lock()
		ids = append(ids, req["request_id"].(string))
		mu.Unlock()
		return nil
	})
	b, err := New(conn)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := b.Invoke(context.Background(), "test/any@v1", nil)
		done <- err
	}()
	require.Eventually(t, func() bool { return b.Pending() == 1 }, time.Second, time.Millisecond)

	b.dispatch()
	b.dispatch("not a map")
	b.dispatch(map[string]any{"request_id": "someone-else", "outputs": map[string]any{}})
	assert.Equal(t, 1, b.Pending())

	mu.Lock()
	id := ids[0]
	mu.Unlock()
	b.dispatch(map[string]any{"request_id": id})
	require.NoError(t, <-done)
}

func TestClose_FailsPendingInvocations(t *testing.T) {
	b, err := New(newFakeConn(func(map[string]any) map[string]any { return nil }))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := b.Invoke(context.Background(), "test/any@v1", nil)
		done <- err
	}()
	require.Eventually(t, func() bool { return b.Pending() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, b.Close())
	assert.ErrorIs(t, <-done, ErrClosed)

	_, err = b.Invoke(context.Background(), "test/any@v1", nil)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, b.Close())
}

func TestDial_RejectsBadURL(t *testing.T) {
	_, err := Dial(context.Background(), DialOptions{URL: "localhost"})
	assert.ErrorContains(t, err, "must include a scheme and a host")
}
