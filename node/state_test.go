package node

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionState_String(t *testing.T) {
	assert.Equal(t, "unregistered", Unregistered.String())
	assert.Equal(t, "awaiting-node-id", AwaitingNodeID.String())
	assert.Equal(t, "awaiting-address", AwaitingAddress.String())
	assert.Equal(t, "operational", Operational.String())
	assert.Equal(t, "unknown", SessionState(99).String())
}

func TestStateMgr_WaitState(t *testing.T) {
	sm := newStateMgr(testLogger())

	require.NoError(t, sm.waitState(context.Background(), Unregistered))

	done := make(chan error, 1)
	go func() {
		done <- sm.waitState(context.Background(), Operational)
	}()

	time.Sleep(20 * time.Millisecond)
	sm.to(AwaitingNodeID)
	sm.to(Operational)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waitState did not return")
	}
}

func TestStateMgr_WaitStateContextDone(t *testing.T) {
	sm := newStateMgr(testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := sm.waitState(ctx, Operational)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStateMgr_SameStateIsNoop(t *testing.T) {
	sm := newStateMgr(testLogger())

	calls := 0
	sm.addHandler(func(_, _ SessionState) { calls++ })

	sm.to(AwaitingNodeID)
	sm.to(AwaitingNodeID)
	assert.Equal(t, 1, calls)
}

func TestAtomicOpState(t *testing.T) {
	var st atomicOpState
	assert.Equal(t, "closed", st.String())

	assert.True(t, st.toOpening())
	assert.False(t, st.toOpening())
	assert.True(t, st.toOpened())
	assert.True(t, st.isOpened())
	assert.Equal(t, "opened", st.String())

	assert.True(t, st.toClosing())
	assert.False(t, st.toClosing())
	st.set(closedState)
	assert.True(t, st.toOpening())
}
