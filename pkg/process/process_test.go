package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestVirtualBackendSpawnAndWait tests a normally exiting entry point.
func TestVirtualBackendSpawnAndWait(t *testing.T) {
	b := NewVirtualBackend()

	proc, err := b.Spawn(func(arg interface{}) int {
		return arg.(int)
	}, 7)
	require.NoError(t, err)
	assert.Greater(t, proc.PID(), uint32(1), "virtual pids start above the bootstrap pid")

	st := proc.Wait()
	assert.Equal(t, 7, st.Code)
	assert.False(t, st.Signaled)
	assert.NoError(t, st.Err)
}

// TestVirtualBackendNilEntry tests the spawn failure path.
func TestVirtualBackendNilEntry(t *testing.T) {
	b := NewVirtualBackend()

	_, err := b.Spawn(nil, nil)
	assert.ErrorIs(t, err, ErrNilEntry)
}

// TestVirtualBackendUniquePIDs tests that spawns never share a pid.
func TestVirtualBackendUniquePIDs(t *testing.T) {
	b := NewVirtualBackend()
	seen := make(map[uint32]bool)

	for i := 0; i < 50; i++ {
		proc, err := b.Spawn(func(interface{}) int { return 0 }, nil)
		require.NoError(t, err)
		assert.False(t, seen[proc.PID()], "pid %d reused", proc.PID())
		seen[proc.PID()] = true
	}
}

// TestVirtualBackendKill tests that a terminating signal wins over a
// still-running entry.
func TestVirtualBackendKill(t *testing.T) {
	b := NewVirtualBackend()

	block := make(chan struct{})
	proc, err := b.Spawn(func(interface{}) int {
		<-block
		return 0
	}, nil)
	require.NoError(t, err)

	require.NoError(t, proc.Kill())
	st := proc.Wait()
	close(block)

	assert.True(t, st.Signaled)
	assert.Equal(t, SignalKill, st.Signal)
	assert.Equal(t, ExitFailure, st.Code)
}

// TestVirtualBackendFirstTerminalEventWins tests that a signal after normal
// exit is discarded.
func TestVirtualBackendFirstTerminalEventWins(t *testing.T) {
	b := NewVirtualBackend()

	proc, err := b.Spawn(func(interface{}) int { return 3 }, nil)
	require.NoError(t, err)

	st := proc.Wait()
	require.NoError(t, proc.Signal(SignalTerminate))

	again := proc.Wait()
	assert.Equal(t, st, again)
	assert.Equal(t, 3, again.Code)
	assert.False(t, again.Signaled)
}

// TestVirtualBackendNonTerminatingSignal tests that delivery of a
// non-terminating signal does not end the process.
func TestVirtualBackendNonTerminatingSignal(t *testing.T) {
	b := NewVirtualBackend()

	done := make(chan struct{})
	proc, err := b.Spawn(func(interface{}) int {
		<-done
		return 0
	}, nil)
	require.NoError(t, err)

	require.NoError(t, proc.Signal(SignalUser1))
	require.NoError(t, proc.Signal(SignalChild))

	close(done)
	st := proc.Wait()
	assert.Equal(t, 0, st.Code)
	assert.False(t, st.Signaled)
}

// TestSignalString tests signal names.
func TestSignalString(t *testing.T) {
	tests := []struct {
		sig  Signal
		want string
	}{
		{SignalHangup, "SIGHUP"},
		{SignalInterrupt, "SIGINT"},
		{SignalKill, "SIGKILL"},
		{SignalUser1, "SIGUSR1"},
		{SignalTerminate, "SIGTERM"},
		{SignalChild, "SIGCHLD"},
		{SignalContinue, "SIGCONT"},
		{SignalStop, "SIGSTOP"},
		{Signal(99), "signal(99)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.sig.String())
	}
}

// TestStateTerminal tests terminal-state classification.
func TestStateTerminal(t *testing.T) {
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateExited.Terminal())
	assert.True(t, StateSignaled.Terminal())
	assert.True(t, StateKilled.Terminal())
}

// TestProcessInfoNoDowngrade tests that a terminal state never changes.
func TestProcessInfoNoDowngrade(t *testing.T) {
	info := &ProcessInfo{PID: 5, StartTime: time.Now(), state: StateRunning}

	info.markKilled(SignalKill)
	assert.Equal(t, StateKilled, info.State())

	info.markExited(0)
	assert.Equal(t, StateKilled, info.State())

	info.markSignaled(SignalTerminate)
	assert.Equal(t, StateKilled, info.State())
	assert.Equal(t, SignalKill, info.TermSignal())
}
