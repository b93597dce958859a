package audit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// TestAppendAssignsIncreasingTimestamps tests the logical clock.
func TestAppendAssignsIncreasingTimestamps(t *testing.T) {
	l := New(zaptest.NewLogger(t))

	ts1 := l.Append(TypeSyscall, "first", 0, 1)
	ts2 := l.Append(TypeSecurity, "second", 0, 1)
	ts3 := l.Append(TypeLogin, "third", 1000, 42)

	assert.Equal(t, uint64(1), ts1)
	assert.Equal(t, uint64(2), ts2)
	assert.Equal(t, uint64(3), ts3)
}

// TestFlushBeforeWrap tests flushing a partially filled buffer.
func TestFlushBeforeWrap(t *testing.T) {
	l := New(zaptest.NewLogger(t))

	l.Append(TypeSyscall, "a", 0, 1)
	l.Append(TypeUserDefined, "b", 2, 3)

	recs := l.Flush()
	require.Len(t, recs, 2)

	assert.Equal(t, "a", recs[0].Message)
	assert.Equal(t, TypeSyscall, recs[0].Type)
	assert.Equal(t, uint64(1), recs[0].Timestamp)

	assert.Equal(t, "b", recs[1].Message)
	assert.Equal(t, uint32(2), recs[1].UID)
	assert.Equal(t, uint32(3), recs[1].PID)
}

// TestFlushAfterWrap tests that the ring evicts oldest-first and flush
// returns the surviving window in order.
func TestFlushAfterWrap(t *testing.T) {
	l := New(zaptest.NewLogger(t))

	const k = 10
	for i := 0; i < Capacity+k; i++ {
		l.Append(TypeSyscall, "event", 0, uint32(i))
	}

	recs := l.Flush()
	require.Len(t, recs, Capacity)

	// The oldest surviving record is the (k+1)-th appended.
	assert.Equal(t, uint64(k+1), recs[0].Timestamp)
	assert.Equal(t, uint64(Capacity+k), recs[Capacity-1].Timestamp)

	for i := 1; i < len(recs); i++ {
		assert.Equal(t, recs[i-1].Timestamp+1, recs[i].Timestamp,
			"timestamps must increase by one across the wrap")
	}
}

// TestFlushExactlyFull tests the boundary where the buffer is full but has
// not yet overwritten anything.
func TestFlushExactlyFull(t *testing.T) {
	l := New(zaptest.NewLogger(t))

	for i := 0; i < Capacity; i++ {
		l.Append(TypeSyscall, "event", 0, 0)
	}

	recs := l.Flush()
	require.Len(t, recs, Capacity)
	assert.Equal(t, uint64(1), recs[0].Timestamp)
	assert.Equal(t, uint64(Capacity), recs[Capacity-1].Timestamp)
}

// TestFlushIsRestartable tests that flush does not mutate state.
func TestFlushIsRestartable(t *testing.T) {
	l := New(zaptest.NewLogger(t))

	l.Append(TypeSecurity, "denied", 0, 7)

	first := l.Flush()
	second := l.Flush()
	assert.Equal(t, first, second)
}

// TestReset tests that Reset empties the log and restarts the clock.
func TestReset(t *testing.T) {
	l := New(zaptest.NewLogger(t))

	l.Append(TypeSyscall, "before", 0, 1)
	l.Reset()

	assert.Empty(t, l.Flush())
	assert.Equal(t, 0, l.Len())

	ts := l.Append(TypeSyscall, "after", 0, 1)
	assert.Equal(t, uint64(1), ts)
}

// TestLen tests the record count before and after wrapping.
func TestLen(t *testing.T) {
	l := New(zaptest.NewLogger(t))

	assert.Equal(t, 0, l.Len())

	l.Append(TypeSyscall, "a", 0, 1)
	assert.Equal(t, 1, l.Len())

	for i := 0; i < Capacity*2; i++ {
		l.Append(TypeSyscall, "b", 0, 1)
	}
	assert.Equal(t, Capacity, l.Len())
}

// TestConcurrentAppend tests that concurrent writers never lose or duplicate
// a timestamp.
func TestConcurrentAppend(t *testing.T) {
	l := New(zaptest.NewLogger(t))

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				l.Append(TypeSyscall, "concurrent", 0, 1)
				l.Flush()
			}
		}()
	}
	wg.Wait()

	recs := l.Flush()
	require.Len(t, recs, Capacity)

	total := uint64(writers * perWriter)
	assert.Equal(t, total-Capacity+1, recs[0].Timestamp)
	for i := 1; i < len(recs); i++ {
		assert.Equal(t, recs[i-1].Timestamp+1, recs[i].Timestamp)
	}
}

// TestTypeString tests the audit type names.
func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeSyscall, "SYSCALL"},
		{TypeSecurity, "SECURITY"},
		{TypeLogin, "LOGIN"},
		{TypeUserDefined, "USER_DEFINED"},
		{typeMax, "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
}
