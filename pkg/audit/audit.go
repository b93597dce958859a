package audit

import (
	"sync"

	"go.uber.org/zap"
)

// Capacity is the fixed number of records the ring buffer retains. Once more
// than Capacity records have been appended, each append evicts the oldest.
const Capacity = 128

// Type classifies an audit record.
type Type uint8

const (
	// TypeSyscall records a process-lifecycle action (create, kill).
	TypeSyscall Type = iota
	// TypeSecurity records a denied privileged operation.
	TypeSecurity
	// TypeLogin records an authentication event.
	TypeLogin
	// TypeUserDefined records a subsystem-defined event such as a cgroup mutation.
	TypeUserDefined

	typeMax
)

// String returns the name of the audit type.
func (t Type) String() string {
	switch t {
	case TypeSyscall:
		return "SYSCALL"
	case TypeSecurity:
		return "SECURITY"
	case TypeLogin:
		return "LOGIN"
	case TypeUserDefined:
		return "USER_DEFINED"
	}
	return "UNKNOWN"
}

// Record is a single immutable audit entry. Records are created only by
// Append and are never mutated afterwards.
type Record struct {
	// Type classifies the event.
	Type Type
	// Message describes the event.
	Message string
	// UID is the user identity the event is attributed to. Cgroup records
	// carry the cgroup id here instead.
	UID uint32
	// PID is the process the event is attributed to, or 0.
	PID uint32
	// Timestamp is the strictly increasing logical clock value assigned at
	// append time. The first record of a log has timestamp 1.
	Timestamp uint64
}

// Log is a bounded append-only record store. The zero value is not usable;
// construct with New.
type Log struct {
	// mu serializes append and flush: the ring index and the logical clock
	// are shared mutable state with no natural atomicity.
	mu      sync.Mutex
	records [Capacity]Record
	seq     uint64
	logger  *zap.Logger
}

// New creates an empty audit log writing best-effort diagnostics to logger.
// A nil logger disables diagnostic output.
func New(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

// Reset discards all records and restarts the logical clock. It is idempotent
// and intended for process-wide startup.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = [Capacity]Record{}
	l.seq = 0
	l.logger.Info("audit: initialized")
}

// Append stores a new record, evicting the oldest one once the buffer has
// wrapped, and returns the record's logical timestamp. Append never fails.
// The message must be static or owned by the caller; the log does not copy it.
func (l *Log) Append(typ Type, message string, uid, pid uint32) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := Record{
		Type:      typ,
		Message:   message,
		UID:       uid,
		PID:       pid,
		Timestamp: l.seq + 1,
	}
	l.records[l.seq%Capacity] = rec
	l.seq++

	// Best-effort diagnostic write; no error surfaces to the caller.
	l.logger.Info("audit",
		zap.Stringer("type", typ),
		zap.Uint32("uid", uid),
		zap.Uint32("pid", pid),
		zap.Uint64("ts", rec.Timestamp),
		zap.String("msg", message),
	)
	return rec.Timestamp
}

// Len reports how many records a Flush would currently return.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seq < Capacity {
		return int(l.seq)
	}
	return Capacity
}

// Flush returns up to Capacity retained records in append order, oldest
// first, without mutating the log. Repeated calls return stable results until
// the next Append.
func (l *Log) Flush() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seq <= Capacity {
		out := make([]Record, l.seq)
		copy(out, l.records[:l.seq])
		return out
	}

	// Wrapped: the slot holding the oldest record is the next write index.
	out := make([]Record, 0, Capacity)
	start := l.seq % Capacity
	for i := uint64(0); i < Capacity; i++ {
		out = append(out, l.records[(start+i)%Capacity])
	}
	return out
}
