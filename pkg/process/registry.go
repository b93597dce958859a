package process

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kernos/pkg/audit"
	"kernos/pkg/capability"
)

// Registry errors.
var (
	// ErrNotPermitted is returned when the acting task lacks the required
	// capability. The denial itself is audited by the capability subsystem.
	ErrNotPermitted = errors.New("operation not permitted")
	// ErrNilHandle is returned for operations on a nil process handle.
	ErrNilHandle = errors.New("nil process handle")
)

// Registry tracks process handles and their lifecycle state. It owns the
// pid-to-handle table and the per-pid Task identities consumed by the
// capability and cgroup subsystems.
type Registry struct {
	backend Backend
	checker *capability.Checker
	audit   *audit.Log
	logger  *zap.Logger

	// mu guards the tables; each handle carries its own lock.
	mu    sync.RWMutex
	procs map[uint32]*ProcessInfo
	tasks map[uint32]*capability.Task
}

// NewRegistry creates a registry spawning through backend and gating
// privileged operations through checker. The bootstrap task is registered
// immediately. A nil logger disables diagnostic output.
func NewRegistry(backend Backend, checker *capability.Checker, auditLog *audit.Log, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	boot := capability.NewBootstrapTask()
	r := &Registry{
		backend: backend,
		checker: checker,
		audit:   auditLog,
		logger:  logger,
		procs:   make(map[uint32]*ProcessInfo),
		tasks:   map[uint32]*capability.Task{boot.PID: boot},
	}
	r.audit.Append(audit.TypeLogin, "bootstrap task registered", boot.UID, boot.PID)
	return r
}

// Task returns the task identity registered for pid, or nil.
func (r *Registry) Task(pid uint32) *capability.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tasks[pid]
}

// Alive reports whether pid belongs to a live, not yet reaped task. The
// cgroup hierarchy uses this for membership validity.
func (r *Registry) Alive(pid uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tasks[pid]
	return ok
}

// Count returns the number of live tasks, the bootstrap task included.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// CreateProcess spawns entry(arg) through the backend and registers the new
// process. On backend failure the error carries the underlying cause and no
// handle is created. The new task inherits parent's uid and starts with an
// empty capability set.
func (r *Registry) CreateProcess(parent *capability.Task, entry EntryFunc, arg interface{}) (*ProcessInfo, error) {
	proc, err := r.backend.Spawn(entry, arg)
	if err != nil {
		return nil, errors.Wrap(err, "spawn failed")
	}

	var uid uint32
	if parent != nil {
		uid = parent.UID
	}

	info := &ProcessInfo{
		PID:       proc.PID(),
		StartTime: time.Now(),
		state:     StateRunning,
		proc:      proc,
	}

	r.mu.Lock()
	r.procs[info.PID] = info
	r.tasks[info.PID] = capability.NewTask(info.PID, uid)
	r.mu.Unlock()

	r.audit.Append(audit.TypeSyscall, "process created", uid, info.PID)
	r.logger.Info("process created",
		zap.Uint32("pid", info.PID),
		zap.Uint32("uid", uid),
	)
	return info, nil
}

// WaitProcess blocks until the process terminates and returns its exit
// code, or ExitFailure for signal termination. The terminal result is
// cached: waiting on an already terminal handle returns the same result
// without touching the backend again. Waiting also reaps the process,
// removing its pid from the live tables.
func (r *Registry) WaitProcess(info *ProcessInfo) (int, error) {
	if info == nil {
		return 0, ErrNilHandle
	}

	// Concurrent waiters block inside Do until the first reap completes.
	info.waitOnce.Do(func() {
		st := info.proc.Wait()

		if st.Err != nil {
			info.mu.Lock()
			info.waitErr = errors.Wrap(st.Err, "wait failed")
			info.mu.Unlock()
			return
		}

		switch {
		case st.Signaled:
			info.markSignaled(st.Signal)
			r.logger.Warn("process terminated by signal",
				zap.Uint32("pid", info.PID),
				zap.Stringer("signal", st.Signal),
			)
			info.mu.Lock()
			info.waitCode = ExitFailure
			info.mu.Unlock()
		default:
			info.markExited(st.Code)
			info.mu.Lock()
			info.waitCode = st.Code
			info.mu.Unlock()
		}

		r.reap(info.PID)
	})

	info.mu.Lock()
	defer info.mu.Unlock()
	if info.waitErr != nil {
		return 0, info.waitErr
	}
	return info.waitCode, nil
}

// reap drops the terminated pid from the live tables. The handle itself
// stays readable for diagnostics.
func (r *Registry) reap(pid uint32) {
	r.mu.Lock()
	delete(r.procs, pid)
	delete(r.tasks, pid)
	r.mu.Unlock()
}

// KillProcess delivers a terminating signal to the process. The registry
// itself checks the KILL capability of the acting task; a denial returns
// ErrNotPermitted after the capability subsystem has audited it. On backend
// failure the handle's status is left untouched. KillProcess does not block;
// observe the terminal state through WaitProcess.
func (r *Registry) KillProcess(actor *capability.Task, info *ProcessInfo, sig Signal) error {
	if info == nil {
		return ErrNilHandle
	}
	if !r.checker.Capable(actor, capability.CapKill) {
		return ErrNotPermitted
	}

	if err := info.proc.Signal(sig); err != nil {
		return errors.Wrap(err, "signal delivery failed")
	}

	info.markKilled(sig)
	r.audit.Append(audit.TypeSyscall, "process killed", actor.UID, info.PID)
	return nil
}

// SendSignal delivers a signal without recording a status change; it is the
// delivery primitive for non-terminating signals.
func (r *Registry) SendSignal(info *ProcessInfo, sig Signal) error {
	if info == nil {
		return ErrNilHandle
	}
	if err := info.proc.Signal(sig); err != nil {
		return errors.Wrap(err, "signal delivery failed")
	}
	return nil
}

// PrintProcessInfo writes a read-only projection of the handle to the
// diagnostic sink.
func (r *Registry) PrintProcessInfo(info *ProcessInfo) {
	if info == nil {
		return
	}

	info.mu.Lock()
	state := info.state
	exitCode := info.exitCode
	sig := info.signal
	info.mu.Unlock()

	fields := []zap.Field{
		zap.Uint32("pid", info.PID),
		zap.Time("start_time", info.StartTime),
		zap.String("state", string(state)),
	}
	switch state {
	case StateExited:
		fields = append(fields, zap.Int("exit_code", exitCode))
	case StateSignaled, StateKilled:
		fields = append(fields, zap.Stringer("signal", sig))
	}
	r.logger.Info("process info", fields...)
}
