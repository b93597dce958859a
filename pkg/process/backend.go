package process

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// EntryFunc is a process entry point. The returned value becomes the
// process's exit code.
type EntryFunc func(arg interface{}) int

// ExitStatus is a backend process's terminal status.
type ExitStatus struct {
	// PID is the process the status belongs to.
	PID uint32
	// Code is the exit code, or ExitFailure for abnormal termination.
	Code int
	// Signal is the terminating signal when Signaled is set.
	Signal Signal
	// Signaled reports termination by signal rather than normal exit.
	Signaled bool
	// Err is set when the backend itself failed to reap the process.
	Err error
}

// BackendProcess is one spawned execution context.
type BackendProcess interface {
	// PID returns the context's process identifier.
	PID() uint32
	// Signal delivers a signal. Delivery is fire-and-forget; it is not
	// guaranteed to be synchronous with the terminal state becoming
	// observable through Wait.
	Signal(sig Signal) error
	// Kill delivers SIGKILL.
	Kill() error
	// Wait blocks until the context terminates and returns its status.
	Wait() ExitStatus
}

// Backend creates execution contexts. The mechanism (goroutine, fork-style
// duplication, or a privileged syscall interface) is the backend's concern;
// the registry relies only on this contract.
type Backend interface {
	Spawn(entry EntryFunc, arg interface{}) (BackendProcess, error)
}

// ErrNilEntry is returned by backends that need an entry function to run.
var ErrNilEntry = errors.New("nil entry function")

// firstVirtualPID is where virtual pid allocation starts; pid 1 is reserved
// for the bootstrap task.
const firstVirtualPID = 1

// VirtualBackend satisfies the spawn contract by duplicating the caller's
// execution context into a fresh goroutine that runs entry(arg). Signals are
// simulated: the first terminal event, whether entry returning or a
// terminating signal, decides the exit status.
type VirtualBackend struct {
	nextPID uint32
}

// NewVirtualBackend creates a virtual spawn backend.
func NewVirtualBackend() *VirtualBackend {
	return &VirtualBackend{nextPID: firstVirtualPID}
}

// Spawn starts entry(arg) in a new goroutine and returns its handle.
func (b *VirtualBackend) Spawn(entry EntryFunc, arg interface{}) (BackendProcess, error) {
	if entry == nil {
		return nil, ErrNilEntry
	}

	vp := &virtualProcess{
		pid:  atomic.AddUint32(&b.nextPID, 1),
		done: make(chan struct{}),
	}

	go func() {
		code := entry(arg)
		vp.settle(code, 0, false)
	}()

	return vp, nil
}

// virtualProcess is a goroutine-backed execution context. Exactly one
// settle call wins; later terminal events are discarded.
type virtualProcess struct {
	pid     uint32
	settled uint32

	// Written once by the winning settle before done is closed.
	code     int
	sig      Signal
	signaled bool

	done chan struct{}
}

func (vp *virtualProcess) settle(code int, sig Signal, signaled bool) {
	if !atomic.CompareAndSwapUint32(&vp.settled, 0, 1) {
		return
	}
	vp.code = code
	vp.sig = sig
	vp.signaled = signaled
	close(vp.done)
}

func (vp *virtualProcess) PID() uint32 { return vp.pid }

// Signal delivers a signal to the virtual process. Terminating signals end
// the process unless it has already settled; the entry goroutine itself
// cannot be preempted, so its eventual return is discarded. Other signals
// are accepted and dropped.
func (vp *virtualProcess) Signal(sig Signal) error {
	if sig.terminating() {
		vp.settle(ExitFailure, sig, true)
	}
	return nil
}

func (vp *virtualProcess) Kill() error {
	return vp.Signal(SignalKill)
}

// Wait blocks until the process settles.
func (vp *virtualProcess) Wait() ExitStatus {
	<-vp.done
	return ExitStatus{
		PID:      vp.pid,
		Code:     vp.code,
		Signal:   vp.sig,
		Signaled: vp.signaled,
	}
}
