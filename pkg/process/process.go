package process

import (
	"fmt"
	"sync"
	"time"
)

// ExitFailure is the wait result reported for a process that did not exit
// normally. It is distinct from every valid exit code.
const ExitFailure = -1

// Signal represents a signal number. Numbering follows Unix convention so
// the host backend can deliver signals unmapped.
type Signal int

const (
	// SignalHangup reports that the controlling terminal closed.
	SignalHangup Signal = 1
	// SignalInterrupt requests interruption (Ctrl+C).
	SignalInterrupt Signal = 2
	// SignalKill terminates the process immediately and cannot be caught.
	SignalKill Signal = 9
	// SignalUser1 is the first user-defined signal.
	SignalUser1 Signal = 10
	// SignalTerminate requests graceful termination.
	SignalTerminate Signal = 15
	// SignalChild reports a child status change.
	SignalChild Signal = 17
	// SignalContinue resumes a stopped process.
	SignalContinue Signal = 18
	// SignalStop stops the process.
	SignalStop Signal = 19
)

// String returns the signal's conventional name.
func (s Signal) String() string {
	switch s {
	case SignalHangup:
		return "SIGHUP"
	case SignalInterrupt:
		return "SIGINT"
	case SignalKill:
		return "SIGKILL"
	case SignalUser1:
		return "SIGUSR1"
	case SignalTerminate:
		return "SIGTERM"
	case SignalChild:
		return "SIGCHLD"
	case SignalContinue:
		return "SIGCONT"
	case SignalStop:
		return "SIGSTOP"
	}
	return fmt.Sprintf("signal(%d)", int(s))
}

// terminating reports whether delivery of s ends a virtual process.
func (s Signal) terminating() bool {
	switch s {
	case SignalInterrupt, SignalKill, SignalTerminate:
		return true
	}
	return false
}

// State represents the lifecycle state of a process handle.
type State string

const (
	// StateRunning indicates the process has been spawned and not yet terminated.
	StateRunning State = "running"
	// StateExited indicates the process returned normally from its entry point.
	StateExited State = "exited"
	// StateSignaled indicates the process was terminated by a signal.
	StateSignaled State = "signaled"
	// StateKilled indicates the process was terminated through KillProcess.
	StateKilled State = "killed"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s != StateRunning
}

// ProcessInfo is the registry's handle for one spawned process. It is
// created by CreateProcess and mutated only by wait and kill operations on
// the same handle.
type ProcessInfo struct {
	// PID is the process identity, unique process-wide.
	PID uint32
	// StartTime is when the process was spawned.
	StartTime time.Time

	// mu protects the lifecycle fields below.
	mu       sync.Mutex
	state    State
	exitCode int
	signal   Signal

	proc     BackendProcess
	waitOnce sync.Once
	waitCode int
	waitErr  error
}

// State returns the current lifecycle state.
func (p *ProcessInfo) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ExitCode returns the exit code recorded for a normally exited process.
// It is meaningful only when State is StateExited.
func (p *ProcessInfo) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

// TermSignal returns the signal that terminated the process. It is
// meaningful only when State is StateSignaled or StateKilled.
func (p *ProcessInfo) TermSignal() Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signal
}

// Terminal reports whether the handle has reached a final state.
func (p *ProcessInfo) Terminal() bool {
	return p.State().Terminal()
}

// markExited records a normal exit. Terminal states never downgrade: a
// handle already KILLED stays KILLED.
func (p *ProcessInfo) markExited(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateRunning {
		p.state = StateExited
		p.exitCode = code
	}
}

// markSignaled records termination by signal, unless already terminal.
func (p *ProcessInfo) markSignaled(sig Signal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateRunning {
		p.state = StateSignaled
		p.signal = sig
	}
}

// markKilled records termination through KillProcess, unless already terminal.
func (p *ProcessInfo) markKilled(sig Signal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateRunning {
		p.state = StateKilled
		p.signal = sig
	}
}
