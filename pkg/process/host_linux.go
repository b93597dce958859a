//go:build linux

package process

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Command describes the executable a host-backed process runs. A Go entry
// function cannot cross an exec boundary, so host spawns carry the child's
// entry point here, passed as the spawn argument.
type Command struct {
	// Path is the absolute path of the executable.
	Path string
	// Args are the arguments, not including the program name.
	Args []string
	// Env is the child environment; nil inherits nothing.
	Env []string
	// Dir is the working directory; empty means the caller's.
	Dir string
}

// HostBackend satisfies the spawn contract with real operating system
// processes requested through the privileged process-creation interface.
type HostBackend struct{}

// NewHostBackend creates a host spawn backend.
func NewHostBackend() *HostBackend {
	return &HostBackend{}
}

// Spawn starts the command described by arg, which must be a *Command. The
// entry function is ignored: the command itself is the child's entry point.
func (b *HostBackend) Spawn(entry EntryFunc, arg interface{}) (BackendProcess, error) {
	cmd, ok := arg.(*Command)
	if !ok || cmd == nil {
		return nil, errors.New("host backend requires a *Command argument")
	}
	if cmd.Path == "" {
		return nil, errors.New("host backend requires a command path")
	}

	argv := append([]string{cmd.Path}, cmd.Args...)
	p, err := os.StartProcess(cmd.Path, argv, &os.ProcAttr{
		Dir: cmd.Dir,
		Env: cmd.Env,
		// The child must not outlive the kernel core that tracks it.
		Sys: &syscall.SysProcAttr{Pdeathsig: unix.SIGTERM},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to start host process")
	}

	return &hostProcess{p: p}, nil
}

// hostProcess wraps an os.Process behind the backend contract.
type hostProcess struct {
	p *os.Process
}

func (hp *hostProcess) PID() uint32 {
	return uint32(hp.p.Pid)
}

func (hp *hostProcess) Signal(sig Signal) error {
	return hp.p.Signal(syscall.Signal(sig))
}

func (hp *hostProcess) Kill() error {
	return hp.p.Signal(unix.SIGKILL)
}

// Wait reaps the process. Signal termination is reported with ExitFailure
// and the terminating signal, matching the virtual backend.
func (hp *hostProcess) Wait() ExitStatus {
	st, err := hp.p.Wait()
	if err != nil {
		return ExitStatus{PID: hp.PID(), Code: ExitFailure, Err: err}
	}

	if ws, ok := st.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ExitStatus{
			PID:      hp.PID(),
			Code:     ExitFailure,
			Signal:   Signal(ws.Signal()),
			Signaled: true,
		}
	}

	return ExitStatus{PID: hp.PID(), Code: st.ExitCode()}
}
