/*
Package process tracks the lifecycle of spawned execution contexts behind a
backend-agnostic contract.

The spawn mechanism is injected as a Backend. Two backends ship with the
package: VirtualBackend duplicates the caller into a fresh goroutine running
the entry function, and HostBackend (Linux) requests a real process from the
operating system. Both produce the same observable ProcessInfo semantics:
a handle starts RUNNING and ends in exactly one terminal state (EXITED,
SIGNALED, or KILLED).

# Usage

	backend := process.NewVirtualBackend()
	registry := process.NewRegistry(backend, checker, auditLog, logger)

	info, err := registry.CreateProcess(parentTask, func(arg interface{}) int {
		return 0
	}, nil)
	if err != nil {
		// spawn failure; no handle was created
	}

	code, err := registry.WaitProcess(info)

WaitProcess is the only blocking operation; it suspends the caller until the
target's terminal state is observable and then returns the cached result on
every later call. KillProcess requires the KILL capability and is checked by
the registry itself.
*/
package process
