package capability

// BootstrapPID is the pid of the designated bootstrap task.
const BootstrapPID uint32 = 1

// Task is the capability- and audit-relevant identity of a live process.
// Exactly one Task exists per live pid; the process registry creates it at
// registration and drops it when the process is reaped.
type Task struct {
	// PID is the process identity, unique process-wide.
	PID uint32
	// UID is the owning user.
	UID uint32
	// Caps is the task's capability vector, owned exclusively by this task.
	Caps *Set
}

// NewTask creates a task with an empty capability set.
func NewTask(pid, uid uint32) *Task {
	return &Task{PID: pid, UID: uid, Caps: NewSet()}
}

// NewBootstrapTask creates the designated bootstrap task: pid 1, uid 0, with
// CHOWN and KILL granted. Every other task starts with nothing.
func NewBootstrapTask() *Task {
	return &Task{
		PID:  BootstrapPID,
		UID:  0,
		Caps: NewSet(CapChown, CapKill),
	}
}
