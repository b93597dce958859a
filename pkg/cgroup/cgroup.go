package cgroup

import "errors"

// Capacity bounds for the hierarchy.
const (
	// MaxNameLen is the longest accepted cgroup name.
	MaxNameLen = 64
	// MaxTasks is the member capacity of one node.
	MaxTasks = 128
	// MaxChildren is the child capacity of one node.
	MaxChildren = 16
	// MaxCgroups is the global node capacity of the hierarchy.
	MaxCgroups = 64
)

// Structural errors.
var (
	// ErrNotFound is returned for an unknown node, or for a pid that is not
	// a member (detach) or not a live process (attach).
	ErrNotFound = errors.New("cgroup not found")
	// ErrDuplicate is returned when a name collides with a sibling or a pid
	// is already a member.
	ErrDuplicate = errors.New("duplicate cgroup entry")
	// ErrInvalid is returned for an empty or overlong name.
	ErrInvalid = errors.New("invalid cgroup name")
	// ErrFull is returned when a node's task capacity is exhausted.
	ErrFull = errors.New("cgroup task capacity exhausted")
	// ErrNoSpace is returned when the global or per-parent node capacity is
	// exhausted.
	ErrNoSpace = errors.New("cgroup capacity exhausted")
	// ErrNotPermitted is returned when the acting task lacks
	// CAP_DAC_OVERRIDE. The denial is audited by the capability subsystem.
	ErrNotPermitted = errors.New("cgroup operation not permitted")
)

// Node is one named group in the hierarchy. The id is process-wide unique
// and never reused; the parent reference is a plain back-reference, never an
// ownership edge. All mutable fields are guarded by the owning hierarchy's
// lock.
type Node struct {
	h *Hierarchy

	id       uint32
	name     string
	parent   *Node
	children []*Node
	tasks    []uint32
}

// ID returns the node's stable identifier.
func (n *Node) ID() uint32 {
	return n.id
}

// Name returns the node's name.
func (n *Node) Name() string {
	return n.name
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	n.h.mu.RLock()
	defer n.h.mu.RUnlock()
	return n.parent
}

// Children returns the owned children in creation order.
func (n *Node) Children() []*Node {
	n.h.mu.RLock()
	defer n.h.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Tasks returns the member pids in attach order.
func (n *Node) Tasks() []uint32 {
	n.h.mu.RLock()
	defer n.h.mu.RUnlock()
	out := make([]uint32, len(n.tasks))
	copy(out, n.tasks)
	return out
}

// TaskCount returns the number of member pids.
func (n *Node) TaskCount() int {
	n.h.mu.RLock()
	defer n.h.mu.RUnlock()
	return len(n.tasks)
}
