package cgroup

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"kernos/pkg/audit"
	"kernos/pkg/capability"
)

// TaskLookup answers pid-validity queries. *process.Registry satisfies it.
type TaskLookup interface {
	Alive(pid uint32) bool
}

// Hierarchy is the forest of cgroup nodes. Structural mutations hold the
// write lock because they touch parent/children links and membership sets
// together; queries share the read lock.
type Hierarchy struct {
	checker *capability.Checker
	audit   *audit.Log
	pids    TaskLookup
	logger  *zap.Logger

	mu     sync.RWMutex
	nodes  map[uint32]*Node
	roots  []*Node
	nextID uint32
}

// NewHierarchy creates an empty hierarchy. Mutations are authorized through
// checker and recorded to auditLog. pids validates attach targets; a nil
// lookup disables the validity check. A nil logger disables diagnostic
// output.
func NewHierarchy(checker *capability.Checker, auditLog *audit.Log, pids TaskLookup, logger *zap.Logger) *Hierarchy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hierarchy{
		checker: checker,
		audit:   auditLog,
		pids:    pids,
		logger:  logger,
		nodes:   make(map[uint32]*Node),
	}
}

// Len returns the number of live nodes.
func (h *Hierarchy) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes)
}

// Node returns the node with the given id, or nil.
func (h *Hierarchy) Node(id uint32) *Node {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.nodes[id]
}

// Create allocates a new node named name under the parent with id parentID;
// parentID 0 means the root scope. Names are unique per parent scope. The
// acting task needs CAP_DAC_OVERRIDE.
func (h *Hierarchy) Create(actor *capability.Task, name string, parentID uint32) (*Node, error) {
	if !h.checker.Capable(actor, capability.CapDacOverride) {
		return nil, ErrNotPermitted
	}
	if name == "" || len(name) > MaxNameLen {
		return nil, ErrInvalid
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var parent *Node
	siblings := h.roots
	if parentID != 0 {
		parent = h.nodes[parentID]
		if parent == nil {
			return nil, ErrNotFound
		}
		siblings = parent.children
	}

	for _, sib := range siblings {
		if sib.name == name {
			return nil, ErrDuplicate
		}
	}

	if len(h.nodes) >= MaxCgroups {
		return nil, ErrNoSpace
	}
	if parent != nil && len(parent.children) >= MaxChildren {
		return nil, ErrNoSpace
	}

	h.nextID++
	node := &Node{
		h:      h,
		id:     h.nextID,
		name:   name,
		parent: parent,
	}
	h.nodes[node.id] = node
	if parent != nil {
		parent.children = append(parent.children, node)
	} else {
		h.roots = append(h.roots, node)
	}

	h.audit.Append(audit.TypeUserDefined, "cgroup created", node.id, 0)
	h.logger.Info("cgroup created",
		zap.Uint32("id", node.id),
		zap.String("name", name),
		zap.Uint32("parent", parentID),
	)
	return node, nil
}

// Destroy removes the node with the given id and its whole subtree. Member
// tasks are detached automatically and children are destroyed recursively,
// deepest first, so no child ever references a freed parent. One audit
// record is emitted per destroyed node. The acting task needs
// CAP_DAC_OVERRIDE.
func (h *Hierarchy) Destroy(actor *capability.Task, id uint32) error {
	if !h.checker.Capable(actor, capability.CapDacOverride) {
		return ErrNotPermitted
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	node := h.nodes[id]
	if node == nil {
		return ErrNotFound
	}

	if node.parent != nil {
		node.parent.children = removeNode(node.parent.children, node)
	} else {
		h.roots = removeNode(h.roots, node)
	}
	h.destroySubtree(node)
	return nil
}

// destroySubtree removes node and its descendants post-order. Caller holds
// the write lock.
func (h *Hierarchy) destroySubtree(node *Node) {
	for _, child := range node.children {
		h.destroySubtree(child)
	}
	node.children = nil
	node.tasks = nil
	node.parent = nil
	delete(h.nodes, node.id)

	h.audit.Append(audit.TypeUserDefined, "cgroup destroyed", node.id, 0)
	h.logger.Info("cgroup destroyed", zap.Uint32("id", node.id))
}

func removeNode(nodes []*Node, target *Node) []*Node {
	for i, n := range nodes {
		if n == target {
			return append(nodes[:i], nodes[i+1:]...)
		}
	}
	return nodes
}

// AttachTask adds pid as a member of the node with the given id. The pid
// must belong to a live process when a task lookup is configured. The acting
// task needs CAP_DAC_OVERRIDE.
func (h *Hierarchy) AttachTask(actor *capability.Task, id, pid uint32) error {
	if !h.checker.Capable(actor, capability.CapDacOverride) {
		return ErrNotPermitted
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	node := h.nodes[id]
	if node == nil {
		return ErrNotFound
	}
	if h.pids != nil && !h.pids.Alive(pid) {
		return ErrNotFound
	}
	for _, member := range node.tasks {
		if member == pid {
			return ErrDuplicate
		}
	}
	if len(node.tasks) >= MaxTasks {
		return ErrFull
	}

	node.tasks = append(node.tasks, pid)

	h.audit.Append(audit.TypeUserDefined, "task attached to cgroup", node.id, pid)
	h.logger.Info("task attached",
		zap.Uint32("id", node.id),
		zap.String("name", node.name),
		zap.Uint32("pid", pid),
	)
	return nil
}

// DetachTask removes pid from the node's members. The acting task needs
// CAP_DAC_OVERRIDE.
func (h *Hierarchy) DetachTask(actor *capability.Task, id, pid uint32) error {
	if !h.checker.Capable(actor, capability.CapDacOverride) {
		return ErrNotPermitted
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	node := h.nodes[id]
	if node == nil {
		return ErrNotFound
	}

	idx := -1
	for i, member := range node.tasks {
		if member == pid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	node.tasks = append(node.tasks[:idx], node.tasks[idx+1:]...)

	h.audit.Append(audit.TypeUserDefined, "task detached from cgroup", node.id, pid)
	h.logger.Info("task detached",
		zap.Uint32("id", node.id),
		zap.String("name", node.name),
		zap.Uint32("pid", pid),
	)
	return nil
}

// Find returns the first node named name in depth-first pre-order, or nil.
// Names are unique only among siblings, so the same name may exist in
// different scopes; the first match in traversal order wins.
func (h *Hierarchy) Find(name string) *Node {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return findIn(h.roots, name)
}

func findIn(nodes []*Node, name string) *Node {
	for _, n := range nodes {
		if n.name == name {
			return n
		}
		if found := findIn(n.children, name); found != nil {
			return found
		}
	}
	return nil
}

// HasTask reports whether pid is a member of the node with the given id.
// Pure query, no side effects.
func (h *Hierarchy) HasTask(id, pid uint32) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	node := h.nodes[id]
	if node == nil {
		return false
	}
	for _, member := range node.tasks {
		if member == pid {
			return true
		}
	}
	return false
}

// Dump writes a depth-first pre-order listing of every node's id, name and
// member pids to the diagnostic sink and returns it. Read-only.
func (h *Hierarchy) Dump() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("cgroup hierarchy:\n")
	for _, root := range h.roots {
		h.dumpNode(&sb, root, 1)
	}

	out := sb.String()
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		h.logger.Info(line)
	}
	return out
}

func (h *Hierarchy) dumpNode(sb *strings.Builder, node *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s[%d] %s: %d tasks\n", indent, node.id, node.name, len(node.tasks))
	for _, pid := range node.tasks {
		fmt.Fprintf(sb, "%s  - pid: %d\n", indent, pid)
	}
	for _, child := range node.children {
		h.dumpNode(sb, child, depth+1)
	}
}
