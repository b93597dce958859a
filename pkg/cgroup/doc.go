/*
Package cgroup organizes tasks into a hierarchy of named resource groups.

Nodes form a forest: every node has a stable integer id (never reused), a
name unique among its siblings, an ordered set of owned children, and an
ordered set of member pids. Structural mutations are serialized by a single
hierarchy lock and gated on the CAP_DAC_OVERRIDE capability of the acting
task; read-only queries share the lock. Every successful mutation emits one
USER_DEFINED audit record keyed by the cgroup id.

# Usage

	h := cgroup.NewHierarchy(checker, auditLog, registry, logger)

	web, err := h.Create(admin, "web", 0)
	if err != nil {
		// cgroup.ErrDuplicate, cgroup.ErrInvalid, cgroup.ErrNoSpace, ...
	}

	if err := h.AttachTask(admin, web.ID(), pid); err != nil {
		// cgroup.ErrNotFound, cgroup.ErrDuplicate, cgroup.ErrFull
	}

Destroy removes a whole subtree: member tasks are detached automatically and
children are destroyed recursively, so no node is ever left referencing a
freed parent.
*/
package cgroup
