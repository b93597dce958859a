package capability

import (
	"go.uber.org/zap"

	"kernos/pkg/audit"
)

// Checker authorizes privileged operations against a task's capability
// vector. Lookups are read-mostly and lock-free; denials are audited.
type Checker struct {
	audit  *audit.Log
	logger *zap.Logger
}

// NewChecker creates a checker recording denials to auditLog. A nil logger
// disables diagnostic output.
func NewChecker(auditLog *audit.Log, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{audit: auditLog, logger: logger}
}

// Capable reports whether task holds cap. An out-of-range cap is false with
// no side effect. A missing bit emits exactly one SECURITY audit record
// carrying the task's uid and pid. A present bit has no side effect.
func (c *Checker) Capable(task *Task, cap Capability) bool {
	if !cap.Valid() {
		return false
	}

	if !task.Caps.Has(cap) {
		c.audit.Append(audit.TypeSecurity, "capability check failed", task.UID, task.PID)
		c.logger.Warn("capability denied",
			zap.Uint32("pid", task.PID),
			zap.Uint32("uid", task.UID),
			zap.Stringer("cap", cap),
		)
		return false
	}
	return true
}

// SetCapability grants or revokes cap in set. Idempotent; a no-op for an
// out-of-range cap. Not self-enforcing: callers performing administration
// must gate this behind their own Capable check.
func (c *Checker) SetCapability(set *Set, cap Capability, value bool) {
	set.Set(cap, value)
}
