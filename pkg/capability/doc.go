/*
Package capability gates privileged kernel operations behind per-task
permission bits.

Each task owns a fixed-size capability set over a closed enumeration of
capabilities (CHOWN, DAC_OVERRIDE, KILL, NET_ADMIN, SYS_BOOT, SYS_MODULE).
The Checker authorizes operations against a task's set and records every
denial as a SECURITY audit record.

# Usage

	checker := capability.NewChecker(auditLog, logger)
	task := capability.NewBootstrapTask()

	if !checker.Capable(task, capability.CapKill) {
		// denied; one SECURITY audit record has been emitted
	}

Granting a capability is itself privilege-sensitive, but SetCapability does
not self-enforce that: the subsystem cannot gate the operation that grants
capabilities without a circular dependency. Callers performing administration
must first pass their own Capable check.
*/
package capability
