package capability

import "sync/atomic"

// Capability identifies one privileged-operation permission bit.
type Capability uint8

// The closed set of capabilities. Values outside this enumeration are never
// stored and always fail checks.
const (
	// CapChown allows changing file ownership.
	CapChown Capability = iota
	// CapDacOverride bypasses discretionary access control; it also gates
	// resource-control administration such as cgroup mutation.
	CapDacOverride
	// CapKill allows sending termination signals to arbitrary processes.
	CapKill
	// CapNetAdmin allows network administration.
	CapNetAdmin
	// CapSysBoot allows rebooting the system.
	CapSysBoot
	// CapSysModule allows loading kernel modules.
	CapSysModule

	capMax
)

// Valid reports whether c is inside the closed enumeration.
func (c Capability) Valid() bool {
	return c < capMax
}

// String returns the capability's conventional name.
func (c Capability) String() string {
	switch c {
	case CapChown:
		return "CAP_CHOWN"
	case CapDacOverride:
		return "CAP_DAC_OVERRIDE"
	case CapKill:
		return "CAP_KILL"
	case CapNetAdmin:
		return "CAP_NET_ADMIN"
	case CapSysBoot:
		return "CAP_SYS_BOOT"
	case CapSysModule:
		return "CAP_SYS_MODULE"
	}
	return "CAP_UNKNOWN"
}

// Set is a fixed-size capability vector. Reads and writes use atomic bit
// operations so a concurrent Capable check never observes a half-updated
// vector. The zero value grants nothing.
type Set struct {
	bits uint32
}

// NewSet creates a set granting exactly the given capabilities.
func NewSet(caps ...Capability) *Set {
	s := &Set{}
	for _, c := range caps {
		s.Set(c, true)
	}
	return s
}

// Has reports whether the set grants cap. Out-of-range capabilities are
// never granted.
func (s *Set) Has(cap Capability) bool {
	if !cap.Valid() {
		return false
	}
	return atomic.LoadUint32(&s.bits)&(1<<cap) != 0
}

// Set grants or revokes cap. It is idempotent and a no-op for out-of-range
// capabilities.
func (s *Set) Set(cap Capability, value bool) {
	if !cap.Valid() {
		return
	}
	mask := uint32(1) << cap
	for {
		old := atomic.LoadUint32(&s.bits)
		var next uint32
		if value {
			next = old | mask
		} else {
			next = old &^ mask
		}
		if atomic.CompareAndSwapUint32(&s.bits, old, next) {
			return
		}
	}
}
