/*
Package audit provides a bounded, append-only audit trail for security- and
lifecycle-relevant kernel events.

Records are kept in a fixed-capacity ring buffer. Once the buffer has wrapped,
each append evicts the oldest record; overflow is defined behavior, not an
error. Every record carries a strictly increasing logical timestamp, so a
flushed sequence is always totally ordered even across wraps.

# Usage

Creating a log and appending records:

	log := audit.New(logger)

	ts := log.Append(audit.TypeSecurity, "capability check failed", uid, pid)

	for _, rec := range log.Flush() {
		// oldest first
	}

Append and Flush are safe for concurrent use. Append never fails; it also
writes one best-effort line to the diagnostic sink.
*/
package audit
