/*
Package event provides a small publish/subscribe bus for kernel events.

Listeners register with the Manager; published events are queued and fanned
out to every listener. The queue is bounded: publishing to a full queue
drops the oldest pending event, mirroring the audit trail's
oldest-first eviction.
*/
package event
