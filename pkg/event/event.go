package event

// Type classifies a kernel event.
type Type uint8

const (
	// TypeGeneric is an unclassified event.
	TypeGeneric Type = iota
	// TypeSystem is a kernel-internal event.
	TypeSystem
	// TypeUser is an event raised on behalf of a user task.
	TypeUser
	// TypeNetwork is a networking event.
	TypeNetwork
	// TypeFile is a filesystem event.
	TypeFile
	// TypeCustom is an event carrying a caller-defined callback.
	TypeCustom
)

// Event is one kernel notification.
type Event struct {
	// ID identifies the event within its producer.
	ID int
	// Name describes the event.
	Name string
	// Type classifies the event.
	Type Type
	// PID is the task the event concerns, or 0.
	PID uint32

	// callback runs when a custom event is executed.
	callback func()
}

// NewEvent creates an event of the given type.
func NewEvent(id int, name string, typ Type) *Event {
	return &Event{ID: id, Name: name, Type: typ}
}

// NewCustomEvent creates an event that runs callback when executed.
func NewCustomEvent(id int, name string, callback func()) *Event {
	return &Event{ID: id, Name: name, Type: TypeCustom, callback: callback}
}

// Execute runs the event's callback, if any.
func (e *Event) Execute() {
	if e.callback != nil {
		e.callback()
	}
}

// Listener receives published events. Implementations must be comparable
// (a pointer receiver is the usual shape) so registration can detect
// duplicates.
type Listener interface {
	HandleEvent(e *Event)
}
