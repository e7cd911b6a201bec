package store

// EventType identifies the kind of mutation an observer is notified about.
type EventType int

const (
	// EventPut is fired after a key is inserted or its value overwritten.
	EventPut EventType = iota
	// EventDelete is fired after a key is removed, by key or by rank.
	EventDelete
)

// String returns the event name used in logs and metric labels.
func (e EventType) String() string {
	switch e {
	case EventPut:
		return "PUT"
	case EventDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Observer receives store mutation events.
//
// OnEvent runs synchronously while the store's write lock is held, so it must
// not block for long and must not call back into the store. Observers are
// compared with == on Detach and should therefore be pointer types.
type Observer interface {
	OnEvent(kind EventType, key string)
}
