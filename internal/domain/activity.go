package domain

import "time"

// ActivityObject references the record an activity event is about.
// Data holds a snapshot of the record for create and update events.
type ActivityObject struct {
	ID   string
	Type string
	Data any
}

// ActivityEvent is the immutable record of one completed operation.
type ActivityEvent struct {
	Actor     Actor
	Type      ActivityType
	Resource  string
	Object    *ActivityObject // nil for collection reads
	Timestamp time.Time
	Took      int64 // milliseconds
	Total     int   // raw record count, collection reads only
}
