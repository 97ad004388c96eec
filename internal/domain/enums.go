package domain

// ActivityType identifies the kind of operation recorded in an activity event.
// It doubles as the authorization action.
type ActivityType string

const (
	ActivityRead   ActivityType = "READ"
	ActivityCreate ActivityType = "CREATE"
	ActivityUpdate ActivityType = "UPDATE"
	ActivityDelete ActivityType = "DELETE"
)

func (a ActivityType) String() string { return string(a) }

func (a ActivityType) IsValid() bool {
	switch a {
	case ActivityRead, ActivityCreate, ActivityUpdate, ActivityDelete:
		return true
	}
	return false
}

// ActorType tags the kind of identity performing an operation.
type ActorType string

const (
	ActorTypePerson ActorType = "Person"
)

func (t ActorType) String() string { return string(t) }

func (t ActorType) IsValid() bool {
	return t == ActorTypePerson
}

// ResourceSegment is the resource name governing segment records.
const ResourceSegment = "segment"
