package domain

// Actor is the identity performing an operation. It is supplied by the identity
// provider and is never persisted by the access layer.
type Actor struct {
	ID   string
	Type ActorType
	Role string
}

// NewPerson returns an Actor of type Person.
func NewPerson(id, role string) Actor {
	return Actor{ID: id, Type: ActorTypePerson, Role: role}
}

// IsZero reports whether the actor carries no identity.
func (a Actor) IsZero() bool {
	return a.ID == ""
}
