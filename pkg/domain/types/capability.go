package types

// Capability is a named permission an actor may hold
type Capability string

func (c Capability) String() string {
	return string(c)
}

// UserID identifies the actor whose dismissals are tracked
type UserID string

func (id UserID) String() string {
	return string(id)
}
