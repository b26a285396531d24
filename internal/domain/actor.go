package domain

// Actor is the identity attempting an operation. The zero value is anonymous.
type Actor struct {
	ID    AccountID
	Admin bool
}

// Anonymous is the actor for requests without an authenticated identity.
var Anonymous = Actor{}

// ActorFor builds the actor view of a signed-in account.
func ActorFor(a *Account) Actor {
	if a == nil {
		return Anonymous
	}
	return Actor{ID: a.ID, Admin: a.Admin}
}

// Authenticated reports whether an identity is present.
func (a Actor) Authenticated() bool { return !a.ID.IsZero() }
