package synthesis

import (
	"pathwise/internal/types"
)

// State is a pipeline state.
type State string

const (
	StateIdle                   State = "Idle"
	StateAssessing              State = "Assessing"
	StateSynthesizingDependents State = "SynthesizingDependents"
	StatePersisting             State = "Persisting"
	StateReady                  State = "Ready"
	StateAuthExpired            State = "AuthExpired"
	StateFailed                 State = "Failed"
)

// DefaultRoleScope is used when a session does not name one.
const DefaultRoleScope = "member"

// Session is the pipeline context passed into and returned from Synthesize.
// It is a value: Synthesize never mutates the session it was given.
type Session struct {
	OwnerID   string
	RoleScope string
	State     State

	// Bundle is the last Ready bundle. A failed run keeps the previous one.
	Bundle *types.Bundle
	// Err is the failure of the last run, nil after a Ready run.
	Err error
}

// NewSession starts an idle session for owner.
func NewSession(ownerID, roleScope string) Session {
	if roleScope == "" {
		roleScope = DefaultRoleScope
	}
	return Session{OwnerID: ownerID, RoleScope: roleScope, State: StateIdle}
}

// Ready reports whether the session holds a usable bundle.
func (s Session) Ready() bool {
	return s.State == StateReady && s.Bundle != nil
}

// Kind is the failure kind of the last run, or "" if it succeeded.
func (s Session) Kind() types.FailureKind {
	return types.KindOf(s.Err)
}

