package session

import (
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
)

// Decision is the outcome of evaluating a protected navigation boundary.
type Decision int

const (
	// Pending means the first resolution has not settled yet: render a
	// neutral waiting state, perform no redirect.
	Pending Decision = iota
	Render
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "PENDING"
	case Render:
		return "RENDER"
	case RedirectLogin:
		return "REDIRECT_LOGIN"
	case RedirectHome:
		return "REDIRECT_HOME"
	}
	return "UNKNOWN"
}

// Decide evaluates a protected navigation boundary. It is a pure function of
// its four inputs: no hidden state, no side effects.
//
// Role matching is exhaustive over the closed role set; a role outside it
// never falls through to "allowed".
func Decide(sess *Session, prof *profile.Profile, loading bool, allowed []profile.Role) Decision {
	if loading {
		return Pending
	}
	if sess == nil || prof == nil {
		return RedirectLogin
	}
	switch prof.Role {
	case profile.RoleStudent, profile.RoleStaff, profile.RoleAdmin:
		if prof.Role.In(allowed) {
			return Render
		}
		return RedirectHome
	default:
		return RedirectHome
	}
}
