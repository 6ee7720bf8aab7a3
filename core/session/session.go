package session

import (
	"time"

	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNetwork            = errors.New("identity backend unreachable")
	ErrNoProvider         = errors.New("no federated identity provider configured")
)

// Session is the live authenticated credential state, independent of the
// resolved profile. At most one exists per Manager.
type Session struct {
	Token       string    `json:"token"`
	PrincipalID string    `json:"principal_id"`
	Email       string    `json:"email"`
	Expiry      time.Time `json:"expiry"`
}

func (s *Session) Expired() bool {
	return s != nil && !s.Expiry.IsZero() && time.Now().After(s.Expiry)
}

type EventKind int

const (
	EventSignedIn EventKind = iota
	EventSignedOut
	EventTokenRefreshed
)

func (k EventKind) String() string {
	switch k {
	case EventSignedIn:
		return "SIGNED_IN"
	case EventSignedOut:
		return "SIGNED_OUT"
	case EventTokenRefreshed:
		return "TOKEN_REFRESHED"
	}
	return "UNKNOWN"
}

// AuthEvent is one notification on the identity backend's event stream.
// Session is nil on sign-out.
type AuthEvent struct {
	Kind    EventKind
	Session *Session
}

// Backend is the auth facet of the hosted data store: credential operations,
// the startup one-shot session check and the auth-state event stream.
type Backend interface {
	SignIn(email, password string) (*Session, error)
	// SignUp registers a pending identity. The returned Session is nil when
	// email confirmation policy withholds a usable session.
	SignUp(np profile.NewProfile) (*Session, error)
	// FederatedSignInURL hands control to an external identity flow; the
	// resulting session arrives through Events.
	FederatedSignInURL() (string, error)
	RequestPasswordReset(email string) error
	SignOut(sess *Session) error
	// CurrentSession restores a persisted session, (nil, nil) when none is found.
	CurrentSession() (*Session, error)
	Events() <-chan AuthEvent
}
