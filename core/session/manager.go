package session

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
)

// State is the reactive {user, profile, loading} triple owned by the Manager.
// Loading is true from construction until the first resolution settles; it
// never gets stuck true. Profile may be nil while User is set (half-resolved
// session): callers must treat that as "not yet authorized for anything".
type State struct {
	User    *Session
	Profile *profile.Profile
	Loading bool
}

// Resolver yields the Profile for a principal, synthesizing a default record
// when none exists. profile.Service satisfies it.
type Resolver interface {
	Resolve(principalID, email string) (profile.Profile, error)
}

// Manager owns the single live Session and the resolved Profile. It is the
// only component allowed to mutate either; everything else reads State
// snapshots or subscribes to changes.
//
// The startup one-shot session check and the backend's event stream are not
// ordered relative to each other; the Manager tolerates either arriving first
// and resolutions are keyed by principal ID so duplicate or abandoned ones
// collapse to one consistent result (stale-response guard).
type Manager struct {
	backend  Backend
	profiles Resolver
	logger   core.Logger

	mu        sync.Mutex
	state     State
	listeners map[int]chan State
	nextLisID int

	stop     chan struct{}
	stopOnce sync.Once
}

func NewManager(backend Backend, profiles Resolver, logger core.Logger) *Manager {
	return &Manager{
		backend:   backend,
		profiles:  profiles,
		logger:    logger,
		state:     State{Loading: true},
		listeners: make(map[int]chan State),
		stop:      make(chan struct{}),
	}
}

// Start begins consuming auth events and kicks off the startup session check.
func (m *Manager) Start() {
	go m.consumeEvents()
	go m.restore()
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// State returns a snapshot. The pointed-to Session/Profile are read-only.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers a listener for state changes. Slow listeners miss
// intermediate states rather than blocking the Manager. The returned func
// cancels the subscription.
func (m *Manager) Subscribe() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextLisID
	m.nextLisID++
	ch := make(chan State, 8)
	m.listeners[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if ch, ok := m.listeners[id]; ok {
			delete(m.listeners, id)
			close(ch)
		}
	}
	return ch, cancel
}

// SignIn establishes a Session from credentials and triggers profile
// resolution asynchronously.
func (m *Manager) SignIn(email, password string) (*Session, error) {
	sess, err := m.backend.SignIn(email, password)
	if err != nil {
		return nil, err
	}
	m.establish(sess)
	return sess, nil
}

// SignUp registers a pending identity; role always defaults to student here,
// whatever the payload says.
func (m *Manager) SignUp(np profile.NewProfile) (*Session, error) {
	np.Role = profile.RoleStudent
	sess, err := m.backend.SignUp(np)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		m.establish(sess)
	}
	return sess, nil
}

// FederatedSignIn returns the external identity flow URL; control returns
// asynchronously via the event stream.
func (m *Manager) FederatedSignIn() (string, error) {
	return m.backend.FederatedSignInURL()
}

// RequestPasswordReset always reports success for unknown accounts so their
// existence is not leaked; only hard backend failures surface.
func (m *Manager) RequestPasswordReset(email string) error {
	if err := m.backend.RequestPasswordReset(email); err != nil {
		if errors.Cause(err) == profile.ErrNotFound {
			return nil
		}
		return errors.Wrap(err, "requesting password reset")
	}
	return nil
}

// SignOut clears Session and Profile before notifying the backend, so no
// stale Profile is ever visible after this call. A profile resolution still
// in flight for the old principal is discarded by the stale-response guard.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	sess := m.state.User
	m.state = State{}
	m.notifyLocked()
	m.mu.Unlock()

	if sess == nil {
		return nil
	}
	if err := m.backend.SignOut(sess); err != nil {
		return errors.Wrap(err, "signing out")
	}
	return nil
}

// restore performs the startup one-shot session check.
func (m *Manager) restore() {
	sess, err := m.backend.CurrentSession()
	if err != nil {
		m.logger.Warn(fmt.Sprintf("restoring session: %v", err), err)
		m.settleEmpty()
		return
	}
	if sess == nil || sess.Expired() {
		m.settleEmpty()
		return
	}
	m.establish(sess)
}

// settleEmpty concludes the initial load with no session, unless an auth
// event won the race and already established one.
func (m *Manager) settleEmpty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.User != nil || !m.state.Loading {
		return
	}
	m.state.Loading = false
	m.notifyLocked()
}

func (m *Manager) consumeEvents() {
	events := m.backend.Events()
	for {
		select {
		case <-m.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case EventSignedOut:
				m.clear()
			default:
				if ev.Session != nil {
					m.establish(ev.Session)
				}
			}
		}
	}
}

// establish stores the Session and dispatches profile resolution off the
// calling flow, so a burst of auth events never serializes behind a slow
// profile fetch. Duplicate triggers for an already resolved principal only
// refresh the credential.
func (m *Manager) establish(sess *Session) {
	m.mu.Lock()
	if m.state.User != nil && m.state.User.PrincipalID == sess.PrincipalID && m.state.Profile != nil {
		m.state.User = sess
		m.notifyLocked()
		m.mu.Unlock()
		return
	}
	m.state.User = sess
	m.state.Loading = true
	m.notifyLocked()
	m.mu.Unlock()

	go m.resolve(sess.PrincipalID, sess.Email)
}

func (m *Manager) resolve(principalID, email string) {
	prof, err := m.profiles.Resolve(principalID, email)

	m.mu.Lock()
	defer m.mu.Unlock()

	// stale-response guard: the session may have changed identity while this
	// resolution was in flight; its result must not be committed then
	if m.state.User == nil || m.state.User.PrincipalID != principalID {
		return
	}

	if err != nil {
		// half-resolved session: keep the credential, authorize nothing
		m.state.Profile = nil
		m.logger.Warn(fmt.Sprintf("resolving profile %s: %v", principalID, err), err)
	} else {
		p := prof
		m.state.Profile = &p
	}
	m.state.Loading = false
	m.notifyLocked()
}

func (m *Manager) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.User == nil && !m.state.Loading {
		return
	}
	m.state = State{}
	m.notifyLocked()
}

// notifyLocked fans the current state out to listeners without blocking on
// any of them. Callers must hold m.mu.
func (m *Manager) notifyLocked() {
	for _, ch := range m.listeners {
		select {
		case ch <- m.state:
		default:
		}
	}
}
