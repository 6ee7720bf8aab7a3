package authsvc

import (
	"net/mail"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/session"
	emailsvc "github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/services/email"
	dummydb "github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func testConf(t *testing.T) *core.Config {
	return &core.Config{
		TestMode:         true,
		AppName:          "Learnwise",
		SecretKey:        []byte("secret"),
		DefaultFromEmail: mail.Address{Address: "noreply@localhost"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			TokenCachePath:            filepath.Join(t.TempDir(), "token"),
		},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
}

func newTestBackend(t *testing.T) (*LocalBackend, *profile.ServiceMock, *core.Config) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	conf := testConf(t)
	profSvc := profile.NewServiceMock(
		dummydb.NewProfileRepository(db), emailsvc.NewConsoleServiceMock(conf), conf)
	return NewLocalBackend(profSvc, nopLogger{}, conf), profSvc, conf
}

func TestLocalBackend_SignIn(t *testing.T) {
	backend, profSvc, _ := newTestBackend(t)

	prof, err := profSvc.Create(profile.NewProfile{Email: "learner@test.cd", Password: "LePassword123"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err = backend.SignIn("learner@test.cd", "wrong"); errors.Cause(err) != session.ErrInvalidCredentials {
		t.Errorf("SignIn(wrong pwd) = %v; want ErrInvalidCredentials", err)
	}
	if _, err = backend.SignIn("nobody@test.cd", "LePassword123"); errors.Cause(err) != session.ErrInvalidCredentials {
		t.Errorf("SignIn(unknown email) = %v; want ErrInvalidCredentials", err)
	}

	sess, err := backend.SignIn("learner@test.cd", "LePassword123")
	if err != nil {
		t.Fatalf("SignIn() failed: %v", err)
	}
	if sess.PrincipalID != prof.ID {
		t.Errorf("PrincipalID = %q; want %q", sess.PrincipalID, prof.ID)
	}
	if sess.Expired() {
		t.Error("fresh session is already expired")
	}

	select {
	case ev := <-backend.Events():
		if ev.Kind != session.EventSignedIn || ev.Session == nil {
			t.Errorf("event = %+v; want SIGNED_IN with session", ev)
		}
	default:
		t.Error("no auth event emitted on sign-in")
	}

	stored, _ := profSvc.GetByID(prof.ID)
	if stored.LastLogin.IsZero() {
		t.Error("LastLogin not set on sign-in")
	}
}

func TestLocalBackend_SignInDeactivated(t *testing.T) {
	backend, profSvc, _ := newTestBackend(t)

	prof, err := profSvc.Create(profile.NewProfile{Email: "gone@test.cd", Password: "LePassword123"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	inactive := false
	if _, err = profSvc.Update(prof.ID, profile.UpdateProfile{IsActive: &inactive}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if _, err = backend.SignIn("gone@test.cd", "LePassword123"); errors.Cause(err) != ErrAccountDeactivated {
		t.Errorf("SignIn(deactivated) = %v; want ErrAccountDeactivated", err)
	}
}

func TestLocalBackend_CurrentSessionCache(t *testing.T) {
	backend, profSvc, conf := newTestBackend(t)

	// nothing cached yet
	sess, err := backend.CurrentSession()
	if err != nil || sess != nil {
		t.Fatalf("CurrentSession() = %+v, %v; want nil, nil", sess, err)
	}

	if _, err = profSvc.Create(profile.NewProfile{Email: "back@test.cd", Password: "LePassword123"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	signedIn, err := backend.SignIn("back@test.cd", "LePassword123")
	if err != nil {
		t.Fatalf("SignIn() failed: %v", err)
	}

	// a new backend over the same cache restores the same principal
	restored, err := NewLocalBackend(profSvc, nopLogger{}, conf).CurrentSession()
	if err != nil {
		t.Fatalf("CurrentSession() failed: %v", err)
	}
	if restored == nil || restored.PrincipalID != signedIn.PrincipalID {
		t.Errorf("restored = %+v; want principal %q", restored, signedIn.PrincipalID)
	}

	if err = backend.SignOut(signedIn); err != nil {
		t.Fatalf("SignOut() failed: %v", err)
	}
	sess, err = backend.CurrentSession()
	if err != nil || sess != nil {
		t.Errorf("CurrentSession() after SignOut = %+v, %v; want nil, nil", sess, err)
	}
}

func TestLocalBackend_Refresh(t *testing.T) {
	backend, profSvc, conf := newTestBackend(t)

	prof, err := profSvc.Create(profile.NewProfile{Email: "fresh@test.cd", Password: "LePassword123"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	sess, err := backend.SignIn("fresh@test.cd", "LePassword123")
	if err != nil {
		t.Fatalf("SignIn() failed: %v", err)
	}

	newSess, err := backend.Refresh(sess)
	if err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if newSess.PrincipalID != prof.ID {
		t.Errorf("PrincipalID = %q; want %q", newSess.PrincipalID, prof.ID)
	}
	claims, err := ParseToken(newSess.Token, conf)
	if err != nil {
		t.Fatalf("ParseToken() failed: %v", err)
	}
	if claims.Subject != prof.ID || claims.Role != string(profile.RoleStudent) {
		t.Errorf("claims = %+v; want subject %q role student", claims, prof.ID)
	}
}

func TestLocalBackend_FederatedSignInURL(t *testing.T) {
	backend, _, conf := newTestBackend(t)

	if _, err := backend.FederatedSignInURL(); errors.Cause(err) != session.ErrNoProvider {
		t.Errorf("FederatedSignInURL() = %v; want ErrNoProvider", err)
	}

	conf.Server.FederatedAuthURL = "https://id.example.com/authorize"
	url, err := backend.FederatedSignInURL()
	if err != nil || url != conf.Server.FederatedAuthURL {
		t.Errorf("FederatedSignInURL() = %q, %v; want configured URL", url, err)
	}
}
