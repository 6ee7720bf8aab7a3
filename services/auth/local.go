package authsvc

import (
	"fmt"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/session"
)

var (
	// errors
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrRefreshExpired     = errors.New("refresh has expired")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	IsStudent    bool   `json:"is_student,omitempty"` // -> LEARN AREA
	IsStaff      bool   `json:"is_staff,omitempty"`   // -> STAFF AREA
	IsAdmin      bool   `json:"is_admin,omitempty"`   // -> ADMIN AREA
}

func GetProfileClaims(prof profile.Profile, conf *core.Config, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   prof.ID,
			Audience:  "Learnwise",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        prof.Email,
		Role:         string(prof.Role),
		IsStudent:    prof.IsStudent(),
		IsStaff:      prof.IsStaff(),
		IsAdmin:      prof.IsAdmin(),
	}
}

// GenerateToken generates a signed JWT token string representing the profile Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// ParseToken validates a signed JWT token string and returns its Claims.
func ParseToken(tokenStr string, conf *core.Config) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return conf.SecretKey, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Session builds the credential state carried by these Claims.
func (c *Claims) Session(token string) *session.Session {
	return &session.Session{
		Token:       token,
		PrincipalID: c.Subject,
		Email:       c.Email,
		Expiry:      time.Unix(c.ExpiresAt, 0),
	}
}

// LocalBackend is the credential facet of the data store backed by the
// profile table: password sign-in, JWT issuance and a session cache that
// survives restarts.
type LocalBackend struct {
	profiles profile.ServiceInterface
	logger   core.Logger
	conf     *core.Config
	events   chan session.AuthEvent
}

var _ session.Backend = (*LocalBackend)(nil)

func NewLocalBackend(profiles profile.ServiceInterface, logger core.Logger, conf *core.Config) *LocalBackend {
	return &LocalBackend{
		profiles: profiles,
		logger:   logger,
		conf:     conf,
		events:   make(chan session.AuthEvent, 16),
	}
}

func (b *LocalBackend) SignIn(email, password string) (*session.Session, error) {
	prof, err := b.profiles.GetByEmail(email)
	if err != nil {
		if errors.Cause(err) == profile.ErrNotFound {
			return nil, session.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "finding profile by email")
	}
	if err = prof.CheckPassword(password); err != nil {
		return nil, session.ErrInvalidCredentials
	}
	if !prof.IsActive {
		return nil, ErrAccountDeactivated
	}
	if prof, err = b.profiles.SetLastLogin(prof); err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return b.issue(prof, session.EventSignedIn)
}

func (b *LocalBackend) SignUp(np profile.NewProfile) (*session.Session, error) {
	prof, err := b.profiles.Create(np)
	if err != nil {
		return nil, errors.Wrap(err, "creating profile")
	}
	// no email confirmation policy locally; a usable session is issued right away
	return b.issue(prof, session.EventSignedIn)
}

func (b *LocalBackend) FederatedSignInURL() (string, error) {
	if b.conf.Server.FederatedAuthURL == "" {
		return "", session.ErrNoProvider
	}
	return b.conf.Server.FederatedAuthURL, nil
}

// FederatedCallback completes an external identity flow: the provider's
// callback token is validated and exchanged for a local session.
func (b *LocalBackend) FederatedCallback(tokenStr string) (*session.Session, error) {
	claims, err := ParseToken(tokenStr, b.conf)
	if err != nil {
		return nil, errors.Wrap(err, "validating callback token")
	}
	sess := claims.Session(tokenStr)
	b.cacheSession(sess)
	b.emit(session.AuthEvent{Kind: session.EventSignedIn, Session: sess})
	return sess, nil
}

func (b *LocalBackend) RequestPasswordReset(email string) error {
	return b.profiles.RequestPasswordReset(email)
}

func (b *LocalBackend) SignOut(sess *session.Session) error {
	b.clearCache()
	b.emit(session.AuthEvent{Kind: session.EventSignedOut})
	return nil
}

// CurrentSession restores the cached credential, (nil, nil) when no valid one
// survives.
func (b *LocalBackend) CurrentSession() (*session.Session, error) {
	if b.conf.Server.TokenCachePath == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(b.conf.Server.TokenCachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading token cache")
	}
	claims, err := ParseToken(string(raw), b.conf)
	if err != nil {
		// expired or tampered cache; drop it rather than error the startup check
		b.clearCache()
		return nil, nil
	}
	return claims.Session(string(raw)), nil
}

func (b *LocalBackend) Events() <-chan session.AuthEvent { return b.events }

// Refresh exchanges a still-valid session for a fresh token, provided the
// original issue time is within the refresh window.
func (b *LocalBackend) Refresh(sess *session.Session) (*session.Session, error) {
	claims, err := ParseToken(sess.Token, b.conf)
	if err != nil {
		return nil, err
	}
	prof, err := b.profiles.GetByID(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "finding profile by ID")
	}
	if !prof.IsActive {
		return nil, ErrAccountDeactivated
	}
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(b.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return nil, ErrRefreshExpired
	}

	newClaims := GetProfileClaims(prof, b.conf, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims, b.conf)
	if err != nil {
		return nil, err
	}
	newSess := newClaims.Session(token)
	b.cacheSession(newSess)
	b.emit(session.AuthEvent{Kind: session.EventTokenRefreshed, Session: newSess})
	return newSess, nil
}

func (b *LocalBackend) issue(prof profile.Profile, kind session.EventKind) (*session.Session, error) {
	claims := GetProfileClaims(prof, b.conf)
	token, err := GenerateToken(claims, b.conf)
	if err != nil {
		return nil, err
	}
	sess := claims.Session(token)
	b.cacheSession(sess)
	b.emit(session.AuthEvent{Kind: kind, Session: sess})
	return sess, nil
}

func (b *LocalBackend) cacheSession(sess *session.Session) {
	if b.conf.Server.TokenCachePath == "" {
		return
	}
	if err := os.WriteFile(b.conf.Server.TokenCachePath, []byte(sess.Token), 0o600); err != nil {
		b.logger.Warn(fmt.Sprintf("caching session token: %v", err), err)
	}
}

func (b *LocalBackend) clearCache() {
	if b.conf.Server.TokenCachePath == "" {
		return
	}
	if err := os.Remove(b.conf.Server.TokenCachePath); err != nil && !os.IsNotExist(err) {
		b.logger.Warn(fmt.Sprintf("clearing session token cache: %v", err), err)
	}
}

// emit never blocks; a full stream drops the event rather than stalling auth.
func (b *LocalBackend) emit(ev session.AuthEvent) {
	select {
	case b.events <- ev:
	default:
		b.logger.Warn(fmt.Sprintf("auth event stream full; dropping %s", ev.Kind))
	}
}
