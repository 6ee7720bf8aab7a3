package profile

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
)

var (
	// errors
	ErrNotFound    = errors.New("profile not found")
	ErrEmailExists = errors.New("a profile with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excluded ...Profile) error
		CreateProfile(prof Profile) (Profile, error)
		QueryAllProfiles() ([]Profile, error)
		GetProfileByID(id string) (Profile, error)
		GetProfileByEmail(email string) (Profile, error)
		UpdateProfile(prof Profile, isActive *bool) (Profile, error)
	}

	ServiceInterface interface {
		CheckEmailUniqueness(email string, excluded ...Profile) error
		Create(np NewProfile) (Profile, error)
		QueryAll() ([]Profile, error)
		GetByID(id string) (Profile, error)
		GetByEmail(email string) (Profile, error)
		Resolve(principalID, email string) (Profile, error)
		Update(id string, up UpdateProfile) (Profile, error)
		SetLastLogin(prof Profile) (Profile, error)
		SetRole(id string, role Role) (Profile, error)
		RequestPasswordReset(email string) error
		ResetPassword(rp ResetProfilePassword) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) CheckEmailUniqueness(email string, excluded ...Profile) error {
	if err := svc.repo.CheckEmailUniqueness(email, excluded...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(np NewProfile) (Profile, error) {
	now := time.Now().UTC()
	role := np.Role
	if role == "" {
		role = RoleStudent
	}
	name := np.DisplayName
	if name == "" {
		name = DefaultDisplayName(np.Email)
	}
	prof := Profile{
		ID:          newID(),
		Email:       np.Email,
		DisplayName: name,
		Role:        role,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := prof.SetPassword(np.Password); err != nil {
		return Profile{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateProfile(prof)
}

func (svc *Service) QueryAll() ([]Profile, error) {
	return svc.repo.QueryAllProfiles()
}

func (svc *Service) GetByID(id string) (Profile, error) {
	return svc.repo.GetProfileByID(id)
}

func (svc *Service) GetByEmail(email string) (Profile, error) {
	return svc.repo.GetProfileByEmail(core.CleanString(email, true /* lower */))
}

// Resolve returns the Profile for a principal, synthesizing a default one
// (role student, display name from the email local-part) when no record
// exists yet. Any failure other than the "no row" condition is returned
// as-is; the caller must then treat the principal as unauthorized rather
// than fabricate a profile.
//
// Resolve is idempotent under duplicate triggers for the same principal:
// a lost create race falls back to reading the winner's row.
func (svc *Service) Resolve(principalID, email string) (Profile, error) {
	prof, err := svc.repo.GetProfileByID(principalID)
	if err == nil {
		return prof, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Profile{}, errors.Wrap(err, "fetching profile")
	}

	now := time.Now().UTC()
	prof = Profile{
		ID:          principalID,
		Email:       core.CleanString(email, true /* lower */),
		DisplayName: DefaultDisplayName(email),
		Role:        RoleStudent,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, cErr := svc.repo.CreateProfile(prof)
	if cErr == nil {
		return created, nil
	}
	// a concurrent resolution may have won the create; its row is equivalent
	if existing, gErr := svc.repo.GetProfileByID(principalID); gErr == nil {
		return existing, nil
	}
	return Profile{}, errors.Wrap(cErr, "synthesizing default profile")
}

func (svc *Service) Update(id string, up UpdateProfile) (Profile, error) {
	prof := Profile{
		ID:          id,
		Email:       up.Email,
		DisplayName: up.DisplayName,
		Role:        up.Role,
		UpdatedAt:   time.Now().UTC(),
	}
	if up.Password != "" {
		if err := prof.SetPassword(up.Password); err != nil {
			return Profile{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateProfile(prof, up.IsActive)
}

func (svc *Service) SetLastLogin(prof Profile) (Profile, error) {
	prof.LastLogin = time.Now().UTC()
	prof.UpdatedAt = prof.LastLogin
	return svc.repo.UpdateProfile(prof, nil)
}

func (svc *Service) SetRole(id string, role Role) (Profile, error) {
	if !role.Valid() {
		return Profile{}, errors.Errorf("unknown role %q", role)
	}
	prof, err := svc.repo.GetProfileByID(id)
	if err != nil {
		return Profile{}, err
	}
	prof.Role = role
	prof.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfile(prof, nil)
}

func (svc *Service) RequestPasswordReset(email string) error {
	prof, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(prof)
	return nil
}

func (svc *Service) sendPasswordResetMail(prof Profile) {
	token, err := MakeToken(prof, svc.conf)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: prof.DisplayName, Address: prof.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			DisplayName string
			UID         string
			Token       string
		}{
			DisplayName: prof.DisplayName,
			UID:         EncodeUID(prof),
			Token:       token,
		},
	})
}

func (svc *Service) ResetPassword(rp ResetProfilePassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	prof, err := svc.repo.GetProfileByID(id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return errors.Wrap(err, "fetching profile")
	}
	if err = verifyToken(prof, rp.Token, svc.conf); err != nil {
		return core.NewValidationError(err)
	}
	if err = prof.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	prof.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateProfile(prof, nil); err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return nil
}

var newID = func() string { return uuid.New().String() } // mockable
