package profile

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
)

// Role is the closed set of application roles. Anything outside this set is
// never authorized anywhere.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

var AllRoles = []Role{RoleStudent, RoleStaff, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// In checks membership of r in the given role set.
func (r Role) In(roles []Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Profile is the durable identity/role record associated with a principal.
// Exactly one Profile exists per principal ID.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (p *Profile) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	return nil
}

func (p *Profile) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(pwd))
}

func (p *Profile) IsStudent() bool { return p.Role == RoleStudent }
func (p *Profile) IsStaff() bool   { return p.Role == RoleStaff }
func (p *Profile) IsAdmin() bool   { return p.Role == RoleAdmin }

// DefaultDisplayName derives a best-effort display name from the email local-part.
func DefaultDisplayName(email string) string {
	return core.EmailLocalPart(core.CleanString(email, true /* lower */))
}

// NewProfile contains information needed to register a new Profile.
type NewProfile struct {
	Email           string `json:"email" validate:"required,email"`
	DisplayName     string `json:"display_name"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            Role   `json:"role" validate:"omitempty,role"`
}

func (np *NewProfile) Validate(validate *validator.Validate, svc ServiceInterface) error {
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.DisplayName = core.CleanString(np.DisplayName)

	if err := validate.Struct(np); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(np.Email)
}

// UpdateProfile defines what information may be provided to modify an existing Profile.
// Role and IsActive changes are administrative operations.
type UpdateProfile struct {
	DisplayName     string `json:"display_name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            Role   `json:"role" validate:"omitempty,role"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (up *UpdateProfile) Validate(orig Profile, validate *validator.Validate, svc ServiceInterface) error {
	name := core.CleanString(up.DisplayName)
	if name != "" {
		up.DisplayName = name
	} else {
		up.DisplayName = orig.DisplayName
	}

	email := core.CleanString(up.Email, true /* lower */)
	if email != "" {
		up.Email = email
	} else {
		up.Email = orig.Email
	}

	if err := validate.Struct(up); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(up.Email, orig)
}

type ResetProfilePassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetProfilePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

// InitValidators registers this package's custom validators; see validators.go.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	registerValidators(validate, translator)
}
