package database

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
)

type profileRow struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	DisplayName  string     `db:"display_name"`
	Role         string     `db:"role"`
	IsActive     bool       `db:"is_active"`
	PasswordHash null.Bytes `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	LastLogin    null.Time  `db:"last_login"`
}

func (r profileRow) profile() profile.Profile {
	return profile.Profile{
		ID:           r.ID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		Role:         profile.Role(r.Role),
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash.Bytes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

func newProfileRow(prof profile.Profile) profileRow {
	return profileRow{
		ID:           prof.ID,
		Email:        prof.Email,
		DisplayName:  prof.DisplayName,
		Role:         string(prof.Role),
		IsActive:     prof.IsActive,
		PasswordHash: null.BytesFrom(prof.PasswordHash),
		CreatedAt:    prof.CreatedAt,
		UpdatedAt:    prof.UpdatedAt,
		LastLogin:    null.NewTime(prof.LastLogin, !prof.LastLogin.IsZero()),
	}
}

type profileRepository struct {
	db *sqlx.DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *sqlx.DB) profile.Repository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) CheckEmailUniqueness(email string, excluded ...profile.Profile) error {
	query := `SELECT EXISTS (SELECT 1 FROM profile WHERE email = ? AND id NOT IN (?))`
	exclIDs := []string{""} // IN () is invalid; a blank UUID never matches
	for _, prof := range excluded {
		exclIDs = append(exclIDs, prof.ID)
	}
	query, args, err := sqlx.In(query, email, exclIDs)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var exists bool
	if err = repo.db.Get(&exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return profile.ErrEmailExists
	}
	return nil
}

func (repo *profileRepository) CreateProfile(prof profile.Profile) (profile.Profile, error) {
	row := newProfileRow(prof)
	_, err := repo.db.NamedExec(`
		INSERT INTO profile (id, email, display_name, role, is_active, password_hash, created_at, updated_at, last_login)
		VALUES (:id, :email, :display_name, :role, :is_active, :password_hash, :created_at, :updated_at, :last_login)`,
		row,
	)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "inserting profile")
	}
	return prof, nil
}

func (repo *profileRepository) QueryAllProfiles() ([]profile.Profile, error) {
	var rows []profileRow
	if err := repo.db.Select(&rows, `SELECT * FROM profile ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying profiles")
	}
	profs := make([]profile.Profile, 0, len(rows))
	for _, row := range rows {
		profs = append(profs, row.profile())
	}
	return profs, nil
}

func (repo *profileRepository) GetProfileByID(id string) (profile.Profile, error) {
	var row profileRow
	err := repo.db.Get(&row, `SELECT * FROM profile WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, errors.Wrap(err, "fetching profile by id")
	}
	return row.profile(), nil
}

func (repo *profileRepository) GetProfileByEmail(email string) (profile.Profile, error) {
	var row profileRow
	err := repo.db.Get(&row, `SELECT * FROM profile WHERE email = $1`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, errors.Wrap(err, "fetching profile by email")
	}
	return row.profile(), nil
}

// UpdateProfile merges set fields into the stored row; zero-valued fields of
// prof keep their stored value.
func (repo *profileRepository) UpdateProfile(prof profile.Profile, isActive *bool) (profile.Profile, error) {
	orig, err := repo.GetProfileByID(prof.ID)
	if err != nil {
		return profile.Profile{}, err
	}

	if prof.Email != "" {
		orig.Email = prof.Email
	}
	if prof.DisplayName != "" {
		orig.DisplayName = prof.DisplayName
	}
	if prof.Role != "" {
		orig.Role = prof.Role
	}
	if prof.PasswordHash != nil {
		orig.PasswordHash = prof.PasswordHash
	}
	if !prof.LastLogin.IsZero() {
		orig.LastLogin = prof.LastLogin
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	orig.UpdatedAt = prof.UpdatedAt

	row := newProfileRow(orig)
	_, err = repo.db.NamedExec(`
		UPDATE profile
		SET email = :email, display_name = :display_name, role = :role, is_active = :is_active,
		    password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "updating profile")
	}
	return orig, nil
}
