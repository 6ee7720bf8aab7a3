package dummydb

import (
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
)

type profileRepository struct {
	db *profileTable
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) profile.Repository {
	return &profileRepository{db: db.profile}
}

func (repo *profileRepository) query() []profile.Profile {
	profs := make([]profile.Profile, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		profs = append(profs, *p)
	}
	return profs
}

func (repo *profileRepository) CheckEmailUniqueness(email string, excluded ...profile.Profile) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, prof := range repo.query() {
		if prof.Email != email {
			continue
		}
		if !isExcluded(prof, excluded) {
			return profile.ErrEmailExists
		}
	}
	return nil
}

func (repo *profileRepository) CreateProfile(prof profile.Profile) (profile.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[prof.ID]; ok {
		return profile.Profile{}, profile.ErrEmailExists
	}
	repo.db.table[prof.ID] = &prof
	return prof, nil
}

func (repo *profileRepository) QueryAllProfiles() ([]profile.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *profileRepository) GetProfileByID(id string) (profile.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prof, ok := repo.db.table[id]; ok {
		return *prof, nil
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) GetProfileByEmail(email string) (profile.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, prof := range repo.query() {
		if prof.Email == email {
			return prof, nil
		}
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) UpdateProfile(prof profile.Profile, isActive *bool) (profile.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[prof.ID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
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

	repo.db.table[prof.ID] = orig
	return *orig, nil
}

func isExcluded(prof profile.Profile, excluded []profile.Profile) bool {
	for _, excl := range excluded {
		if excl.ID == prof.ID {
			return true
		}
	}
	return false
}
