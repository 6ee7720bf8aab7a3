package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
)

// addProfile updates or creates a profile.Profile
func (cli *commandLine) addProfile(email, pwd string, isAdmin bool) error {
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	prof, err := cli.profRepo.GetProfileByEmail(email)
	if err != nil {
		if errors.Cause(err) != profile.ErrNotFound {
			return err
		}
		prof = profile.Profile{
			ID:          uuid.New().String(),
			Email:       email,
			DisplayName: profile.DefaultDisplayName(email),
			Role:        profile.RoleStudent,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if isAdmin {
			prof.Role = profile.RoleAdmin
		}
		if err = prof.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.profRepo.CreateProfile(prof)
		return err
	}

	if isAdmin {
		prof.Role = profile.RoleAdmin
	}
	if err = prof.SetPassword(pwd); err != nil {
		return err
	}
	prof.UpdatedAt = now
	isActive := true
	_, err = cli.profRepo.UpdateProfile(prof, &isActive)
	return err
}
