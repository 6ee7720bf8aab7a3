package main

import (
	"time"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	prof, err := cli.profRepo.GetProfileByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := prof.SetPassword(pwd); err != nil {
		return err
	}
	prof.UpdatedAt = time.Now().UTC()
	_, err = cli.profRepo.UpdateProfile(prof, nil)
	return err
}

func (cli *commandLine) setRole(email string, role profile.Role) error {
	if !role.Valid() {
		cli.printUsage()
		return errHelp
	}
	prof, err := cli.profRepo.GetProfileByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	prof.Role = role
	prof.UpdatedAt = time.Now().UTC()
	_, err = cli.profRepo.UpdateProfile(prof, nil)
	return err
}
