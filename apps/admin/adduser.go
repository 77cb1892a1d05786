package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/imani/core"
	"github.com/trezcool/imani/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	lookup := uname
	if lookup == "" {
		lookup = email
	}

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, lookup)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			ID:       uuid.New().String(),
			Username: uname,
			Email:    email,
			IsActive: true,
			Roles:    []string{user.RoleMember},
		}
		if isAdmin {
			usr.Roles = user.AllRoles
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	active := true
	_, err = cli.usrRepo.UpdateUser(ctx, usr, &active)
	return err
}
