package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/user"
)

var errUnknownRole = errors.New("unknown role")

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, uname, email, pwd, role string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	if role != "" && user.RolePriority(role) == 0 {
		return errors.Wrap(errUnknownRole, role)
	}

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	if err == user.ErrNotFound {
		usr, err = cli.usrRepo.GetUserByUsernameOrEmail(ctx, email)
	}
	created := err == user.ErrNotFound
	switch {
	case created:
		now := time.Now().UTC()
		usr = user.User{Username: uname, Email: email, Roles: []string{}, CreatedAt: now}
	case err != nil:
		return err
	}

	if name != "" {
		usr.Name = name
	} else if usr.Name == "" {
		usr.Name = uname
	}
	if role != "" {
		usr.Roles = []string{role}
	}
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if created {
		usr, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		usr, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "user %q saved (id %d)\n", usr.Username, usr.ID)
	return nil
}

func (cli *commandLine) resetPassword(uname, pwd string) error {
	return cli.usrSvc.SetPassword(context.Background(), core.CleanString(uname, true /* lower */), pwd)
}
