package main

import (
	"context"
	"fmt"

	"github.com/trezcool/learnhub/core/session"
)

// addUser updates or creates a user.User, then drops their cached display name.
func (cli *commandLine) addUser(name, email, pwd string, role session.Role) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.AddOrUpdate(ctx, name, email, pwd, role)
	if err != nil {
		return err
	}
	if cli.profiles != nil {
		if err := cli.profiles.Forget(ctx, usr.ID); err != nil {
			fmt.Printf("warning: could not clear the cached display name of %s: %v\n", usr.ID, err)
		}
	}
	fmt.Printf("user %s <%s> saved (%s)\n", usr.ID, usr.Email, usr.Role)
	return nil
}
