package main

import (
	"context"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/user"
)

// addUser creates a teacher account.
func (cli *commandLine) addUser(name, email, pwd string) error {
	ctx := context.Background()

	nu := user.NewUser{Name: name, Email: email, Password: pwd}
	if err := nu.Validate(ctx, core.Validate, cli.usrSvc); err != nil {
		return err
	}
	_, err := cli.usrSvc.Create(ctx, nu)
	return err
}
