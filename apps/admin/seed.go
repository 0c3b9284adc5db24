package main

import (
	"context"
	"fmt"

	"github.com/trezcool/mahudhurio/core/user"
)

// default account created on a fresh install
var demoUser = user.NewUser{
	Name:     "Profesor Demo",
	Email:    "demo@escuela.edu.gt",
	Password: "demo123",
}

// seed creates the demo teacher account. It is skipped when any user already
// exists so re-running it never clobbers real data.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	count, err := cli.usrSvc.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		fmt.Println("users already exist; skipping seed")
		return nil
	}

	if _, err = cli.usrSvc.Create(ctx, demoUser); err != nil {
		return err
	}
	fmt.Printf("created %s (%s)\n", demoUser.Name, demoUser.Email)
	return nil
}
