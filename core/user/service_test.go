package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/trezcool/mahudhurio/core/user"
	inmemdb "github.com/trezcool/mahudhurio/storage/database/inmem"
)

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc := user.NewService(inmemdb.NewUserRepository(inmemdb.Open()))

	usr, err := svc.Create(ctx, user.NewUser{Name: "Jane Doe", Email: "Jane.Doe@Test.CD", Password: "passwd"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if usr.Email != "jane.doe@test.cd" {
		t.Errorf("email not normalized: %s", usr.Email)
	}

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		// unknown email and wrong password are indistinguishable
		{name: "unknown email", email: "who@test.cd", pwd: "passwd", wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", email: "jane.doe@test.cd", pwd: "nope", wantErr: user.ErrInvalidCredentials},
		{name: "empty password", email: "jane.doe@test.cd", pwd: "", wantErr: user.ErrInvalidCredentials},
		{name: "ok", email: "jane.doe@test.cd", pwd: "passwd"},
		{name: "ok mixed case email", email: "JANE.DOE@test.cd", pwd: "passwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.email, tt.pwd)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != usr.ID {
				t.Errorf("Authenticate() = %+v, want %+v", got, usr)
			}
		})
	}
}

func TestService_CheckEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	svc := user.NewService(inmemdb.NewUserRepository(inmemdb.Open()))

	if _, err := svc.Create(ctx, user.NewUser{Name: "Jane Doe", Email: "jane@test.cd", Password: "passwd"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.CheckEmailUniqueness(ctx, "other@test.cd"); err != nil {
		t.Errorf("CheckEmailUniqueness() error = %v", err)
	}
	if err := svc.CheckEmailUniqueness(ctx, "jane@test.cd"); err == nil {
		t.Error("CheckEmailUniqueness() expected error for taken email")
	}
}
