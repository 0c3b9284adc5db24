package course

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

type Course struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Grade     string    `json:"grade"`
	Section   string    `json:"section"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type NewCourse struct {
	Name    string `json:"name" validate:"required"`
	Grade   string `json:"grade" validate:"required"`
	Section string `json:"section" validate:"required"`
}

func (nc *NewCourse) Validate(_ context.Context, validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Grade = core.CleanString(nc.Grade)
	nc.Section = core.CleanString(nc.Section)
	return validate.Struct(nc)
}

type UpdateCourse struct {
	Name    string `json:"name" validate:"required"`
	Grade   string `json:"grade" validate:"required"`
	Section string `json:"section" validate:"required"`
}

func (uc *UpdateCourse) Validate(_ context.Context, validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Grade = core.CleanString(uc.Grade)
	uc.Section = core.CleanString(uc.Section)
	return validate.Struct(uc)
}
