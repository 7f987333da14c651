package adaptor

import (
	"github.com/go-playground/validator/v10"
	"github.com/ponyo877/livechat/server/domain"
)

type joinRequest struct {
	User string `json:"user" validate:"required,max=20,displayname"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("displayname", func(fl validator.FieldLevel) bool {
		return domain.IsPrintableName(fl.Field().String())
	})
	return v
}
