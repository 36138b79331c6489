// Package validator adapts go-playground/validator to echo's Validator
// interface so handlers can call c.Validate on bound request structs.
package validator

import (
	"net/http"

	playground "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Validator struct {
	validate *playground.Validate
}

func New() *Validator {
	return &Validator{validate: playground.New()}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
