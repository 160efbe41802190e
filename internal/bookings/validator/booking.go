package validator

import (
	"fmt"
	"tms/pkg/logger"
	"tms/pkg/model"
	"tms/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *BookingValidator) ValidateFilter(f model.BookingFilter) error {
	switch f.Status {
	case "", model.BookingConfirmed, model.BookingCancelled:
		return nil
	}
	return validation.ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("status must be one of: %s %s", model.BookingConfirmed, model.BookingCancelled),
	}}
}
