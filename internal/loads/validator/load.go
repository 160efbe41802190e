package validator

import (
	"fmt"
	"tms/pkg/logger"
	"tms/pkg/model"
	"tms/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type LoadValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewLoadValidator(log *logger.Logger) *LoadValidator {
	return &LoadValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *LoadValidator) Validate(req *model.LoadRequest) error {
	return validation.Struct(v.validate, req)
}

// ValidateFilter accepts an empty status or one of the known load states.
func (v *LoadValidator) ValidateFilter(f model.LoadFilter) error {
	switch f.Status {
	case "", model.LoadPosted, model.LoadOpenForBids, model.LoadBooked, model.LoadCancelled:
		return nil
	}
	return validation.ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("status must be one of: %s %s %s %s", model.LoadPosted, model.LoadOpenForBids, model.LoadBooked, model.LoadCancelled),
	}}
}
