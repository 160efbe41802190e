package validator

import (
	"tms/pkg/logger"
	"tms/pkg/model"
	"tms/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type TransporterValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewTransporterValidator(log *logger.Logger) *TransporterValidator {
	return &TransporterValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *TransporterValidator) Validate(req *model.TransporterRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *TransporterValidator) ValidateTrucks(req *model.UpdateTrucksRequest) error {
	return validation.Struct(v.validate, req)
}
