package validator

import (
	"fmt"
	"tms/pkg/logger"
	"tms/pkg/model"
	"tms/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BidValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBidValidator(log *logger.Logger) *BidValidator {
	return &BidValidator{
		validate: validation.New(),
		logger:   log,
	}
}

// Validate also guards scoring: a rate of zero or below is rejected here.
func (v *BidValidator) Validate(req *model.BidRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *BidValidator) ValidateFilter(f model.BidFilter) error {
	switch f.Status {
	case "", model.BidPending, model.BidAccepted, model.BidRejected:
		return nil
	}
	return validation.ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("status must be one of: %s %s %s", model.BidPending, model.BidAccepted, model.BidRejected),
	}}
}
