package service

import (
	"context"
	"errors"
	transporterserrors "tms/internal/transporters/errors"
	"tms/internal/transporters/repository"
	"tms/internal/transporters/validator"
	"tms/pkg/config"
	"tms/pkg/db"
	apperrors "tms/pkg/errors"
	"tms/pkg/model"
	"tms/pkg/sanitizer"
	"tms/pkg/validation"

	"github.com/google/uuid"
)

type TransporterService interface {
	Register(ctx context.Context, req *model.TransporterRequest) (*model.Transporter, error)
	GetByID(ctx context.Context, id string) (*model.Transporter, error)
	UpdateTrucks(ctx context.Context, id string, req *model.UpdateTrucksRequest) (*model.Transporter, error)
}

type transporterService struct {
	repo      repository.TransporterRepository
	txManager db.TransactionManager
	validator *validator.TransporterValidator
	cfg       *config.Config
}

func NewTransporterService(
	repo repository.TransporterRepository,
	txManager db.TransactionManager,
	validator *validator.TransporterValidator,
	cfg *config.Config,
) TransporterService {
	return &transporterService{
		repo:      repo,
		txManager: txManager,
		validator: validator,
		cfg:       cfg,
	}
}

// Register stores a new transporter. The submitted truck counts are both the
// initial availability and the fleet size that restores may never exceed.
func (s *transporterService) Register(ctx context.Context, req *model.TransporterRequest) (*model.Transporter, error) {
	req.CompanyName = sanitizer.SanitizeName(req.CompanyName)
	if req.AvailableTrucks != nil {
		req.AvailableTrucks = sanitizer.SanitizeTruckMap(req.AvailableTrucks)
	}

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Transporter validation failed", "error", err)
		return nil, validation.ToAppError(err)
	}

	trucks := model.TruckMap(req.AvailableTrucks)
	transporter := &model.Transporter{
		ID:              uuid.NewString(),
		CompanyName:     req.CompanyName,
		Rating:          req.Rating,
		AvailableTrucks: trucks.Clone(),
		FleetTrucks:     trucks.Clone(),
		Version:         0,
	}

	if err := s.repo.Create(ctx, transporter); err != nil {
		s.cfg.Log.Error("Failed to create transporter", "error", err)
		return nil, apperrors.Internal("Failed to create transporter", err)
	}

	s.cfg.Log.Info("Transporter registered",
		"transporter_id", transporter.ID,
		"company_name", transporter.CompanyName,
		"truck_types", len(transporter.AvailableTrucks),
	)
	return transporter, nil
}

func (s *transporterService) GetByID(ctx context.Context, id string) (*model.Transporter, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Transporter ID cannot be empty")
	}

	transporter, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, transporterserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Transporter", id)
		}
		return nil, apperrors.Internal("Failed to retrieve transporter", err)
	}
	return transporter, nil
}

// UpdateTrucks replaces the free counts under the same version guard that
// bookings use, so it can never hand out trucks a concurrent acceptance has
// just deducted.
func (s *transporterService) UpdateTrucks(ctx context.Context, id string, req *model.UpdateTrucksRequest) (*model.Transporter, error) {
	if req.AvailableTrucks != nil {
		req.AvailableTrucks = sanitizer.SanitizeTruckMap(req.AvailableTrucks)
	}
	if err := s.validator.ValidateTrucks(req); err != nil {
		s.cfg.Log.Warn("Truck update validation failed", "transporter_id", id, "error", err)
		return nil, validation.ToAppError(err)
	}

	var updated *model.Transporter
	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		transporter, err := s.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		transporter.SetAvailable(model.TruckMap(req.AvailableTrucks))
		if err := s.repo.UpdateCapacity(txCtx, transporter); err != nil {
			if errors.Is(err, db.ErrVersionConflict) {
				return apperrors.Conflict("Another transaction modified the transporter capacity. Please retry.")
			}
			return apperrors.Internal("Failed to update transporter trucks", err)
		}

		updated = transporter
		return nil
	})
	if err != nil {
		err = apperrors.FromTransaction(err, "Failed to update transporter trucks")
		if apperrors.HasCode(err, apperrors.CodeInternal) {
			s.cfg.Log.Error("Truck update failed", "transporter_id", id, "error", err)
		} else {
			s.cfg.Log.Warn("Truck update failed", "transporter_id", id, "error", err)
		}
		return nil, err
	}

	s.cfg.Log.Info("Transporter trucks updated",
		"transporter_id", updated.ID,
		"version", updated.Version,
	)
	return updated, nil
}
