package service

import (
	"context"
	"errors"
	"sync"
	bidsrepo "tms/internal/bids/repository"
	bookingsrepo "tms/internal/bookings/repository"
	"tms/internal/events"
	loadserrors "tms/internal/loads/errors"
	"tms/internal/loads/repository"
	"tms/internal/loads/validator"
	"tms/internal/scoring"
	transportersrepo "tms/internal/transporters/repository"
	"tms/pkg/config"
	"tms/pkg/db"
	apperrors "tms/pkg/errors"
	"tms/pkg/model"
	"tms/pkg/sanitizer"
	"tms/pkg/validation"
	"time"

	"github.com/google/uuid"
)

type LoadService interface {
	Create(ctx context.Context, req *model.LoadRequest) (*model.Load, error)
	GetByID(ctx context.Context, id string) (*model.LoadDetail, error)
	GetAll(ctx context.Context, filter model.LoadFilter, limit int, offset int64) ([]*model.Load, int64, error)
	Cancel(ctx context.Context, id string) (*model.Load, error)
	BestBids(ctx context.Context, id string) ([]*model.RankedBid, error)
}

type loadService struct {
	repo         repository.LoadRepository
	bids         bidsrepo.BidRepository
	bookings     bookingsrepo.BookingRepository
	transporters transportersrepo.TransporterRepository
	txManager    db.TransactionManager
	publisher    events.Publisher
	validator    *validator.LoadValidator
	cfg          *config.Config
}

func NewLoadService(
	repo repository.LoadRepository,
	bids bidsrepo.BidRepository,
	bookings bookingsrepo.BookingRepository,
	transporters transportersrepo.TransporterRepository,
	txManager db.TransactionManager,
	publisher events.Publisher,
	validator *validator.LoadValidator,
	cfg *config.Config,
) LoadService {
	return &loadService{
		repo:         repo,
		bids:         bids,
		bookings:     bookings,
		transporters: transporters,
		txManager:    txManager,
		publisher:    publisher,
		validator:    validator,
		cfg:          cfg,
	}
}

func (s *loadService) Create(ctx context.Context, req *model.LoadRequest) (*model.Load, error) {
	s.sanitize(req)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Load validation failed", "error", err)
		return nil, validation.ToAppError(err)
	}

	load := &model.Load{
		ID:            uuid.NewString(),
		ShipperID:     req.ShipperID,
		LoadingCity:   req.LoadingCity,
		UnloadingCity: req.UnloadingCity,
		LoadingDate:   req.LoadingDate.UTC(),
		ProductType:   req.ProductType,
		Weight:        req.Weight,
		WeightUnit:    req.WeightUnit,
		TruckType:     req.TruckType,
		NoOfTrucks:    req.NoOfTrucks,
		Status:        model.LoadPosted,
		Version:       0,
		DatePosted:    time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := s.repo.Create(ctx, load); err != nil {
		s.cfg.Log.Error("Failed to create load", "error", err)
		return nil, apperrors.Internal("Failed to create load", err)
	}

	s.cfg.Log.Info("Load posted",
		"load_id", load.ID,
		"shipper_id", load.ShipperID,
		"truck_type", load.TruckType,
		"no_of_trucks", load.NoOfTrucks,
	)
	s.publisher.Publish(ctx, events.LoadPosted(load))
	return load, nil
}

func (s *loadService) GetByID(ctx context.Context, id string) (*model.LoadDetail, error) {
	load, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	allocated, err := s.bookings.SumAllocatedByLoad(ctx, load.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to compute allocated trucks", err)
	}

	pending, err := s.bids.FindAll(ctx, model.BidFilter{LoadID: load.ID, Status: model.BidPending}, 0, 0)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve active bids", err)
	}

	return &model.LoadDetail{
		Load:            load,
		RemainingTrucks: load.NoOfTrucks - allocated,
		ActiveBids:      pending,
	}, nil
}

func (s *loadService) GetAll(ctx context.Context, filter model.LoadFilter, limit int, offset int64) ([]*model.Load, int64, error) {
	if err := s.validator.ValidateFilter(filter); err != nil {
		return nil, 0, validation.ToAppError(err)
	}

	var count int64
	var loads []*model.Load
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count loads", "error", err)
			errCount = apperrors.Internal("Failed to count loads", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		loads, err = s.repo.FindAll(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list loads", "error", err)
			errFind = apperrors.Internal("Failed to retrieve loads", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return loads, count, nil
}

// Cancel withdraws a load that has not been fully booked.
func (s *loadService) Cancel(ctx context.Context, id string) (*model.Load, error) {
	var cancelled *model.Load

	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		load, err := s.find(txCtx, id)
		if err != nil {
			return err
		}

		switch load.Status {
		case model.LoadBooked:
			return apperrors.InvalidState("Can't cancel a BOOKED load")
		case model.LoadCancelled:
			return apperrors.InvalidState("Load is already cancelled")
		}

		if err := s.repo.UpdateStatus(txCtx, load, model.LoadCancelled); err != nil {
			if errors.Is(err, db.ErrVersionConflict) {
				return apperrors.Conflict("Another transaction modified the load. Please retry.")
			}
			return apperrors.Internal("Failed to cancel load", err)
		}
		cancelled = load
		return nil
	})
	if err != nil {
		s.logFailure("Load cancellation failed", err, "load_id", id)
		return nil, apperrors.FromTransaction(err, "Failed to cancel load")
	}

	s.cfg.Log.Info("Load cancelled", "load_id", cancelled.ID, "version", cancelled.Version)
	s.publisher.Publish(ctx, events.LoadCancelled(cancelled))
	return cancelled, nil
}

// BestBids ranks the load's PENDING bids, best first.
func (s *loadService) BestBids(ctx context.Context, id string) ([]*model.RankedBid, error) {
	load, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	pending, err := s.bids.FindAll(ctx, model.BidFilter{LoadID: load.ID, Status: model.BidPending}, 0, 0)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bids", err)
	}
	if len(pending) == 0 {
		return []*model.RankedBid{}, nil
	}

	ids := make([]string, 0, len(pending))
	for _, b := range pending {
		ids = append(ids, b.TransporterID)
	}
	transporters, err := s.transporters.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve transporters", err)
	}

	ranked := scoring.Rank(pending, transporters)
	s.cfg.Log.Debug("Bids ranked", "load_id", load.ID, "count", len(ranked))
	return ranked, nil
}

// --- Helpers ---

func (s *loadService) find(ctx context.Context, id string) (*model.Load, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Load ID cannot be empty")
	}
	load, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, loadserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Load", id)
		}
		return nil, apperrors.Internal("Failed to retrieve load", err)
	}
	return load, nil
}

func (s *loadService) sanitize(req *model.LoadRequest) {
	req.ShipperID = sanitizer.SanitizeID(req.ShipperID)
	req.LoadingCity = sanitizer.SanitizeCity(req.LoadingCity)
	req.UnloadingCity = sanitizer.SanitizeCity(req.UnloadingCity)
	req.ProductType = sanitizer.SanitizeProductType(req.ProductType)
	req.TruckType = sanitizer.SanitizeTruckType(req.TruckType)
}

func (s *loadService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if apperrors.HasCode(err, apperrors.CodeInternal) || !apperrors.IsAppError(err) {
		s.cfg.Log.Error(msg, args...)
		return
	}
	s.cfg.Log.Warn(msg, args...)
}
