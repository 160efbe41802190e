package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	bidserrors "tms/internal/bids/errors"
	"tms/internal/bids/repository"
	"tms/internal/bids/validator"
	"tms/internal/events"
	loadserrors "tms/internal/loads/errors"
	loadsrepo "tms/internal/loads/repository"
	transporterserrors "tms/internal/transporters/errors"
	transportersrepo "tms/internal/transporters/repository"
	"tms/pkg/config"
	"tms/pkg/db"
	apperrors "tms/pkg/errors"
	"tms/pkg/metrics"
	"tms/pkg/model"
	"tms/pkg/sanitizer"
	"tms/pkg/validation"
	"time"

	"github.com/google/uuid"
)

const rejectedByShipper = "rejected by shipper"

type BidService interface {
	Submit(ctx context.Context, req *model.BidRequest) (*model.Bid, error)
	GetByID(ctx context.Context, id string) (*model.Bid, error)
	GetAll(ctx context.Context, filter model.BidFilter, limit int, offset int64) ([]*model.Bid, int64, error)
	Reject(ctx context.Context, id string) (*model.Bid, error)
}

type bidService struct {
	repo         repository.BidRepository
	loads        loadsrepo.LoadRepository
	transporters transportersrepo.TransporterRepository
	txManager    db.TransactionManager
	publisher    events.Publisher
	metrics      *metrics.Collector
	validator    *validator.BidValidator
	cfg          *config.Config
}

func NewBidService(
	repo repository.BidRepository,
	loads loadsrepo.LoadRepository,
	transporters transportersrepo.TransporterRepository,
	txManager db.TransactionManager,
	publisher events.Publisher,
	collector *metrics.Collector,
	validator *validator.BidValidator,
	cfg *config.Config,
) BidService {
	return &bidService{
		repo:         repo,
		loads:        loads,
		transporters: transporters,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      collector,
		validator:    validator,
		cfg:          cfg,
	}
}

// Submit places a PENDING bid after the optimistic Phase 1 capacity check.
// Nothing is reserved: several bids may count on the same trucks, and the
// authoritative check happens when a bid is accepted.
func (s *bidService) Submit(ctx context.Context, req *model.BidRequest) (*model.Bid, error) {
	req.LoadID = sanitizer.SanitizeID(req.LoadID)
	req.TransporterID = sanitizer.SanitizeID(req.TransporterID)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Bid validation failed", "error", err)
		return nil, validation.ToAppError(err)
	}

	bid := &model.Bid{
		ID:            uuid.NewString(),
		LoadID:        req.LoadID,
		TransporterID: req.TransporterID,
		ProposedRate:  req.ProposedRate,
		TrucksOffered: req.TrucksOffered,
		Status:        model.BidPending,
		DateSubmitted: time.Now().UTC().Truncate(time.Millisecond),
	}

	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		load, err := s.loads.FindByID(txCtx, bid.LoadID)
		if err != nil {
			if errors.Is(err, loadserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Load", bid.LoadID)
			}
			return apperrors.Internal("Failed to retrieve load", err)
		}
		if !load.Biddable() {
			return apperrors.InvalidState(fmt.Sprintf("Can't bid on a load with status %s", load.Status))
		}

		transporter, err := s.transporters.FindByID(txCtx, bid.TransporterID)
		if err != nil {
			if errors.Is(err, transporterserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Transporter", bid.TransporterID)
			}
			return apperrors.Internal("Failed to retrieve transporter", err)
		}
		if !transporter.CanBid(load.TruckType, bid.TrucksOffered) {
			s.metrics.RecordCapacityRejection(metrics.PhaseSubmission)
			return apperrors.InsufficientCapacity(fmt.Sprintf(
				"Transporter doesn't have %d %s trucks available", bid.TrucksOffered, load.TruckType))
		}

		if err := s.repo.Create(txCtx, bid); err != nil {
			return apperrors.Internal("Failed to create bid", err)
		}

		if load.Status == model.LoadPosted {
			if err := s.loads.UpdateStatus(txCtx, load, model.LoadOpenForBids); err != nil {
				if errors.Is(err, db.ErrVersionConflict) {
					return apperrors.Conflict("Another transaction modified the load. Please retry.")
				}
				return apperrors.Internal("Failed to open load for bids", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure("Bid submission failed", err, "load_id", bid.LoadID, "transporter_id", bid.TransporterID)
		return nil, apperrors.FromTransaction(err, "Failed to submit bid")
	}

	s.cfg.Log.Info("Bid submitted",
		"bid_id", bid.ID,
		"load_id", bid.LoadID,
		"transporter_id", bid.TransporterID,
		"trucks_offered", bid.TrucksOffered,
	)
	s.publisher.Publish(ctx, events.BidSubmitted(bid))
	return bid, nil
}

func (s *bidService) GetByID(ctx context.Context, id string) (*model.Bid, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Bid ID cannot be empty")
	}

	bid, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bidserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Bid", id)
		}
		return nil, apperrors.Internal("Failed to retrieve bid", err)
	}
	return bid, nil
}

func (s *bidService) GetAll(ctx context.Context, filter model.BidFilter, limit int, offset int64) ([]*model.Bid, int64, error) {
	if err := s.validator.ValidateFilter(filter); err != nil {
		return nil, 0, validation.ToAppError(err)
	}

	var count int64
	var bids []*model.Bid
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count bids", "error", err)
			errCount = apperrors.Internal("Failed to count bids", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bids, err = s.repo.FindAll(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bids", "error", err)
			errFind = apperrors.Internal("Failed to retrieve bids", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bids, count, nil
}

func (s *bidService) Reject(ctx context.Context, id string) (*model.Bid, error) {
	var rejected *model.Bid

	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		bid, err := s.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if bid.Status != model.BidPending {
			return apperrors.InvalidState(fmt.Sprintf("Can only reject PENDING bids. Current status: %s", bid.Status))
		}

		if err := s.repo.UpdateStatus(txCtx, bid, model.BidRejected); err != nil {
			if errors.Is(err, db.ErrVersionConflict) {
				return apperrors.Conflict("Another transaction modified the bid. Please retry.")
			}
			return apperrors.Internal("Failed to reject bid", err)
		}
		rejected = bid
		return nil
	})
	if err != nil {
		s.logFailure("Bid rejection failed", err, "bid_id", id)
		return nil, apperrors.FromTransaction(err, "Failed to reject bid")
	}

	s.cfg.Log.Info("Bid rejected", "bid_id", rejected.ID, "load_id", rejected.LoadID)
	s.publisher.Publish(ctx, events.BidRejectedEvent(rejected, rejectedByShipper))
	return rejected, nil
}

func (s *bidService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if apperrors.HasCode(err, apperrors.CodeInternal) || !apperrors.IsAppError(err) {
		s.cfg.Log.Error(msg, args...)
		return
	}
	s.cfg.Log.Warn(msg, args...)
}
