package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	bidserrors "tms/internal/bids/errors"
	bidsrepo "tms/internal/bids/repository"
	bookingserrors "tms/internal/bookings/errors"
	"tms/internal/bookings/repository"
	"tms/internal/bookings/validator"
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

const (
	OperationAccept = "accept"
	OperationCancel = "cancel"
)

type BookingService interface {
	AcceptBid(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo         repository.BookingRepository
	bids         bidsrepo.BidRepository
	loads        loadsrepo.LoadRepository
	transporters transportersrepo.TransporterRepository
	txManager    db.TransactionManager
	publisher    events.Publisher
	metrics      *metrics.Collector
	validator    *validator.BookingValidator
	cfg          *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	bids bidsrepo.BidRepository,
	loads loadsrepo.LoadRepository,
	transporters transportersrepo.TransporterRepository,
	txManager db.TransactionManager,
	publisher events.Publisher,
	collector *metrics.Collector,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		bids:         bids,
		loads:        loads,
		transporters: transporters,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      collector,
		validator:    validator,
		cfg:          cfg,
	}
}

// AcceptBid turns a PENDING bid into a CONFIRMED booking. Every fact the
// decision depends on is read fresh inside the transaction, and the
// transporter and the load are both written with a version check. A lost
// race surfaces as CONFLICT and is never retried here.
func (s *bookingService) AcceptBid(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	req.BidID = sanitizer.SanitizeID(req.BidID)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, validation.ToAppError(err)
	}

	var (
		booking  *model.Booking
		rejected *model.Bid
	)

	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		booking, rejected = nil, nil

		bid, err := s.findBid(txCtx, req.BidID)
		if err != nil {
			return err
		}
		if bid.Status != model.BidPending {
			return apperrors.InvalidState(fmt.Sprintf("Can only accept PENDING bids. Current status: %s", bid.Status))
		}

		load, err := s.findLoad(txCtx, bid.LoadID)
		if err != nil {
			return err
		}
		if load.Status == model.LoadCancelled {
			return apperrors.InvalidState("Can't accept a bid on a CANCELLED load")
		}

		allocated, err := s.repo.SumAllocatedByLoad(txCtx, load.ID)
		if err != nil {
			return apperrors.Internal("Failed to compute allocated trucks", err)
		}
		remaining := load.NoOfTrucks - allocated
		if bid.TrucksOffered > remaining {
			s.metrics.RecordCapacityRejection(metrics.PhaseLoad)
			return apperrors.InsufficientCapacity(fmt.Sprintf(
				"Load only needs %d more trucks, but bid offers %d", remaining, bid.TrucksOffered))
		}

		transporter, err := s.findTransporter(txCtx, bid.TransporterID)
		if err != nil {
			return err
		}
		if !transporter.CanAcceptBooking(load.TruckType, bid.TrucksOffered) {
			s.metrics.RecordCapacityRejection(metrics.PhaseTransporter)
			// The rejection must survive the abort below, so it runs in its
			// own transaction on the caller's context.
			if rejectErr := s.rejectBid(ctx, bid); rejectErr != nil {
				s.cfg.Log.Warn("Failed to reject bid after capacity loss", "bid_id", bid.ID, "error", rejectErr)
			} else {
				rejected = bid
			}
			return apperrors.InsufficientCapacity(fmt.Sprintf(
				"Transporter no longer has %d %s trucks available", bid.TrucksOffered, load.TruckType))
		}

		if err := transporter.Deduct(load.TruckType, bid.TrucksOffered); err != nil {
			return ledgerError(err)
		}
		if err := s.transporters.UpdateCapacity(txCtx, transporter); err != nil {
			if errors.Is(err, db.ErrVersionConflict) {
				return apperrors.Conflict("Another transaction modified the transporter capacity. Please retry.")
			}
			return apperrors.Internal("Failed to update transporter capacity", err)
		}

		b := &model.Booking{
			ID:              uuid.NewString(),
			BidID:           bid.ID,
			LoadID:          load.ID,
			TransporterID:   transporter.ID,
			AllocatedTrucks: bid.TrucksOffered,
			FinalRate:       bid.ProposedRate,
			Status:          model.BookingConfirmed,
			BookedAt:        time.Now().UTC().Truncate(time.Millisecond),
		}
		if err := s.repo.Create(txCtx, b); err != nil {
			if errors.Is(err, bookingserrors.ErrDuplicateBooking) || errors.Is(err, db.ErrVersionConflict) {
				return apperrors.Conflict("Another transaction booked this bid. Please retry.")
			}
			return apperrors.Internal("Failed to create booking", err)
		}

		if err := s.bids.UpdateStatus(txCtx, bid, model.BidAccepted); err != nil {
			if errors.Is(err, db.ErrVersionConflict) {
				return apperrors.Conflict("Another transaction modified the bid. Please retry.")
			}
			return apperrors.Internal("Failed to accept bid", err)
		}

		next := model.LoadOpenForBids
		if remaining-bid.TrucksOffered == 0 {
			next = model.LoadBooked
		}
		if err := s.loads.UpdateStatus(txCtx, load, next); err != nil {
			if errors.Is(err, db.ErrVersionConflict) {
				return apperrors.Conflict("Another transaction modified the load. Please retry.")
			}
			return apperrors.Internal("Failed to update load status", err)
		}

		booking = b
		return nil
	})
	if err != nil {
		err = apperrors.FromTransaction(err, "Failed to accept bid")
		s.metrics.RecordTransaction(OperationAccept, string(apperrors.AsAppError(err).Code))
		s.logFailure("Bid acceptance failed", err, "bid_id", req.BidID)
		if rejected != nil {
			s.publisher.Publish(ctx, events.BidRejectedEvent(rejected, "transporter capacity no longer available"))
		}
		return nil, err
	}

	s.metrics.RecordTransaction(OperationAccept, metrics.OutcomeOK)
	s.cfg.Log.Info("Booking confirmed",
		"booking_id", booking.ID,
		"bid_id", booking.BidID,
		"load_id", booking.LoadID,
		"transporter_id", booking.TransporterID,
		"allocated_trucks", booking.AllocatedTrucks,
	)
	s.publisher.Publish(ctx, events.BookingConfirmed(booking))
	return booking, nil
}

// Cancel releases a CONFIRMED booking, returns its trucks to the transporter
// and derives the load status again from a fresh allocation sum.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	var cancelled *model.Booking

	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		cancelled = nil

		booking, err := s.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if booking.Status == model.BookingCancelled {
			return apperrors.InvalidState("Booking is already cancelled.")
		}

		if err := s.repo.UpdateStatus(txCtx, booking, model.BookingCancelled); err != nil {
			if errors.Is(err, db.ErrVersionConflict) {
				return apperrors.Conflict("Another transaction modified the booking. Please retry.")
			}
			return apperrors.Internal("Failed to cancel booking", err)
		}

		load, err := s.findLoad(txCtx, booking.LoadID)
		if err != nil {
			return err
		}
		transporter, err := s.findTransporter(txCtx, booking.TransporterID)
		if err != nil {
			return err
		}

		if err := transporter.Restore(load.TruckType, booking.AllocatedTrucks); err != nil {
			return ledgerError(err)
		}
		if err := s.transporters.UpdateCapacity(txCtx, transporter); err != nil {
			if errors.Is(err, db.ErrVersionConflict) {
				return apperrors.Conflict("Another transaction modified the transporter capacity. Please retry.")
			}
			return apperrors.Internal("Failed to update transporter capacity", err)
		}

		next, err := s.statusAfterRelease(txCtx, load)
		if err != nil {
			return err
		}
		if err := s.loads.UpdateStatus(txCtx, load, next); err != nil {
			if errors.Is(err, db.ErrVersionConflict) {
				return apperrors.Conflict("Another transaction modified the load. Please retry.")
			}
			return apperrors.Internal("Failed to update load status", err)
		}

		cancelled = booking
		return nil
	})
	if err != nil {
		err = apperrors.FromTransaction(err, "Failed to cancel booking")
		s.metrics.RecordTransaction(OperationCancel, string(apperrors.AsAppError(err).Code))
		s.logFailure("Booking cancellation failed", err, "booking_id", id)
		return nil, err
	}

	s.metrics.RecordTransaction(OperationCancel, metrics.OutcomeOK)
	s.cfg.Log.Info("Booking cancelled",
		"booking_id", cancelled.ID,
		"load_id", cancelled.LoadID,
		"restored_trucks", cancelled.AllocatedTrucks,
	)
	s.publisher.Publish(ctx, events.BookingCancelled(cancelled))
	return cancelled, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if err := s.validator.ValidateFilter(filter); err != nil {
		return nil, 0, validation.ToAppError(err)
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindAll(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", err)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// --- Helpers ---

// rejectBid commits PENDING -> REJECTED on its own. ctx must not carry the
// enclosing transaction.
func (s *bookingService) rejectBid(ctx context.Context, bid *model.Bid) error {
	return s.txManager.ExecuteTransaction(ctx, func(rejectCtx context.Context) error {
		pending := *bid
		pending.Status = model.BidPending
		return s.bids.UpdateStatus(rejectCtx, &pending, model.BidRejected)
	})
}

// statusAfterRelease derives the load status once a booking no longer counts.
// A CANCELLED load stays CANCELLED.
func (s *bookingService) statusAfterRelease(ctx context.Context, load *model.Load) (model.LoadStatus, error) {
	if load.Status == model.LoadCancelled {
		return load.Status, nil
	}

	allocated, err := s.repo.SumAllocatedByLoad(ctx, load.ID)
	if err != nil {
		return "", apperrors.Internal("Failed to compute allocated trucks", err)
	}
	remaining := load.NoOfTrucks - allocated

	switch {
	case remaining >= load.NoOfTrucks:
		pending, err := s.bids.Count(ctx, model.BidFilter{LoadID: load.ID, Status: model.BidPending})
		if err != nil {
			return "", apperrors.Internal("Failed to count pending bids", err)
		}
		if pending > 0 {
			return model.LoadOpenForBids, nil
		}
		return model.LoadPosted, nil
	case remaining > 0:
		return model.LoadOpenForBids, nil
	default:
		return load.Status, nil
	}
}

func (s *bookingService) findBid(ctx context.Context, id string) (*model.Bid, error) {
	bid, err := s.bids.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bidserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Bid", id)
		}
		return nil, apperrors.Internal("Failed to retrieve bid", err)
	}
	return bid, nil
}

func (s *bookingService) findLoad(ctx context.Context, id string) (*model.Load, error) {
	load, err := s.loads.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, loadserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Load", id)
		}
		return nil, apperrors.Internal("Failed to retrieve load", err)
	}
	return load, nil
}

func (s *bookingService) findTransporter(ctx context.Context, id string) (*model.Transporter, error) {
	transporter, err := s.transporters.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, transporterserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Transporter", id)
		}
		return nil, apperrors.Internal("Failed to retrieve transporter", err)
	}
	return transporter, nil
}

// ledgerError translates capacity ledger failures at the transaction
// boundary.
func ledgerError(err error) error {
	switch {
	case errors.Is(err, model.ErrInsufficientTrucks):
		return apperrors.InsufficientCapacity(err.Error())
	case errors.Is(err, model.ErrUnknownTruckType),
		errors.Is(err, model.ErrRestoreExceedsFleet),
		errors.Is(err, model.ErrInvalidTruckCount):
		return apperrors.InvalidState(err.Error())
	default:
		return apperrors.Internal("Capacity ledger failure", err)
	}
}

func (s *bookingService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if apperrors.HasCode(err, apperrors.CodeInternal) {
		s.cfg.Log.Error(msg, args...)
		return
	}
	s.cfg.Log.Warn(msg, args...)
}
