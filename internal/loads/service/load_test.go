package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"
	bidsrepo "tms/internal/bids/repository"
	bookingsrepo "tms/internal/bookings/repository"
	"tms/internal/events"
	"tms/internal/loads/repository"
	"tms/internal/loads/validator"
	transportersrepo "tms/internal/transporters/repository"
	"tms/pkg/config"
	"tms/pkg/db/memory"
	apperrors "tms/pkg/errors"
	"tms/pkg/logger"
	"tms/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

type testEnv struct {
	svc          LoadService
	loads        repository.LoadRepository
	bids         bidsrepo.BidRepository
	bookings     bookingsrepo.BookingRepository
	transporters transportersrepo.TransporterRepository
	publisher    *recordingPublisher
}

func newTestEnv() *testEnv {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	store := memory.New()
	env := &testEnv{
		loads:        repository.NewMemoryLoadRepository(store),
		bids:         bidsrepo.NewMemoryBidRepository(store),
		bookings:     bookingsrepo.NewMemoryBookingRepository(store),
		transporters: transportersrepo.NewMemoryTransporterRepository(store),
		publisher:    &recordingPublisher{},
	}
	env.svc = NewLoadService(
		env.loads,
		env.bids,
		env.bookings,
		env.transporters,
		store,
		env.publisher,
		validator.NewLoadValidator(log),
		&config.Config{Log: log},
	)
	return env
}

func validRequest() *model.LoadRequest {
	return &model.LoadRequest{
		ShipperID:     "shipper-1",
		LoadingCity:   "  Pune   ",
		UnloadingCity: "Mumbai",
		LoadingDate:   time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC),
		ProductType:   "Steel coils",
		Weight:        18.5,
		WeightUnit:    model.WeightTon,
		TruckType:     "Flatbed",
		NoOfTrucks:    5,
	}
}

func TestCreate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	load, err := env.svc.Create(ctx, validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, load.ID)
	assert.Equal(t, model.LoadPosted, load.Status)
	assert.Equal(t, int64(0), load.Version)
	assert.Equal(t, "Pune", load.LoadingCity)
	assert.False(t, load.DatePosted.IsZero())

	require.Len(t, env.publisher.events, 1)
	assert.Equal(t, events.TypeLoadPosted, env.publisher.events[0].Type)
	assert.Equal(t, load.ID, env.publisher.events[0].LoadID)
}

func TestCreate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *model.LoadRequest)
	}{
		{"zero trucks", func(r *model.LoadRequest) { r.NoOfTrucks = 0 }},
		{"negative weight", func(r *model.LoadRequest) { r.Weight = -1 }},
		{"unknown weight unit", func(r *model.LoadRequest) { r.WeightUnit = "LBS" }},
		{"missing truck type", func(r *model.LoadRequest) { r.TruckType = "   " }},
		{"missing loading date", func(r *model.LoadRequest) { r.LoadingDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			req := validRequest()
			tt.mutate(req)

			_, err := env.svc.Create(context.Background(), req)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
			assert.Empty(t, env.publisher.events)
		})
	}
}

func TestGetByID_RemainingAndActiveBids(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	load, err := env.svc.Create(ctx, validRequest())
	require.NoError(t, err)

	pending := &model.Bid{ID: uuid.NewString(), LoadID: load.ID, TransporterID: "t-1", ProposedRate: 100, TrucksOffered: 1, Status: model.BidPending}
	accepted := &model.Bid{ID: uuid.NewString(), LoadID: load.ID, TransporterID: "t-2", ProposedRate: 100, TrucksOffered: 2, Status: model.BidAccepted}
	require.NoError(t, env.bids.Create(ctx, pending))
	require.NoError(t, env.bids.Create(ctx, accepted))
	require.NoError(t, env.bookings.Create(ctx, &model.Booking{
		ID: uuid.NewString(), BidID: accepted.ID, LoadID: load.ID, AllocatedTrucks: 2, Status: model.BookingConfirmed,
	}))
	require.NoError(t, env.bookings.Create(ctx, &model.Booking{
		ID: uuid.NewString(), BidID: uuid.NewString(), LoadID: load.ID, AllocatedTrucks: 1, Status: model.BookingCancelled,
	}))

	detail, err := env.svc.GetByID(ctx, load.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.RemainingTrucks)
	require.Len(t, detail.ActiveBids, 1)
	assert.Equal(t, pending.ID, detail.ActiveBids[0].ID)

	_, err = env.svc.GetByID(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCancel(t *testing.T) {
	t.Run("posted load", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		load, err := env.svc.Create(ctx, validRequest())
		require.NoError(t, err)

		cancelled, err := env.svc.Cancel(ctx, load.ID)
		require.NoError(t, err)
		assert.Equal(t, model.LoadCancelled, cancelled.Status)
		assert.Equal(t, int64(1), cancelled.Version)

		_, err = env.svc.Cancel(ctx, load.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidState))
		assert.Equal(t, "Load is already cancelled", apperrors.AsAppError(err).Message)
	})

	t.Run("booked load", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		load, err := env.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		require.NoError(t, env.loads.UpdateStatus(ctx, load, model.LoadBooked))

		_, err = env.svc.Cancel(ctx, load.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidState))
		assert.Equal(t, "Can't cancel a BOOKED load", apperrors.AsAppError(err).Message)
	})

	t.Run("missing load", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.svc.Cancel(context.Background(), "missing")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})
}

func TestBestBids_OrderedByScore(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	load, err := env.svc.Create(ctx, validRequest())
	require.NoError(t, err)

	reliable := &model.Transporter{ID: uuid.NewString(), CompanyName: "Reliable", Rating: 4.0}
	cheap := &model.Transporter{ID: uuid.NewString(), CompanyName: "Cheap", Rating: 3.5}
	require.NoError(t, env.transporters.Create(ctx, reliable))
	require.NoError(t, env.transporters.Create(ctx, cheap))

	now := time.Now().UTC()
	for _, b := range []*model.Bid{
		{ID: uuid.NewString(), LoadID: load.ID, TransporterID: cheap.ID, ProposedRate: 4500, TrucksOffered: 2, Status: model.BidPending, DateSubmitted: now},
		{ID: uuid.NewString(), LoadID: load.ID, TransporterID: reliable.ID, ProposedRate: 5000, TrucksOffered: 2, Status: model.BidPending, DateSubmitted: now.Add(time.Second)},
		{ID: uuid.NewString(), LoadID: load.ID, TransporterID: reliable.ID, ProposedRate: 1, TrucksOffered: 2, Status: model.BidRejected, DateSubmitted: now},
	} {
		require.NoError(t, env.bids.Create(ctx, b))
	}

	ranked, err := env.svc.BestBids(ctx, load.ID)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// 0.7/5000 + 0.24 beats 0.7/4500 + 0.21.
	assert.Equal(t, reliable.ID, ranked[0].TransporterID)
	assert.Equal(t, "Reliable", ranked[0].TransporterName)
	assert.Equal(t, cheap.ID, ranked[1].TransporterID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestBestBids_NoBids(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	load, err := env.svc.Create(ctx, validRequest())
	require.NoError(t, err)

	ranked, err := env.svc.BestBids(ctx, load.ID)
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.NotNil(t, ranked)
}

func TestGetAll_FilterAndPaginate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.svc.Create(ctx, validRequest())
		require.NoError(t, err)
	}
	other := validRequest()
	other.ShipperID = "shipper-2"
	_, err := env.svc.Create(ctx, other)
	require.NoError(t, err)

	loads, total, err := env.svc.GetAll(ctx, model.LoadFilter{ShipperID: "shipper-1"}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, loads, 2)

	loads, _, err = env.svc.GetAll(ctx, model.LoadFilter{ShipperID: "shipper-1"}, 2, 2)
	require.NoError(t, err)
	assert.Len(t, loads, 1)

	_, _, err = env.svc.GetAll(ctx, model.LoadFilter{Status: "SHIPPED"}, 10, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
