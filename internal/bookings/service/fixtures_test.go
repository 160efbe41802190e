package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"
	bidsrepo "tms/internal/bids/repository"
	"tms/internal/bookings/repository"
	"tms/internal/bookings/validator"
	"tms/internal/events"
	loadsrepo "tms/internal/loads/repository"
	transportersrepo "tms/internal/transporters/repository"
	"tms/pkg/config"
	"tms/pkg/db/memory"
	"tms/pkg/logger"
	"tms/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const flatbed = "Flatbed"

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	t            *testing.T
	ctx          context.Context
	svc          BookingService
	bookings     repository.BookingRepository
	bids         bidsrepo.BidRepository
	loads        loadsrepo.LoadRepository
	transporters transportersrepo.TransporterRepository
	publisher    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	cfg := &config.Config{Log: log}
	store := memory.New()

	f := &fixture{
		t:            t,
		ctx:          context.Background(),
		bookings:     repository.NewMemoryBookingRepository(store),
		bids:         bidsrepo.NewMemoryBidRepository(store),
		loads:        loadsrepo.NewMemoryLoadRepository(store),
		transporters: transportersrepo.NewMemoryTransporterRepository(store),
		publisher:    &recordingPublisher{},
	}
	f.svc = NewBookingService(
		f.bookings,
		f.bids,
		f.loads,
		f.transporters,
		store,
		f.publisher,
		nil,
		validator.NewBookingValidator(log),
		cfg,
	)
	return f
}

func (f *fixture) transporter(trucks int, rating float64) *model.Transporter {
	f.t.Helper()
	tr := &model.Transporter{
		ID:              uuid.NewString(),
		CompanyName:     "Carrier " + uuid.NewString()[:8],
		Rating:          rating,
		AvailableTrucks: model.TruckMap{flatbed: trucks},
		FleetTrucks:     model.TruckMap{flatbed: trucks},
	}
	require.NoError(f.t, f.transporters.Create(f.ctx, tr))
	return tr
}

func (f *fixture) load(noOfTrucks int) *model.Load {
	f.t.Helper()
	l := &model.Load{
		ID:            uuid.NewString(),
		ShipperID:     "shipper-1",
		LoadingCity:   "Pune",
		UnloadingCity: "Mumbai",
		LoadingDate:   time.Now().Add(48 * time.Hour).UTC(),
		ProductType:   "Steel",
		Weight:        20,
		WeightUnit:    model.WeightTon,
		TruckType:     flatbed,
		NoOfTrucks:    noOfTrucks,
		Status:        model.LoadOpenForBids,
		DatePosted:    time.Now().UTC(),
	}
	require.NoError(f.t, f.loads.Create(f.ctx, l))
	return l
}

func (f *fixture) bid(load *model.Load, tr *model.Transporter, trucks int, rate float64) *model.Bid {
	f.t.Helper()
	b := &model.Bid{
		ID:            uuid.NewString(),
		LoadID:        load.ID,
		TransporterID: tr.ID,
		ProposedRate:  rate,
		TrucksOffered: trucks,
		Status:        model.BidPending,
		DateSubmitted: time.Now().UTC(),
	}
	require.NoError(f.t, f.bids.Create(f.ctx, b))
	return b
}

func (f *fixture) accept(b *model.Bid) (*model.Booking, error) {
	return f.svc.AcceptBid(f.ctx, &model.BookingRequest{BidID: b.ID})
}

func (f *fixture) available(tr *model.Transporter) int {
	f.t.Helper()
	stored, err := f.transporters.FindByID(f.ctx, tr.ID)
	require.NoError(f.t, err)
	return stored.Available(flatbed)
}

func (f *fixture) loadStatus(l *model.Load) model.LoadStatus {
	f.t.Helper()
	stored, err := f.loads.FindByID(f.ctx, l.ID)
	require.NoError(f.t, err)
	return stored.Status
}

func (f *fixture) bidStatus(b *model.Bid) model.BidStatus {
	f.t.Helper()
	stored, err := f.bids.FindByID(f.ctx, b.ID)
	require.NoError(f.t, err)
	return stored.Status
}

func (f *fixture) allocated(l *model.Load) int {
	f.t.Helper()
	sum, err := f.bookings.SumAllocatedByLoad(f.ctx, l.ID)
	require.NoError(f.t, err)
	return sum
}
