package app

import (
	"context"
	bidshandler "tms/internal/bids/handler"
	bidsrepo "tms/internal/bids/repository"
	bidsservice "tms/internal/bids/service"
	bidsvalidator "tms/internal/bids/validator"
	bookingshandler "tms/internal/bookings/handler"
	bookingsrepo "tms/internal/bookings/repository"
	bookingsservice "tms/internal/bookings/service"
	bookingsvalidator "tms/internal/bookings/validator"
	"tms/internal/events"
	"tms/internal/health"
	loadshandler "tms/internal/loads/handler"
	loadsrepo "tms/internal/loads/repository"
	loadsservice "tms/internal/loads/service"
	loadsvalidator "tms/internal/loads/validator"
	transportershandler "tms/internal/transporters/handler"
	transportersrepo "tms/internal/transporters/repository"
	transportersservice "tms/internal/transporters/service"
	transportersvalidator "tms/internal/transporters/validator"
	"tms/pkg/config"
	"tms/pkg/contracts"
	"tms/pkg/db"
	"tms/pkg/db/memory"
	mongotx "tms/pkg/db/mongo"
	"tms/pkg/metrics"
)

// Storage bundles the repositories with the transaction manager that spans
// them. All four must share one backend.
type Storage struct {
	Loads        loadsrepo.LoadRepository
	Bids         bidsrepo.BidRepository
	Bookings     bookingsrepo.BookingRepository
	Transporters transportersrepo.TransporterRepository
	TxManager    db.TransactionManager
	Pinger       db.Pinger
}

func NewMemoryStorage() *Storage {
	store := memory.New()
	return &Storage{
		Loads:        loadsrepo.NewMemoryLoadRepository(store),
		Bids:         bidsrepo.NewMemoryBidRepository(store),
		Bookings:     bookingsrepo.NewMemoryBookingRepository(store),
		Transporters: transportersrepo.NewMemoryTransporterRepository(store),
		TxManager:    store,
		Pinger:       store,
	}
}

// NewMongoStorage expects cfg.SetMongo to have run.
func NewMongoStorage(cfg *config.Config) *Storage {
	client := cfg.Client.Mongo
	return &Storage{
		Loads:        loadsrepo.NewMongoLoadRepository(cfg),
		Bids:         bidsrepo.NewMongoBidRepository(cfg),
		Bookings:     bookingsrepo.NewMongoBookingRepository(cfg),
		Transporters: transportersrepo.NewMongoTransporterRepository(cfg),
		TxManager:    mongotx.NewTransactionManager(client),
		Pinger: health.MongoPinger(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}),
	}
}

// NewHandlers builds every service over storage and returns the health
// handler followed by the domain handlers.
func NewHandlers(cfg *config.Config, storage *Storage, publisher events.Publisher, collector *metrics.Collector) (contracts.Handler, []contracts.Handler) {
	loadService := loadsservice.NewLoadService(
		storage.Loads,
		storage.Bids,
		storage.Bookings,
		storage.Transporters,
		storage.TxManager,
		publisher,
		loadsvalidator.NewLoadValidator(cfg.Log),
		cfg,
	)
	transporterService := transportersservice.NewTransporterService(
		storage.Transporters,
		storage.TxManager,
		transportersvalidator.NewTransporterValidator(cfg.Log),
		cfg,
	)
	bidService := bidsservice.NewBidService(
		storage.Bids,
		storage.Loads,
		storage.Transporters,
		storage.TxManager,
		publisher,
		collector,
		bidsvalidator.NewBidValidator(cfg.Log),
		cfg,
	)
	bookingService := bookingsservice.NewBookingService(
		storage.Bookings,
		storage.Bids,
		storage.Loads,
		storage.Transporters,
		storage.TxManager,
		publisher,
		collector,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	return health.NewHandler(storage.Pinger, collector, cfg.Log), []contracts.Handler{
		loadshandler.NewLoadHandler(loadService, cfg.Log),
		transportershandler.NewTransporterHandler(transporterService, cfg.Log),
		bidshandler.NewBidHandler(bidService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
	}
}
