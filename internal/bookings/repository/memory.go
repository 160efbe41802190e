package repository

import (
	"context"
	"sort"
	bookingserrors "tms/internal/bookings/errors"
	"tms/pkg/db/memory"
	"tms/pkg/model"
)

const memoryTable = "bookings"

type memoryBookingRepository struct {
	store *memory.Store
}

func NewMemoryBookingRepository(store *memory.Store) BookingRepository {
	return &memoryBookingRepository{store: store}
}

// uniqueBid mirrors the unique bid_id index of the bookings collection.
func uniqueBid(bidID string) memory.Check {
	return func(v memory.View) error {
		var dup bool
		v.Scan(memoryTable, func(_ string, cur any) bool {
			dup = cur.(model.Booking).BidID == bidID
			return !dup
		})
		if dup {
			return bookingserrors.ErrDuplicateBooking
		}
		return nil
	}
}

func (r *memoryBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.store.Put(ctx, memoryTable, booking.ID, *booking, memory.All(
		memory.MustNotExist(memoryTable, booking.ID, bookingserrors.ErrDuplicateBooking),
		uniqueBid(booking.BidID),
	))
}

func (r *memoryBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	v, ok := r.store.Get(ctx, memoryTable, id)
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	booking := v.(model.Booking)
	return &booking, nil
}

func (r *memoryBookingRepository) matching(ctx context.Context, f model.BookingFilter) []*model.Booking {
	var out []*model.Booking
	r.store.Scan(ctx, memoryTable, func(_ string, v any) bool {
		booking := v.(model.Booking)
		if f.LoadID != "" && booking.LoadID != f.LoadID {
			return true
		}
		if f.TransporterID != "" && booking.TransporterID != f.TransporterID {
			return true
		}
		if f.Status != "" && booking.Status != f.Status {
			return true
		}
		out = append(out, &booking)
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookedAt.Equal(out[j].BookedAt) {
			return out[i].BookedAt.After(out[j].BookedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *memoryBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	return memory.Page(r.matching(ctx, filter), limit, offset), nil
}

func (r *memoryBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	return int64(len(r.matching(ctx, filter))), nil
}

func (r *memoryBookingRepository) UpdateStatus(ctx context.Context, booking *model.Booking, status model.BookingStatus) error {
	expected := booking.Status
	next := *booking
	next.Status = status

	err := r.store.Put(ctx, memoryTable, booking.ID, next,
		memory.Expect(memoryTable, booking.ID, func(cur any) bool {
			return cur.(model.Booking).Status == expected
		}))
	if err != nil {
		return err
	}

	booking.Status = status
	return nil
}

func (r *memoryBookingRepository) SumAllocatedByLoad(ctx context.Context, loadID string) (int, error) {
	total := 0
	for _, b := range r.matching(ctx, model.BookingFilter{LoadID: loadID, Status: model.BookingConfirmed}) {
		total += b.AllocatedTrucks
	}
	return total, nil
}
