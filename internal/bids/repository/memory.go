package repository

import (
	"context"
	"sort"
	bidserrors "tms/internal/bids/errors"
	"tms/pkg/db/memory"
	"tms/pkg/model"
)

const memoryTable = "bids"

type memoryBidRepository struct {
	store *memory.Store
}

func NewMemoryBidRepository(store *memory.Store) BidRepository {
	return &memoryBidRepository{store: store}
}

func (r *memoryBidRepository) Create(ctx context.Context, bid *model.Bid) error {
	return r.store.Put(ctx, memoryTable, bid.ID, *bid,
		memory.MustNotExist(memoryTable, bid.ID, bidserrors.ErrDuplicateID))
}

func (r *memoryBidRepository) FindByID(ctx context.Context, id string) (*model.Bid, error) {
	v, ok := r.store.Get(ctx, memoryTable, id)
	if !ok {
		return nil, bidserrors.ErrNotFound
	}
	bid := v.(model.Bid)
	return &bid, nil
}

func (r *memoryBidRepository) matching(ctx context.Context, f model.BidFilter) []*model.Bid {
	var out []*model.Bid
	r.store.Scan(ctx, memoryTable, func(_ string, v any) bool {
		bid := v.(model.Bid)
		switch {
		case f.LoadID != "" && bid.LoadID != f.LoadID:
		case f.TransporterID != "" && bid.TransporterID != f.TransporterID:
		case f.Status != "" && bid.Status != f.Status:
		default:
			out = append(out, &bid)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateSubmitted.Equal(out[j].DateSubmitted) {
			return out[i].DateSubmitted.Before(out[j].DateSubmitted)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *memoryBidRepository) FindAll(ctx context.Context, filter model.BidFilter, limit int, offset int64) ([]*model.Bid, error) {
	return memory.Page(r.matching(ctx, filter), limit, offset), nil
}

func (r *memoryBidRepository) Count(ctx context.Context, filter model.BidFilter) (int64, error) {
	return int64(len(r.matching(ctx, filter))), nil
}

func (r *memoryBidRepository) UpdateStatus(ctx context.Context, bid *model.Bid, status model.BidStatus) error {
	expected := bid.Status
	next := *bid
	next.Status = status

	err := r.store.Put(ctx, memoryTable, bid.ID, next,
		memory.Expect(memoryTable, bid.ID, func(cur any) bool {
			return cur.(model.Bid).Status == expected
		}))
	if err != nil {
		return err
	}

	bid.Status = status
	return nil
}
