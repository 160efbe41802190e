package repository

import (
	"context"
	"sort"
	loadserrors "tms/internal/loads/errors"
	"tms/pkg/db/memory"
	"tms/pkg/model"
)

const memoryTable = "loads"

type memoryLoadRepository struct {
	store *memory.Store
}

func NewMemoryLoadRepository(store *memory.Store) LoadRepository {
	return &memoryLoadRepository{store: store}
}

func (r *memoryLoadRepository) Create(ctx context.Context, load *model.Load) error {
	return r.store.Put(ctx, memoryTable, load.ID, *load,
		memory.MustNotExist(memoryTable, load.ID, loadserrors.ErrDuplicateID))
}

func (r *memoryLoadRepository) FindByID(ctx context.Context, id string) (*model.Load, error) {
	v, ok := r.store.Get(ctx, memoryTable, id)
	if !ok {
		return nil, loadserrors.ErrNotFound
	}
	load := v.(model.Load)
	return &load, nil
}

func (r *memoryLoadRepository) matching(ctx context.Context, f model.LoadFilter) []*model.Load {
	var out []*model.Load
	r.store.Scan(ctx, memoryTable, func(_ string, v any) bool {
		load := v.(model.Load)
		if f.ShipperID != "" && load.ShipperID != f.ShipperID {
			return true
		}
		if f.Status != "" && load.Status != f.Status {
			return true
		}
		out = append(out, &load)
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DatePosted.Equal(out[j].DatePosted) {
			return out[i].DatePosted.After(out[j].DatePosted)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *memoryLoadRepository) FindAll(ctx context.Context, filter model.LoadFilter, limit int, offset int64) ([]*model.Load, error) {
	return memory.Page(r.matching(ctx, filter), limit, offset), nil
}

func (r *memoryLoadRepository) Count(ctx context.Context, filter model.LoadFilter) (int64, error) {
	return int64(len(r.matching(ctx, filter))), nil
}

func (r *memoryLoadRepository) UpdateStatus(ctx context.Context, load *model.Load, status model.LoadStatus) error {
	expected := load.Version
	next := *load
	next.Status = status
	next.Version = expected + 1

	err := r.store.Put(ctx, memoryTable, load.ID, next,
		memory.Expect(memoryTable, load.ID, func(cur any) bool {
			return cur.(model.Load).Version == expected
		}))
	if err != nil {
		return err
	}

	load.Status = status
	load.Version = next.Version
	return nil
}
