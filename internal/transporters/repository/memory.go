package repository

import (
	"context"
	transporterserrors "tms/internal/transporters/errors"
	"tms/pkg/db/memory"
	"tms/pkg/model"
)

const memoryTable = "transporters"

type memoryTransporterRepository struct {
	store *memory.Store
}

func NewMemoryTransporterRepository(store *memory.Store) TransporterRepository {
	return &memoryTransporterRepository{store: store}
}

func snapshot(t *model.Transporter) model.Transporter {
	c := *t
	c.AvailableTrucks = t.AvailableTrucks.Clone()
	c.FleetTrucks = t.FleetTrucks.Clone()
	return c
}

func (r *memoryTransporterRepository) Create(ctx context.Context, transporter *model.Transporter) error {
	return r.store.Put(ctx, memoryTable, transporter.ID, snapshot(transporter),
		memory.MustNotExist(memoryTable, transporter.ID, transporterserrors.ErrDuplicateID))
}

func (r *memoryTransporterRepository) FindByID(ctx context.Context, id string) (*model.Transporter, error) {
	v, ok := r.store.Get(ctx, memoryTable, id)
	if !ok {
		return nil, transporterserrors.ErrNotFound
	}
	t := v.(model.Transporter)
	out := snapshot(&t)
	return &out, nil
}

func (r *memoryTransporterRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Transporter, error) {
	out := make(map[string]*model.Transporter, len(ids))
	for _, id := range ids {
		t, err := r.FindByID(ctx, id)
		if err != nil {
			continue
		}
		out[id] = t
	}
	return out, nil
}

func (r *memoryTransporterRepository) UpdateCapacity(ctx context.Context, transporter *model.Transporter) error {
	expected := transporter.Version
	next := snapshot(transporter)
	next.Version = expected + 1

	err := r.store.Put(ctx, memoryTable, transporter.ID, next,
		memory.Expect(memoryTable, transporter.ID, func(cur any) bool {
			return cur.(model.Transporter).Version == expected
		}))
	if err != nil {
		return err
	}

	transporter.Version = next.Version
	return nil
}
