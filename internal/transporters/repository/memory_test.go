package repository

import (
	"context"
	"testing"
	transporterserrors "tms/internal/transporters/errors"
	"tms/pkg/db"
	"tms/pkg/db/memory"
	"tms/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTransporterRepository_UpdateCapacityCAS(t *testing.T) {
	repo := NewMemoryTransporterRepository(memory.New())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Transporter{
		ID:              "t1",
		AvailableTrucks: model.TruckMap{"Flatbed": 5},
		FleetTrucks:     model.TruckMap{"Flatbed": 5},
	}))

	first, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	stale, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)

	require.NoError(t, first.Deduct("Flatbed", 3))
	require.NoError(t, repo.UpdateCapacity(ctx, first))
	assert.Equal(t, int64(1), first.Version)

	require.NoError(t, stale.Deduct("Flatbed", 5))
	assert.ErrorIs(t, repo.UpdateCapacity(ctx, stale), db.ErrVersionConflict)

	stored, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Available("Flatbed"))
	assert.Equal(t, int64(1), stored.Version)
}

func TestMemoryTransporterRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryTransporterRepository(memory.New())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Transporter{ID: "t1", AvailableTrucks: model.TruckMap{"Flatbed": 5}}))

	got, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	got.AvailableTrucks["Flatbed"] = 0

	again, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.Available("Flatbed"))
}

func TestMemoryTransporterRepository_Errors(t *testing.T) {
	repo := NewMemoryTransporterRepository(memory.New())
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, transporterserrors.ErrNotFound)

	require.NoError(t, repo.Create(ctx, &model.Transporter{ID: "t1"}))
	assert.ErrorIs(t, repo.Create(ctx, &model.Transporter{ID: "t1"}), transporterserrors.ErrDuplicateID)

	found, err := repo.FindByIDs(ctx, []string{"t1", "nope"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
