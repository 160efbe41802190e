package service

import (
	"context"
	"testing"
	"tms/internal/transporters/repository"
	"tms/internal/transporters/validator"
	"tms/pkg/config"
	"tms/pkg/db/memory"
	apperrors "tms/pkg/errors"
	"tms/pkg/logger"
	"tms/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() TransporterService {
	log := logger.Discard()
	cfg := &config.Config{Log: log}
	store := memory.New()
	return NewTransporterService(
		repository.NewMemoryTransporterRepository(store),
		store,
		validator.NewTransporterValidator(log),
		cfg,
	)
}

func TestRegister_SetsFleetAndVersion(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Register(ctx, &model.TransporterRequest{
		CompanyName:     "  Acme   Haulage ",
		Rating:          4,
		AvailableTrucks: map[string]int{"Flatbed": 5, " Reefer": 2},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Acme Haulage", created.CompanyName)
	assert.Equal(t, int64(0), created.Version)
	assert.Equal(t, model.TruckMap{"Flatbed": 5, "Reefer": 2}, created.AvailableTrucks)
	assert.Equal(t, created.AvailableTrucks, created.FleetTrucks)

	fetched, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.AvailableTrucks, fetched.AvailableTrucks)
}

func TestRegister_ValidationFailure(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), &model.TransporterRequest{
		CompanyName:     "Acme",
		Rating:          9,
		AvailableTrucks: map[string]int{"Flatbed": 1},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.GetByID(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestUpdateTrucks(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tr, err := svc.Register(ctx, &model.TransporterRequest{
		CompanyName:     "Deccan Haulers",
		Rating:          4,
		AvailableTrucks: map[string]int{"Flatbed": 5},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateTrucks(ctx, tr.ID, &model.UpdateTrucksRequest{
		AvailableTrucks: map[string]int{"Flatbed": 2, "Reefer": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, model.TruckMap{"Flatbed": 2, "Reefer": 3}, updated.AvailableTrucks)
	assert.Equal(t, model.TruckMap{"Flatbed": 2, "Reefer": 3}, updated.FleetTrucks)
	assert.Equal(t, int64(1), updated.Version)

	got, err := svc.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.AvailableTrucks, got.AvailableTrucks)
}

func TestUpdateTrucks_Errors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.UpdateTrucks(ctx, "6a0c7c1e-0d51-4f4e-8f0e-3d4c2b1a0f99", &model.UpdateTrucksRequest{
		AvailableTrucks: map[string]int{"Flatbed": 1},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.UpdateTrucks(ctx, "6a0c7c1e-0d51-4f4e-8f0e-3d4c2b1a0f99", &model.UpdateTrucksRequest{
		AvailableTrucks: map[string]int{"Flatbed": -1},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
