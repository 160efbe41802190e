package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newFlatbedTransporter(n int) *Transporter {
	return &Transporter{
		ID:              "t-1",
		CompanyName:     "Acme Haulage",
		Rating:          4,
		AvailableTrucks: TruckMap{"Flatbed": n},
		FleetTrucks:     TruckMap{"Flatbed": n},
	}
}

func TestTransporter_CanBid(t *testing.T) {
	tr := newFlatbedTransporter(5)

	tests := []struct {
		name      string
		truckType string
		n         int
		want      bool
	}{
		{"within capacity", "Flatbed", 3, true},
		{"exact capacity", "Flatbed", 5, true},
		{"over capacity", "Flatbed", 6, false},
		{"zero trucks", "Flatbed", 0, false},
		{"negative trucks", "Flatbed", -1, false},
		{"unknown type", "Reefer", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.CanBid(tt.truckType, tt.n))
		})
	}
}

func TestTransporter_CanAcceptBooking(t *testing.T) {
	tr := newFlatbedTransporter(3)

	assert.True(t, tr.CanAcceptBooking("Flatbed", 3))
	assert.False(t, tr.CanAcceptBooking("Flatbed", 4))
	assert.False(t, tr.CanAcceptBooking("Reefer", 1))
	assert.True(t, tr.CanAcceptBooking("Reefer", 0))
}

func TestTransporter_Deduct(t *testing.T) {
	t.Run("reduces available count", func(t *testing.T) {
		tr := newFlatbedTransporter(5)
		require.NoError(t, tr.Deduct("Flatbed", 3))
		assert.Equal(t, 2, tr.Available("Flatbed"))
	})

	t.Run("unknown truck type", func(t *testing.T) {
		tr := newFlatbedTransporter(5)
		assert.ErrorIs(t, tr.Deduct("Reefer", 1), ErrUnknownTruckType)
	})

	t.Run("more than available leaves count untouched", func(t *testing.T) {
		tr := newFlatbedTransporter(2)
		assert.ErrorIs(t, tr.Deduct("Flatbed", 3), ErrInsufficientTrucks)
		assert.Equal(t, 2, tr.Available("Flatbed"))
	})

	t.Run("non-positive count", func(t *testing.T) {
		tr := newFlatbedTransporter(2)
		assert.ErrorIs(t, tr.Deduct("Flatbed", 0), ErrInvalidTruckCount)
		assert.ErrorIs(t, tr.Deduct("Flatbed", -2), ErrInvalidTruckCount)
		assert.Equal(t, 2, tr.Available("Flatbed"))
	})
}

func TestTransporter_Restore(t *testing.T) {
	t.Run("deduct then restore round trips", func(t *testing.T) {
		tr := newFlatbedTransporter(5)
		require.NoError(t, tr.Deduct("Flatbed", 4))
		require.NoError(t, tr.Restore("Flatbed", 4))
		assert.Equal(t, 5, tr.Available("Flatbed"))
	})

	t.Run("unknown truck type", func(t *testing.T) {
		tr := newFlatbedTransporter(5)
		assert.ErrorIs(t, tr.Restore("Reefer", 1), ErrUnknownTruckType)
	})

	t.Run("cannot exceed registered fleet", func(t *testing.T) {
		tr := newFlatbedTransporter(5)
		require.NoError(t, tr.Deduct("Flatbed", 1))
		assert.ErrorIs(t, tr.Restore("Flatbed", 2), ErrRestoreExceedsFleet)
		assert.Equal(t, 4, tr.Available("Flatbed"))
	})

	t.Run("no fleet record means no bound", func(t *testing.T) {
		tr := &Transporter{AvailableTrucks: TruckMap{"Flatbed": 1}}
		require.NoError(t, tr.Restore("Flatbed", 10))
		assert.Equal(t, 11, tr.Available("Flatbed"))
	})
}

func TestTruckMap_JSONEmptyRoundTrip(t *testing.T) {
	var m TruckMap
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	var decoded TruckMap
	require.NoError(t, json.Unmarshal([]byte(`null`), &decoded))
	assert.NotNil(t, decoded)
	assert.Empty(t, decoded)
}

func TestTruckMap_BSONRoundTrip(t *testing.T) {
	type doc struct {
		Trucks TruckMap `bson:"trucks"`
	}

	data, err := bson.Marshal(doc{})
	require.NoError(t, err)

	var raw struct {
		Trucks bson.Raw `bson:"trucks"`
	}
	require.NoError(t, bson.Unmarshal(data, &raw))
	elems, err := raw.Trucks.Elements()
	require.NoError(t, err)
	assert.Empty(t, elems)

	data, err = bson.Marshal(doc{Trucks: TruckMap{"Flatbed": 5, "Reefer": 2}})
	require.NoError(t, err)

	var decoded doc
	require.NoError(t, bson.Unmarshal(data, &decoded))
	assert.Equal(t, TruckMap{"Flatbed": 5, "Reefer": 2}, decoded.Trucks)
}

func TestTruckMap_CloneIsIndependent(t *testing.T) {
	original := TruckMap{"Flatbed": 3}
	clone := original.Clone()
	clone["Flatbed"] = 0
	assert.Equal(t, 3, original["Flatbed"])
}

func TestTransporter_SetAvailableKeepsBookedTrucks(t *testing.T) {
	tr := &Transporter{
		AvailableTrucks: TruckMap{"Flatbed": 1, "Reefer": 0},
		FleetTrucks:     TruckMap{"Flatbed": 4, "Reefer": 2},
	}

	tr.SetAvailable(TruckMap{"Flatbed": 6, "Container": 1})

	assert.Equal(t, TruckMap{"Flatbed": 6, "Container": 1, "Reefer": 0}, tr.AvailableTrucks)
	assert.Equal(t, TruckMap{"Flatbed": 9, "Container": 1, "Reefer": 2}, tr.FleetTrucks)

	require.NoError(t, tr.Restore("Reefer", 2))
	require.NoError(t, tr.Restore("Flatbed", 3))
	assert.Error(t, tr.Restore("Flatbed", 1))
}
