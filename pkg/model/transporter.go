package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var (
	ErrUnknownTruckType    = errors.New("transporter has no trucks of this type")
	ErrInsufficientTrucks  = errors.New("insufficient trucks")
	ErrRestoreExceedsFleet = errors.New("restore exceeds registered fleet")
	ErrInvalidTruckCount   = errors.New("truck count must be positive")
)

// TruckMap maps a truck type to a count. A nil map is stored and rendered as
// an empty object so it always round-trips to {}.
type TruckMap map[string]int

func (m TruckMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]int(m))
}

func (m *TruckMap) UnmarshalJSON(data []byte) error {
	decoded := map[string]int{}
	if string(data) != "null" {
		if err := json.Unmarshal(data, &decoded); err != nil {
			return err
		}
	}
	*m = decoded
	return nil
}

func (m TruckMap) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if m == nil {
		return bson.MarshalValue(map[string]int{})
	}
	return bson.MarshalValue(map[string]int(m))
}

func (m *TruckMap) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	decoded := map[string]int{}
	if t != bsontype.Null && t != bsontype.Undefined {
		if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&decoded); err != nil {
			return err
		}
	}
	*m = decoded
	return nil
}

// Clone returns an independent copy; repositories hand out clones so that
// callers can never write through to shared state.
func (m TruckMap) Clone() TruckMap {
	out := make(TruckMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type Transporter struct {
	ID              string   `json:"transporterId" bson:"_id"`
	CompanyName     string   `json:"companyName" bson:"company_name"`
	Rating          float64  `json:"rating" bson:"rating"`
	AvailableTrucks TruckMap `json:"availableTrucks" bson:"available_trucks"`
	FleetTrucks     TruckMap `json:"fleetTrucks" bson:"fleet_trucks"`
	Version         int64    `json:"version" bson:"version"`
}

type TransporterRequest struct {
	CompanyName     string         `json:"companyName" validate:"required,min=2,max=150"`
	Rating          float64        `json:"rating" validate:"gte=0,lte=5"`
	AvailableTrucks map[string]int `json:"availableTrucks" validate:"required,dive,keys,required,max=50,endkeys,gte=0"`
}

// UpdateTrucksRequest replaces the free truck counts of a transporter.
type UpdateTrucksRequest struct {
	AvailableTrucks map[string]int `json:"availableTrucks" validate:"required,dive,keys,required,max=50,endkeys,gte=0"`
}

// Available returns the current count for a truck type, 0 when absent.
func (t *Transporter) Available(truckType string) int {
	return t.AvailableTrucks[truckType]
}

// CanBid is the optimistic Phase 1 check made when a bid is submitted. It does
// not reserve anything, so many bids may point at the same trucks.
func (t *Transporter) CanBid(truckType string, n int) bool {
	return n > 0 && n <= t.Available(truckType)
}

// CanAcceptBooking is the authoritative Phase 2 check made at acceptance time
// against freshly read capacity.
func (t *Transporter) CanAcceptBooking(truckType string, n int) bool {
	return n <= t.Available(truckType)
}

func (t *Transporter) Deduct(truckType string, n int) error {
	if n <= 0 {
		return ErrInvalidTruckCount
	}
	current, ok := t.AvailableTrucks[truckType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTruckType, truckType)
	}
	if current < n {
		return fmt.Errorf("%w: available %d, required %d", ErrInsufficientTrucks, current, n)
	}
	t.AvailableTrucks[truckType] = current - n
	return nil
}

// Restore returns trucks to the pool. When the registered fleet size for the
// type is known, the available count may never exceed it.
func (t *Transporter) Restore(truckType string, n int) error {
	if n <= 0 {
		return ErrInvalidTruckCount
	}
	current, ok := t.AvailableTrucks[truckType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTruckType, truckType)
	}
	if fleet, known := t.FleetTrucks[truckType]; known && current+n > fleet {
		return fmt.Errorf("%w: available %d + %d > fleet %d", ErrRestoreExceedsFleet, current, n, fleet)
	}
	t.AvailableTrucks[truckType] = current + n
	return nil
}

// SetAvailable replaces the free counts. Trucks currently out on bookings stay
// in the fleet, and their type stays known, so that cancelling those bookings
// can still restore them.
func (t *Transporter) SetAvailable(trucks TruckMap) {
	available := make(TruckMap, len(trucks))
	fleet := make(TruckMap, len(trucks))
	for truckType, n := range trucks {
		available[truckType] = n
		fleet[truckType] = n
	}

	for truckType, total := range t.FleetTrucks {
		booked := total - t.AvailableTrucks[truckType]
		if booked <= 0 {
			continue
		}
		if _, ok := available[truckType]; !ok {
			available[truckType] = 0
		}
		fleet[truckType] += booked
	}

	t.AvailableTrucks = available
	t.FleetTrucks = fleet
}
