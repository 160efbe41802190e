package model

import "time"

type LoadStatus string

const (
	LoadPosted      LoadStatus = "POSTED"
	LoadOpenForBids LoadStatus = "OPEN_FOR_BIDS"
	LoadBooked      LoadStatus = "BOOKED"
	LoadCancelled   LoadStatus = "CANCELLED"
)

type WeightUnit string

const (
	WeightKG  WeightUnit = "KG"
	WeightTon WeightUnit = "TON"
)

type Load struct {
	ID            string     `json:"loadId" bson:"_id"`
	ShipperID     string     `json:"shipperId" bson:"shipper_id"`
	LoadingCity   string     `json:"loadingCity" bson:"loading_city"`
	UnloadingCity string     `json:"unloadingCity" bson:"unloading_city"`
	LoadingDate   time.Time  `json:"loadingDate" bson:"loading_date"`
	ProductType   string     `json:"productType" bson:"product_type"`
	Weight        float64    `json:"weight" bson:"weight"`
	WeightUnit    WeightUnit `json:"weightUnit" bson:"weight_unit"`
	TruckType     string     `json:"truckType" bson:"truck_type"`
	NoOfTrucks    int        `json:"noOfTrucks" bson:"no_of_trucks"`
	Status        LoadStatus `json:"status" bson:"status"`
	Version       int64      `json:"version" bson:"version"`
	DatePosted    time.Time  `json:"datePosted" bson:"date_posted"`
}

// Biddable reports whether new bids may still be placed against the load.
func (l *Load) Biddable() bool {
	return l.Status == LoadPosted || l.Status == LoadOpenForBids
}

type LoadRequest struct {
	ShipperID     string     `json:"shipperId" validate:"required,min=1,max=100"`
	LoadingCity   string     `json:"loadingCity" validate:"required,min=2,max=100"`
	UnloadingCity string     `json:"unloadingCity" validate:"required,min=2,max=100"`
	LoadingDate   time.Time  `json:"loadingDate" validate:"required"`
	ProductType   string     `json:"productType" validate:"required,min=1,max=100"`
	Weight        float64    `json:"weight" validate:"gt=0"`
	WeightUnit    WeightUnit `json:"weightUnit" validate:"required,oneof=KG TON"`
	TruckType     string     `json:"truckType" validate:"required,min=1,max=50"`
	NoOfTrucks    int        `json:"noOfTrucks" validate:"gt=0"`
}

type LoadFilter struct {
	ShipperID string
	Status    LoadStatus
}

type LoadDetail struct {
	*Load
	RemainingTrucks int    `json:"remainingTrucks"`
	ActiveBids      []*Bid `json:"activeBids"`
}
