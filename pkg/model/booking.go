package model

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID              string        `json:"bookingId" bson:"_id"`
	BidID           string        `json:"bidId" bson:"bid_id"`
	LoadID          string        `json:"loadId" bson:"load_id"`
	TransporterID   string        `json:"transporterId" bson:"transporter_id"`
	AllocatedTrucks int           `json:"allocatedTrucks" bson:"allocated_trucks"`
	FinalRate       float64       `json:"finalRate" bson:"final_rate"`
	Status          BookingStatus `json:"status" bson:"status"`
	BookedAt        time.Time     `json:"bookedAt" bson:"booked_at"`
}

type BookingRequest struct {
	BidID string `json:"bidId" validate:"required,uuid"`
}

type BookingFilter struct {
	LoadID        string
	TransporterID string
	Status        BookingStatus
}
