package model

import "time"

type BidStatus string

const (
	BidPending  BidStatus = "PENDING"
	BidAccepted BidStatus = "ACCEPTED"
	BidRejected BidStatus = "REJECTED"
)

type Bid struct {
	ID            string    `json:"bidId" bson:"_id"`
	LoadID        string    `json:"loadId" bson:"load_id"`
	TransporterID string    `json:"transporterId" bson:"transporter_id"`
	ProposedRate  float64   `json:"proposedRate" bson:"proposed_rate"`
	TrucksOffered int       `json:"trucksOffered" bson:"trucks_offered"`
	Status        BidStatus `json:"status" bson:"status"`
	DateSubmitted time.Time `json:"dateSubmitted" bson:"date_submitted"`
}

type BidRequest struct {
	LoadID        string  `json:"loadId" validate:"required,uuid"`
	TransporterID string  `json:"transporterId" validate:"required,uuid"`
	ProposedRate  float64 `json:"proposedRate" validate:"gt=0"`
	TrucksOffered int     `json:"trucksOffered" validate:"gt=0"`
}

type BidFilter struct {
	LoadID        string
	TransporterID string
	Status        BidStatus
}

// RankedBid is a pending bid annotated with its transporter and score.
type RankedBid struct {
	*Bid
	TransporterName   string  `json:"transporterName"`
	TransporterRating float64 `json:"transporterRating"`
	Score             float64 `json:"score"`
}
