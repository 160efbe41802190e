// Package scoring ranks pending bids for a load. Cheaper bids from better
// rated transporters score higher.
package scoring

import (
	"sort"
	"tms/pkg/model"
)

const (
	PriceWeight  = 0.7
	RatingWeight = 0.3
	MaxRating    = 5.0
)

// Score assumes rate > 0, which bid submission enforces.
func Score(rate, transporterRating float64) float64 {
	return (1/rate)*PriceWeight + (transporterRating/MaxRating)*RatingWeight
}

// Rank scores every bid and returns them best first. Ties keep the earlier
// submission first. transporters maps id to transporter; a missing entry
// scores with rating 0.
func Rank(bids []*model.Bid, transporters map[string]*model.Transporter) []*model.RankedBid {
	ranked := make([]*model.RankedBid, 0, len(bids))
	for _, b := range bids {
		rb := &model.RankedBid{Bid: b}
		if t, ok := transporters[b.TransporterID]; ok {
			rb.TransporterName = t.CompanyName
			rb.TransporterRating = t.Rating
		}
		rb.Score = Score(b.ProposedRate, rb.TransporterRating)
		ranked = append(ranked, rb)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].DateSubmitted.Before(ranked[j].DateSubmitted)
	})
	return ranked
}
