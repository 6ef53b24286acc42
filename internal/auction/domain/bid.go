package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid represents an individual accepted bid inside the Auction aggregate.
// Bids are append-only, a bid never outlives or changes its auction.
type Bid struct {
	ID        uuid.UUID
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
	PlacedAt  time.Time
}

// NewBid creates a new Bid instance
func NewBid(id, auctionID, bidderID uuid.UUID, amount decimal.Decimal, placedAt time.Time) *Bid {
	return &Bid{
		ID:        id,
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		PlacedAt:  placedAt,
	}
}
