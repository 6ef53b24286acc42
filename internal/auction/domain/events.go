package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType identifies a domain event emitted by the auction service
type EventType string

const (
	EventAuctionCreated   EventType = "auction_created"
	EventBidPlaced        EventType = "bid_placed"
	EventAuctionCancelled EventType = "auction_cancelled"
	EventAuctionSettled   EventType = "auction_settled"
)

// Event is the payload handed to the notification collaborators after a
// successful mutation. Bid fields are zero-valued unless Type is
// EventBidPlaced; PrevBidderID names the outbid buyer so the notification
// layer can alert them.
type Event struct {
	Type         EventType
	AuctionID    uuid.UUID
	ProductID    uuid.UUID
	FarmerID     uuid.UUID
	BidID        uuid.UUID
	BidderID     uuid.UUID
	PrevBidderID uuid.UUID
	Amount       decimal.Decimal
	State        State
	EndTime      time.Time
	OccurredAt   time.Time
}

// EventSink receives domain events fire-and-forget. Implementations must
// swallow delivery failures, a lost notification never rolls back the state
// mutation that produced it.
type EventSink interface {
	Emit(ctx context.Context, ev Event)
}
