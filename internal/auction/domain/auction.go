package domain

import (
	"sync"
	"time"

	"github.com/farmgate/bidEngine/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Auction is the aggregate root of the bidding engine. It owns the lifecycle
// state machine and the append-only bid ledger for one lot of produce.
//
// CurrentPrice is the cached running high bid, it equals StartingPrice while
// the ledger is empty so bid submission stays O(1). All mutations go through
// the aggregate's mutex, one auction's critical section never blocks another
// auction.
type Auction struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	FarmerID         uuid.UUID
	StartingPrice    decimal.Decimal
	CurrentPrice     decimal.Decimal
	Quantity         decimal.NullDecimal
	MinIncrement     decimal.Decimal
	DeliveryRequired bool
	StartTime        time.Time
	EndTime          time.Time
	State            State
	BidCount         int
	LastBidderID     uuid.UUID
	LastBidTime      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	mu sync.Mutex
	// ledger of accepted bids in acceptance order, append-only
	Bids []*Bid
}

// NewAuction builds a Draft auction from validated input. Callers are expected
// to Activate it immediately, this marketplace has no scheduled starts.
func NewAuction(id uuid.UUID, farmerID uuid.UUID, in ParsedAuctionInput, now time.Time) *Auction {
	return &Auction{
		ID:               id,
		ProductID:        in.ProductID,
		FarmerID:         farmerID,
		StartingPrice:    in.StartingPrice,
		CurrentPrice:     in.StartingPrice,
		Quantity:         in.Quantity,
		MinIncrement:     in.MinIncrement,
		DeliveryRequired: in.DeliveryRequired,
		StartTime:        now,
		EndTime:          in.EndTime,
		State:            StateDraft,
		Bids:             []*Bid{},
	}
}

// Activate moves a freshly built auction from Draft to Active
func (a *Auction) Activate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !CanTransition(a.State, StateActive) {
		return &InvalidTransitionError{From: a.State, To: StateActive}
	}
	a.State = StateActive
	return nil
}

// RefreshState applies the lazy Active -> Closed transition when the end time
// has passed. Closing is a function of wall-clock time evaluated on access,
// there is no background timer, so the stored state alone is never
// authoritative for an Active auction. Returns true if the state changed.
func (a *Auction) RefreshState(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshLocked(now)
}

func (a *Auction) refreshLocked(now time.Time) bool {
	if a.State == StateActive && !now.Before(a.EndTime) {
		a.State = StateClosed
		log.Info("Auction closed on observation",
			zap.String("auctionID", a.ID.String()),
			zap.Time("endTime", a.EndTime),
			zap.String("finalPrice", a.CurrentPrice.String()),
		)
		return true
	}
	return false
}

// CurrentState returns the stored lifecycle state under the mutex
func (a *Auction) CurrentState() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.State
}

// CurrentHighBid returns the cached high bid, the starting price while no
// bids exist
func (a *Auction) CurrentHighBid() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.CurrentPrice
}

// MinimumNextBid returns the lowest amount the next bid may carry
func (a *Auction) MinimumNextBid() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.CurrentPrice.Add(a.MinIncrement)
}

// PlaceBid validates and appends a bid under the auction's critical section.
// The lazy close check runs first, so a bid against an expired auction is
// rejected with ErrAuctionNotActive no matter what state was stored. Two
// racing submissions are serialized by the mutex, the loser is re-validated
// against the new high bid and gets an explicit BidTooLowError, bids are
// never silently dropped. Acceptance updates the high-bid cache and the
// ledger in the same critical section.
func (a *Auction) PlaceBid(bidderID uuid.UUID, amount decimal.Decimal, now time.Time) (*Bid, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.refreshLocked(now)

	if err := ValidateBid(a, amount, now); err != nil {
		log.Warn("Bid rejected",
			zap.String("auctionID", a.ID.String()),
			zap.String("bidderID", bidderID.String()),
			zap.String("amount", amount.String()),
			zap.String("currentPrice", a.CurrentPrice.String()),
			zap.Error(err),
		)
		return nil, err
	}

	bid := NewBid(uuid.New(), a.ID, bidderID, amount, now)
	a.Bids = append(a.Bids, bid)
	a.CurrentPrice = amount
	a.BidCount++
	a.LastBidderID = bidderID
	a.LastBidTime = &now

	log.Info("Bid accepted",
		zap.String("auctionID", a.ID.String()),
		zap.String("bidID", bid.ID.String()),
		zap.String("bidderID", bidderID.String()),
		zap.String("amount", amount.String()),
		zap.Int("bidCount", a.BidCount),
	)
	return bid, nil
}

// Cancel lets the owning farmer withdraw an auction before anyone has bid.
// The lazy close runs first, an expired auction can no longer be cancelled.
func (a *Auction) Cancel(now time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.refreshLocked(now)

	if !CanTransition(a.State, StateCancelled) {
		return &InvalidTransitionError{From: a.State, To: StateCancelled}
	}
	if a.BidCount > 0 {
		log.Warn("Cancel rejected: auction has bids",
			zap.String("auctionID", a.ID.String()),
			zap.Int("bidCount", a.BidCount),
		)
		return ErrCannotCancelWithBids
	}
	a.State = StateCancelled
	log.Info("Auction cancelled", zap.String("auctionID", a.ID.String()))
	return nil
}

// Settle records the external settlement confirmation for a closed auction
func (a *Auction) Settle(now time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.refreshLocked(now)

	if !CanTransition(a.State, StateSettled) {
		return &InvalidTransitionError{From: a.State, To: StateSettled}
	}
	a.State = StateSettled
	log.Info("Auction settled",
		zap.String("auctionID", a.ID.String()),
		zap.String("finalPrice", a.CurrentPrice.String()),
		zap.String("winnerID", a.LastBidderID.String()),
	)
	return nil
}

// AuctionSnapshot is a point-in-time copy of the aggregate's read-side
// fields. Read paths build DTOs from snapshots instead of touching the
// aggregate directly, so a listing never races with a concurrent bid.
type AuctionSnapshot struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	FarmerID         uuid.UUID
	StartingPrice    decimal.Decimal
	CurrentPrice     decimal.Decimal
	Quantity         decimal.NullDecimal
	MinIncrement     decimal.Decimal
	DeliveryRequired bool
	StartTime        time.Time
	EndTime          time.Time
	State            State
	BidCount         int
	LastBidderID     uuid.UUID
	LastBidTime      *time.Time
}

// Snapshot copies the aggregate under its mutex. The wall-clock close check
// is applied to the returned state without mutating the aggregate, so listing
// paths stay read-only per row.
func (a *Auction) Snapshot(now time.Time) AuctionSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := AuctionSnapshot{
		ID:               a.ID,
		ProductID:        a.ProductID,
		FarmerID:         a.FarmerID,
		StartingPrice:    a.StartingPrice,
		CurrentPrice:     a.CurrentPrice,
		Quantity:         a.Quantity,
		MinIncrement:     a.MinIncrement,
		DeliveryRequired: a.DeliveryRequired,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		State:            a.State,
		BidCount:         a.BidCount,
		LastBidderID:     a.LastBidderID,
		LastBidTime:      a.LastBidTime,
	}
	if s.State == StateActive && !now.Before(a.EndTime) {
		s.State = StateClosed
	}
	return s
}
