package domain

import (
	"context"

	"github.com/google/uuid"
)

// Tx is the unit-of-work handle passed through repository writes so that the
// bid append and the auction update land in the same transaction, persistence
// and the in-memory high-bid cache are not allowed to diverge.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager begins a unit of work. The postgres implementation wraps a pgx
// transaction, the in-memory one used in tests is a no-op.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

type AuctionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Auction, error)
	Save(ctx context.Context, tx Tx, a *Auction) error
	List(ctx context.Context, state State, limit, offset int) ([]*Auction, error)
}

type BidRepository interface {
	Save(ctx context.Context, tx Tx, bid *Bid) error
	GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)
	GetLatestByAuctionID(ctx context.Context, auctionID uuid.UUID) (*Bid, error)
}
