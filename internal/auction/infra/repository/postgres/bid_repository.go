package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmgate/bidEngine/internal/auction/domain"
)

// BidRepository implements domain.BidRepository
type BidRepository struct {
	pool *pgxpool.Pool
}

// NewBidRepository creates new instance of BidRepository
func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

// Save only inserts the bid row, the auction update that goes with it shares
// the same transaction in the application layer
func (r *BidRepository) Save(ctx context.Context, dtx domain.Tx, bid *domain.Bid) error {
	tx, err := pgxTx(dtx)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO bids (id, auction_id, bidder_id, amount, placed_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err = tx.Exec(ctx, query,
		bid.ID,
		bid.AuctionID,
		bid.BidderID,
		bid.Amount,
		bid.PlacedAt,
	)
	return err
}

func (r *BidRepository) GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	query := `
        SELECT id, auction_id, bidder_id, amount, placed_at
        FROM bids
        WHERE auction_id = $1
        ORDER BY placed_at ASC, created_at ASC
    `
	rows, err := r.pool.Query(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		bid := &domain.Bid{}
		err := rows.Scan(
			&bid.ID,
			&bid.AuctionID,
			&bid.BidderID,
			&bid.Amount,
			&bid.PlacedAt,
		)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

func (r *BidRepository) GetLatestByAuctionID(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	query := `
        SELECT id, auction_id, bidder_id, amount, placed_at
        FROM bids
        WHERE auction_id = $1
        ORDER BY placed_at DESC, created_at DESC
        LIMIT 1
    `
	bid := &domain.Bid{}
	err := r.pool.QueryRow(ctx, query, auctionID).Scan(
		&bid.ID,
		&bid.AuctionID,
		&bid.BidderID,
		&bid.Amount,
		&bid.PlacedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return bid, nil
}
