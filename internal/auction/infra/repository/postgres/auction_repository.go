package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmgate/bidEngine/internal/auction/domain"
)

// AuctionRepository implements domain.AuctionRepository
type AuctionRepository struct {
	pool *pgxpool.Pool
}

// NewAuctionRepository creates a new instance of AuctionRepository
func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

const auctionColumns = `id, product_id, farmer_id, starting_price, current_price, quantity,
            min_increment, delivery_required, start_time, end_time, state, bid_count,
            last_bidder_id, last_bid_time, created_at, updated_at`

// Save inserts or updates an auction. INSERT ON CONFLICT handles both paths,
// created_at/updated_at come from the DB defaults and trigger.
func (r *AuctionRepository) Save(ctx context.Context, dtx domain.Tx, a *domain.Auction) error {
	tx, err := pgxTx(dtx)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO auctions (id, product_id, farmer_id, starting_price, current_price, quantity,
                              min_increment, delivery_required, start_time, end_time, state, bid_count,
                              last_bidder_id, last_bid_time)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (id) DO UPDATE
        SET
            current_price = EXCLUDED.current_price,
            end_time = EXCLUDED.end_time,
            state = EXCLUDED.state,
            bid_count = EXCLUDED.bid_count,
            last_bidder_id = EXCLUDED.last_bidder_id,
            last_bid_time = EXCLUDED.last_bid_time,
            updated_at = NOW();
    `
	_, err = tx.Exec(ctx, query,
		a.ID,
		a.ProductID,
		a.FarmerID,
		a.StartingPrice,
		a.CurrentPrice,
		a.Quantity,
		a.MinIncrement,
		a.DeliveryRequired,
		a.StartTime,
		a.EndTime,
		a.State,
		a.BidCount,
		nullableUUID(a.LastBidderID),
		a.LastBidTime,
	)
	return err
}

// GetByID retrieves an auction by its id, without its bid ledger. The cached
// current_price and bid_count are enough for the engine's hot paths, the full
// ledger is loaded through BidRepository when needed.
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`

	a, err := scanAuction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns a page of auctions ordered by end time, newest ending first.
// An empty state lists every state.
func (r *AuctionRepository) List(ctx context.Context, state domain.State, limit, offset int) ([]*domain.Auction, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if state != "" {
		query := `SELECT ` + auctionColumns + ` FROM auctions WHERE state = $1 ORDER BY end_time DESC LIMIT $2 OFFSET $3`
		rows, err = r.pool.Query(ctx, query, state, limit, offset)
	} else {
		query := `SELECT ` + auctionColumns + ` FROM auctions ORDER BY end_time DESC LIMIT $1 OFFSET $2`
		rows, err = r.pool.Query(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	return auctions, rows.Err()
}

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	a := &domain.Auction{}
	var lastBidder *uuid.UUID
	var lastBidTime *time.Time

	err := row.Scan(
		&a.ID,
		&a.ProductID,
		&a.FarmerID,
		&a.StartingPrice,
		&a.CurrentPrice,
		&a.Quantity,
		&a.MinIncrement,
		&a.DeliveryRequired,
		&a.StartTime,
		&a.EndTime,
		&a.State,
		&a.BidCount,
		&lastBidder,
		&lastBidTime,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastBidder != nil {
		a.LastBidderID = *lastBidder
	}
	a.LastBidTime = lastBidTime
	return a, nil
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
