package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/farmgate/bidEngine/internal/auction/domain"
	"github.com/farmgate/bidEngine/internal/shared/clock"
)

// AuctionStateDTO is the read model exposed to the HTTP/WS layers
type AuctionStateDTO struct {
	AuctionID        uuid.UUID           `json:"auction_id"`
	ProductID        uuid.UUID           `json:"product_id"`
	FarmerID         uuid.UUID           `json:"farmer_id"`
	StartingPrice    decimal.Decimal     `json:"starting_price"`
	CurrentHighBid   decimal.Decimal     `json:"current_high_bid"`
	MinimumNextBid   decimal.Decimal     `json:"minimum_next_bid"`
	MinIncrement     decimal.Decimal     `json:"min_increment"`
	Quantity         decimal.NullDecimal `json:"quantity,omitempty"`
	DeliveryRequired bool                `json:"delivery_required"`
	StartTime        time.Time           `json:"start_time"`
	EndTime          time.Time           `json:"end_time"`
	State            string              `json:"state"`
	BidCount         int                 `json:"bid_count"`
	LastBidderID     uuid.UUID           `json:"last_bidder_id,omitempty"`
	LastBidAmount    decimal.Decimal     `json:"last_bid_amount,omitempty"`
	LastBidTime      *time.Time          `json:"last_bid_time,omitempty"`
}

// GetAuctionStateUseCase retrieves the current state of an auction. Reading
// is also where the lazy Active -> Closed transition is observed and
// persisted.
type GetAuctionStateUseCase struct {
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
	txm         domain.TxManager
	locks       *auctionLocks
	clk         clock.Clock
}

func NewGetAuctionStateUseCase(
	auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	txm domain.TxManager,
	locks *auctionLocks,
	clk clock.Clock,
) *GetAuctionStateUseCase {
	return &GetAuctionStateUseCase{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		txm:         txm,
		locks:       locks,
		clk:         clk,
	}
}

func (uc *GetAuctionStateUseCase) Execute(ctx context.Context, auctionID uuid.UUID) (*AuctionStateDTO, error) {
	lock := uc.locks.get(auctionID)
	lock.Lock()
	defer lock.Unlock()

	auction, err := uc.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get auction state: failed to load auction %s: %w", auctionID, err)
	}

	now := uc.clk.Now()
	if auction.RefreshState(now) {
		if err := uc.persistRefresh(ctx, auction); err != nil {
			// the derived state is still correct for this reader
			log.Warn("GetAuctionState: failed to persist lazy close",
				zap.String("auctionID", auctionID.String()), zap.Error(err))
		}
	}

	dto := toStateDTO(auction.Snapshot(now))

	// enrich with the latest accepted bid when the ledger has one
	if bid, err := uc.bidRepo.GetLatestByAuctionID(ctx, auctionID); err == nil && bid != nil {
		dto.LastBidAmount = bid.Amount
		dto.LastBidderID = bid.BidderID
		dto.LastBidTime = &bid.PlacedAt
	}

	return dto, nil
}

func (uc *GetAuctionStateUseCase) persistRefresh(ctx context.Context, auction *domain.Auction) error {
	tx, err := uc.txm.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := uc.auctionRepo.Save(ctx, tx, auction); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func toStateDTO(s domain.AuctionSnapshot) *AuctionStateDTO {
	return &AuctionStateDTO{
		AuctionID:        s.ID,
		ProductID:        s.ProductID,
		FarmerID:         s.FarmerID,
		StartingPrice:    s.StartingPrice,
		CurrentHighBid:   s.CurrentPrice,
		MinimumNextBid:   s.CurrentPrice.Add(s.MinIncrement),
		MinIncrement:     s.MinIncrement,
		Quantity:         s.Quantity,
		DeliveryRequired: s.DeliveryRequired,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		State:            string(s.State),
		BidCount:         s.BidCount,
		LastBidderID:     s.LastBidderID,
		LastBidTime:      s.LastBidTime,
	}
}
