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

// PlaceBidResult is the accepted bid together with the auction's new high-bid
// snapshot, so callers can render the updated price without a second fetch
type PlaceBidResult struct {
	Bid     *domain.Bid
	HighBid decimal.Decimal
	EndTime time.Time
	State   domain.State
}

// PlaceBidUseCase validates and records a buyer's bid. The whole
// load -> validate -> append -> persist path runs under the auction's
// critical section, either the bid is fully accepted or nothing changes.
type PlaceBidUseCase struct {
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
	txm         domain.TxManager
	locks       *auctionLocks
	clk         clock.Clock
	sink        domain.EventSink
}

func NewPlaceBidUseCase(
	auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	txm domain.TxManager,
	locks *auctionLocks,
	clk clock.Clock,
	sink domain.EventSink,
) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		txm:         txm,
		locks:       locks,
		clk:         clk,
		sink:        sink,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, caller domain.Identity, auctionID uuid.UUID, amount decimal.Decimal) (*PlaceBidResult, error) {
	if caller.Role != domain.RoleBuyer {
		log.Warn("PlaceBid rejected: caller is not a buyer",
			zap.String("callerID", caller.ID.String()),
			zap.String("role", string(caller.Role)),
		)
		return nil, domain.ErrUnauthorized
	}

	// serialize with every other mutation of this auction
	lock := uc.locks.get(auctionID)
	lock.Lock()
	defer lock.Unlock()

	auction, err := uc.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("place bid: failed to load auction %s: %w", auctionID, err)
	}

	now := uc.clk.Now()
	prevBidder := auction.LastBidderID

	bid, bidErr := auction.PlaceBid(caller.ID, amount, now)
	if bidErr != nil {
		// the lazy close may have flipped the stored state even though the
		// bid was rejected, persist that transition so reads converge
		if auction.CurrentState() == domain.StateClosed {
			uc.persistClose(ctx, auction)
		}
		return nil, bidErr
	}

	tx, err := uc.txm.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.bidRepo.Save(ctx, tx, bid); err != nil {
		return nil, fmt.Errorf("place bid: failed to save bid for auction %s: %w", auctionID, err)
	}
	if err := uc.auctionRepo.Save(ctx, tx, auction); err != nil {
		return nil, fmt.Errorf("place bid: failed to save auction %s: %w", auctionID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("place bid: failed to commit transaction: %w", err)
	}

	uc.sink.Emit(ctx, domain.Event{
		Type:         domain.EventBidPlaced,
		AuctionID:    auction.ID,
		ProductID:    auction.ProductID,
		FarmerID:     auction.FarmerID,
		BidID:        bid.ID,
		BidderID:     bid.BidderID,
		PrevBidderID: prevBidder,
		Amount:       bid.Amount,
		State:        auction.State,
		EndTime:      auction.EndTime,
		OccurredAt:   now,
	})

	return &PlaceBidResult{
		Bid:     bid,
		HighBid: auction.CurrentHighBid(),
		EndTime: auction.EndTime,
		State:   auction.State,
	}, nil
}

func (uc *PlaceBidUseCase) persistClose(ctx context.Context, auction *domain.Auction) {
	tx, err := uc.txm.Begin(ctx)
	if err != nil {
		log.Error("PlaceBid: failed to begin transaction for lazy close",
			zap.String("auctionID", auction.ID.String()), zap.Error(err))
		return
	}
	defer tx.Rollback(ctx)
	if err := uc.auctionRepo.Save(ctx, tx, auction); err != nil {
		log.Error("PlaceBid: failed to persist lazy close",
			zap.String("auctionID", auction.ID.String()), zap.Error(err))
		return
	}
	if err := tx.Commit(ctx); err != nil {
		log.Error("PlaceBid: failed to commit lazy close",
			zap.String("auctionID", auction.ID.String()), zap.Error(err))
	}
}
