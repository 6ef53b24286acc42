package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/farmgate/bidEngine/internal/auction/domain"
	"github.com/farmgate/bidEngine/internal/shared/clock"
)

// SettleAuctionUseCase records the settlement collaborator's confirmation
// that the winning bid has been paid and delivered. The engine only accepts
// the Closed -> Settled transition, settlement itself happens elsewhere.
type SettleAuctionUseCase struct {
	auctionRepo domain.AuctionRepository
	txm         domain.TxManager
	locks       *auctionLocks
	clk         clock.Clock
	sink        domain.EventSink
}

func NewSettleAuctionUseCase(
	auctionRepo domain.AuctionRepository,
	txm domain.TxManager,
	locks *auctionLocks,
	clk clock.Clock,
	sink domain.EventSink,
) *SettleAuctionUseCase {
	return &SettleAuctionUseCase{
		auctionRepo: auctionRepo,
		txm:         txm,
		locks:       locks,
		clk:         clk,
		sink:        sink,
	}
}

func (uc *SettleAuctionUseCase) Execute(ctx context.Context, auctionID uuid.UUID) error {
	lock := uc.locks.get(auctionID)
	lock.Lock()
	defer lock.Unlock()

	auction, err := uc.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			return err
		}
		return fmt.Errorf("settle auction: failed to load auction %s: %w", auctionID, err)
	}

	now := uc.clk.Now()
	if err := auction.Settle(now); err != nil {
		return err
	}

	tx, err := uc.txm.Begin(ctx)
	if err != nil {
		return fmt.Errorf("settle auction: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.auctionRepo.Save(ctx, tx, auction); err != nil {
		return fmt.Errorf("settle auction: failed to save auction %s: %w", auctionID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("settle auction: failed to commit transaction: %w", err)
	}

	uc.sink.Emit(ctx, domain.Event{
		Type:       domain.EventAuctionSettled,
		AuctionID:  auction.ID,
		ProductID:  auction.ProductID,
		FarmerID:   auction.FarmerID,
		BidderID:   auction.LastBidderID,
		Amount:     auction.CurrentHighBid(),
		State:      auction.State,
		EndTime:    auction.EndTime,
		OccurredAt: now,
	})
	return nil
}
