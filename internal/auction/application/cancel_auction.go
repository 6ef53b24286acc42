package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmgate/bidEngine/internal/auction/domain"
	"github.com/farmgate/bidEngine/internal/shared/clock"
)

// CancelAuctionUseCase withdraws an auction before any bid has been placed.
// Only the owning farmer may cancel.
type CancelAuctionUseCase struct {
	auctionRepo domain.AuctionRepository
	txm         domain.TxManager
	locks       *auctionLocks
	clk         clock.Clock
	sink        domain.EventSink
}

func NewCancelAuctionUseCase(
	auctionRepo domain.AuctionRepository,
	txm domain.TxManager,
	locks *auctionLocks,
	clk clock.Clock,
	sink domain.EventSink,
) *CancelAuctionUseCase {
	return &CancelAuctionUseCase{
		auctionRepo: auctionRepo,
		txm:         txm,
		locks:       locks,
		clk:         clk,
		sink:        sink,
	}
}

func (uc *CancelAuctionUseCase) Execute(ctx context.Context, caller domain.Identity, auctionID uuid.UUID) error {
	lock := uc.locks.get(auctionID)
	lock.Lock()
	defer lock.Unlock()

	auction, err := uc.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			return err
		}
		return fmt.Errorf("cancel auction: failed to load auction %s: %w", auctionID, err)
	}

	if caller.Role != domain.RoleFarmer || caller.ID != auction.FarmerID {
		log.Warn("CancelAuction rejected: caller is not the owner",
			zap.String("callerID", caller.ID.String()),
			zap.String("auctionID", auctionID.String()),
		)
		return domain.ErrUnauthorized
	}

	now := uc.clk.Now()
	if err := auction.Cancel(now); err != nil {
		return err
	}

	tx, err := uc.txm.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cancel auction: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.auctionRepo.Save(ctx, tx, auction); err != nil {
		return fmt.Errorf("cancel auction: failed to save auction %s: %w", auctionID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("cancel auction: failed to commit transaction: %w", err)
	}

	uc.sink.Emit(ctx, domain.Event{
		Type:       domain.EventAuctionCancelled,
		AuctionID:  auction.ID,
		ProductID:  auction.ProductID,
		FarmerID:   auction.FarmerID,
		State:      auction.State,
		EndTime:    auction.EndTime,
		OccurredAt: now,
	})
	return nil
}
