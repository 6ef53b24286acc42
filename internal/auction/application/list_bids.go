package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/farmgate/bidEngine/internal/auction/domain"
)

// ListBidsUseCase returns an auction's bid ledger, oldest first. The ledger
// order is authoritative for who won.
type ListBidsUseCase struct {
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
}

func NewListBidsUseCase(auctionRepo domain.AuctionRepository, bidRepo domain.BidRepository) *ListBidsUseCase {
	return &ListBidsUseCase{auctionRepo: auctionRepo, bidRepo: bidRepo}
}

func (uc *ListBidsUseCase) Execute(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	if _, err := uc.auctionRepo.GetByID(ctx, auctionID); err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("list bids: failed to load auction %s: %w", auctionID, err)
	}
	bids, err := uc.bidRepo.GetByAuctionID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	return bids, nil
}
