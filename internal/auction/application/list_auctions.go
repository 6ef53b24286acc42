package application

import (
	"context"
	"fmt"

	"github.com/farmgate/bidEngine/internal/auction/domain"
	"github.com/farmgate/bidEngine/internal/shared/clock"
)

// ListAuctionsUseCase returns a page of auctions for the marketplace listing
// pages, optionally filtered by state
type ListAuctionsUseCase struct {
	auctionRepo domain.AuctionRepository
	clk         clock.Clock
}

func NewListAuctionsUseCase(auctionRepo domain.AuctionRepository, clk clock.Clock) *ListAuctionsUseCase {
	return &ListAuctionsUseCase{auctionRepo: auctionRepo, clk: clk}
}

// Execute lists auctions. The lazy close is applied per row as a derived
// value only, the canonical persistence of the transition happens on the
// single-auction read and bid paths so listing stays cheap.
func (uc *ListAuctionsUseCase) Execute(ctx context.Context, state domain.State, limit, offset int) ([]*AuctionStateDTO, error) {
	if limit <= 0 {
		limit = 20
	}

	auctions, err := uc.auctionRepo.List(ctx, state, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}

	now := uc.clk.Now()
	dtos := make([]*AuctionStateDTO, 0, len(auctions))
	for _, a := range auctions {
		dtos = append(dtos, toStateDTO(a.Snapshot(now)))
	}
	return dtos, nil
}
