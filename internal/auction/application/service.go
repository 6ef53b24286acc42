package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmgate/bidEngine/internal/auction/domain"
	productdomain "github.com/farmgate/bidEngine/internal/product/domain"
	"github.com/farmgate/bidEngine/internal/shared/clock"
)

// AuctionService is the application interface of the auction module, the one
// surface the infra layers (HTTP, WS) call into. Every operation takes the
// caller's identity explicitly.
type AuctionService interface {
	CreateAuction(ctx context.Context, caller domain.Identity, in domain.CreateAuctionInput) (*domain.Auction, error)
	PlaceBid(ctx context.Context, caller domain.Identity, auctionID uuid.UUID, amount decimal.Decimal) (*PlaceBidResult, error)
	CancelAuction(ctx context.Context, caller domain.Identity, auctionID uuid.UUID) error
	SettleAuction(ctx context.Context, auctionID uuid.UUID) error
	GetAuctionState(ctx context.Context, auctionID uuid.UUID) (*AuctionStateDTO, error)
	ListAuctions(ctx context.Context, state domain.State, limit, offset int) ([]*AuctionStateDTO, error)
	ListBids(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error)
}

type auctionService struct {
	createUC *CreateAuctionUseCase
	bidUC    *PlaceBidUseCase
	cancelUC *CancelAuctionUseCase
	settleUC *SettleAuctionUseCase
	stateUC  *GetAuctionStateUseCase
	listUC   *ListAuctionsUseCase
	bidsUC   *ListBidsUseCase
}

// NewAuctionService wires the use cases over shared repositories, one lock
// registry and one clock
func NewAuctionService(
	auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	productRepo productdomain.ProductRepository,
	txm domain.TxManager,
	clk clock.Clock,
	policy domain.Policy,
	sink domain.EventSink,
) AuctionService {
	locks := newAuctionLocks()
	return &auctionService{
		createUC: NewCreateAuctionUseCase(auctionRepo, productRepo, txm, clk, policy, sink),
		bidUC:    NewPlaceBidUseCase(auctionRepo, bidRepo, txm, locks, clk, sink),
		cancelUC: NewCancelAuctionUseCase(auctionRepo, txm, locks, clk, sink),
		settleUC: NewSettleAuctionUseCase(auctionRepo, txm, locks, clk, sink),
		stateUC:  NewGetAuctionStateUseCase(auctionRepo, bidRepo, txm, locks, clk),
		listUC:   NewListAuctionsUseCase(auctionRepo, clk),
		bidsUC:   NewListBidsUseCase(auctionRepo, bidRepo),
	}
}

func (s *auctionService) CreateAuction(ctx context.Context, caller domain.Identity, in domain.CreateAuctionInput) (*domain.Auction, error) {
	return s.createUC.Execute(ctx, caller, in)
}

func (s *auctionService) PlaceBid(ctx context.Context, caller domain.Identity, auctionID uuid.UUID, amount decimal.Decimal) (*PlaceBidResult, error) {
	return s.bidUC.Execute(ctx, caller, auctionID, amount)
}

func (s *auctionService) CancelAuction(ctx context.Context, caller domain.Identity, auctionID uuid.UUID) error {
	return s.cancelUC.Execute(ctx, caller, auctionID)
}

func (s *auctionService) SettleAuction(ctx context.Context, auctionID uuid.UUID) error {
	return s.settleUC.Execute(ctx, auctionID)
}

func (s *auctionService) GetAuctionState(ctx context.Context, auctionID uuid.UUID) (*AuctionStateDTO, error) {
	return s.stateUC.Execute(ctx, auctionID)
}

func (s *auctionService) ListAuctions(ctx context.Context, state domain.State, limit, offset int) ([]*AuctionStateDTO, error) {
	return s.listUC.Execute(ctx, state, limit, offset)
}

func (s *auctionService) ListBids(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	return s.bidsUC.Execute(ctx, auctionID)
}
