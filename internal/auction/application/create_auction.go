package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmgate/bidEngine/internal/auction/domain"
	productdomain "github.com/farmgate/bidEngine/internal/product/domain"
	"github.com/farmgate/bidEngine/internal/shared/clock"
	"github.com/farmgate/bidEngine/internal/shared/logger"
)

var log = logger.GetLogger()

// CreateAuctionUseCase builds and activates a new auction for one of the
// farmer's products
type CreateAuctionUseCase struct {
	auctionRepo domain.AuctionRepository
	productRepo productdomain.ProductRepository
	txm         domain.TxManager
	clk         clock.Clock
	policy      domain.Policy
	sink        domain.EventSink
}

func NewCreateAuctionUseCase(
	auctionRepo domain.AuctionRepository,
	productRepo productdomain.ProductRepository,
	txm domain.TxManager,
	clk clock.Clock,
	policy domain.Policy,
	sink domain.EventSink,
) *CreateAuctionUseCase {
	return &CreateAuctionUseCase{
		auctionRepo: auctionRepo,
		productRepo: productRepo,
		txm:         txm,
		clk:         clk,
		policy:      policy,
		sink:        sink,
	}
}

// Execute validates the input, verifies product ownership and persists the
// auction already in Active state. Only farmers may create auctions, and only
// for products they own. All field violations are reported together.
func (uc *CreateAuctionUseCase) Execute(ctx context.Context, caller domain.Identity, in domain.CreateAuctionInput) (*domain.Auction, error) {
	if caller.Role != domain.RoleFarmer {
		log.Warn("CreateAuction rejected: caller is not a farmer",
			zap.String("callerID", caller.ID.String()),
			zap.String("role", string(caller.Role)),
		)
		return nil, domain.ErrUnauthorized
	}

	now := uc.clk.Now()
	parsed, verr := domain.ValidateAuctionInput(in, now, uc.policy)
	if verr != nil {
		log.Warn("CreateAuction rejected: invalid input",
			zap.String("callerID", caller.ID.String()),
			zap.Error(verr),
		)
		return nil, verr
	}

	product, err := uc.productRepo.GetByID(ctx, parsed.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create auction: failed to load product %s: %w", parsed.ProductID, err)
	}
	if product.FarmerID != caller.ID {
		log.Warn("CreateAuction rejected: product not owned by caller",
			zap.String("callerID", caller.ID.String()),
			zap.String("productID", product.ID.String()),
		)
		return nil, domain.ErrUnauthorized
	}

	auction := domain.NewAuction(uuid.New(), caller.ID, parsed, now)
	if err := auction.Activate(); err != nil {
		return nil, fmt.Errorf("create auction: activation failed: %w", err)
	}

	tx, err := uc.txm.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create auction: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.auctionRepo.Save(ctx, tx, auction); err != nil {
		return nil, fmt.Errorf("create auction: failed to save auction: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("create auction: failed to commit transaction: %w", err)
	}

	log.Info("Auction created",
		zap.String("auctionID", auction.ID.String()),
		zap.String("farmerID", caller.ID.String()),
		zap.String("productID", auction.ProductID.String()),
		zap.String("startingPrice", auction.StartingPrice.String()),
		zap.Time("endTime", auction.EndTime),
	)

	uc.sink.Emit(ctx, domain.Event{
		Type:       domain.EventAuctionCreated,
		AuctionID:  auction.ID,
		ProductID:  auction.ProductID,
		FarmerID:   auction.FarmerID,
		Amount:     auction.StartingPrice,
		State:      auction.State,
		EndTime:    auction.EndTime,
		OccurredAt: now,
	})

	return auction, nil
}
