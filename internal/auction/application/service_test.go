package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/farmgate/bidEngine/internal/auction/domain"
	auctionmem "github.com/farmgate/bidEngine/internal/auction/infra/repository/memory"
	productdomain "github.com/farmgate/bidEngine/internal/product/domain"
	productmem "github.com/farmgate/bidEngine/internal/product/infra/repository/memory"
	"github.com/farmgate/bidEngine/internal/shared/clock"
)

// recordingSink captures emitted events for assertions
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Emit(ctx context.Context, ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) byType(t domain.EventType) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Event
	for _, ev := range s.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	service  AuctionService
	clk      *clock.Fixed
	sink     *recordingSink
	products *productmem.ProductRepository
	farmer   domain.Identity
	buyer    domain.Identity
	product  *productdomain.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	sink := &recordingSink{}
	products := productmem.NewProductRepository()

	farmer := domain.Identity{ID: uuid.New(), Role: domain.RoleFarmer}
	buyer := domain.Identity{ID: uuid.New(), Role: domain.RoleBuyer}

	product := &productdomain.Product{
		ID:       uuid.New(),
		FarmerID: farmer.ID,
		Title:    "Organic Tomatoes",
	}
	products.Put(product)

	service := NewAuctionService(
		auctionmem.NewAuctionRepository(),
		auctionmem.NewBidRepository(),
		products,
		auctionmem.NewTxManager(),
		clk,
		domain.DefaultPolicy(),
		sink,
	)

	return &fixture{
		service:  service,
		clk:      clk,
		sink:     sink,
		products: products,
		farmer:   farmer,
		buyer:    buyer,
		product:  product,
	}
}

func (f *fixture) validInput() domain.CreateAuctionInput {
	return domain.CreateAuctionInput{
		ProductID:     f.product.ID.String(),
		StartingPrice: "10",
		EndTime:       f.clk.Now().Add(2 * time.Hour).Format(time.RFC3339),
	}
}

func (f *fixture) createAuction(t *testing.T) *domain.Auction {
	t.Helper()
	a, err := f.service.CreateAuction(context.Background(), f.farmer, f.validInput())
	require.NoError(t, err)
	return a
}

func TestAuctionService_CreateAuction(t *testing.T) {
	ctx := context.Background()

	t.Run("farmer_creates_active_auction", func(t *testing.T) {
		f := newFixture(t)

		a, err := f.service.CreateAuction(ctx, f.farmer, f.validInput())
		require.NoError(t, err)
		require.Equal(t, domain.StateActive, a.State)
		require.Equal(t, f.farmer.ID, a.FarmerID)
		require.True(t, a.StartingPrice.Equal(decimal.NewFromInt(10)))
		require.True(t, a.MinIncrement.Equal(decimal.NewFromInt(1)))
		require.Equal(t, f.clk.Now(), a.StartTime)
		require.True(t, a.EndTime.Sub(a.StartTime) >= time.Hour)
		require.True(t, a.EndTime.Sub(a.StartTime) <= 7*24*time.Hour)

		created := f.sink.byType(domain.EventAuctionCreated)
		require.Len(t, created, 1)
		require.Equal(t, a.ID, created[0].AuctionID)
	})

	t.Run("buyer_cannot_create", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateAuction(ctx, f.buyer, f.validInput())
		require.ErrorIs(t, err, domain.ErrUnauthorized)
		require.Empty(t, f.sink.byType(domain.EventAuctionCreated))
	})

	t.Run("aggregated_field_errors", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateAuction(ctx, f.farmer, domain.CreateAuctionInput{})
		require.ErrorIs(t, err, domain.ErrInvalidField)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 3) // productId, startingPrice, endTime
	})

	t.Run("duration_below_minimum", func(t *testing.T) {
		f := newFixture(t)
		in := f.validInput()
		in.EndTime = f.clk.Now().Add(30 * time.Minute).Format(time.RFC3339)

		_, err := f.service.CreateAuction(ctx, f.farmer, in)
		require.ErrorIs(t, err, domain.ErrInvalidField)
	})

	t.Run("unknown_product", func(t *testing.T) {
		f := newFixture(t)
		in := f.validInput()
		in.ProductID = uuid.New().String()

		_, err := f.service.CreateAuction(ctx, f.farmer, in)
		require.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("product_owned_by_other_farmer", func(t *testing.T) {
		f := newFixture(t)
		other := &productdomain.Product{ID: uuid.New(), FarmerID: uuid.New(), Title: "Wheat"}
		f.products.Put(other)

		in := f.validInput()
		in.ProductID = other.ID.String()

		_, err := f.service.CreateAuction(ctx, f.farmer, in)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestAuctionService_PlaceBid(t *testing.T) {
	ctx := context.Background()

	t.Run("buyer_bid_accepted_with_snapshot", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		result, err := f.service.PlaceBid(ctx, f.buyer, a.ID, decimal.NewFromInt(11))
		require.NoError(t, err)
		require.Equal(t, f.buyer.ID, result.Bid.BidderID)
		require.True(t, result.HighBid.Equal(decimal.NewFromInt(11)))
		require.Equal(t, domain.StateActive, result.State)

		placed := f.sink.byType(domain.EventBidPlaced)
		require.Len(t, placed, 1)
		require.Equal(t, result.Bid.ID, placed[0].BidID)
		require.Equal(t, uuid.Nil, placed[0].PrevBidderID)
	})

	t.Run("outbid_event_names_previous_bidder", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)
		otherBuyer := domain.Identity{ID: uuid.New(), Role: domain.RoleBuyer}

		_, err := f.service.PlaceBid(ctx, f.buyer, a.ID, decimal.NewFromInt(11))
		require.NoError(t, err)
		_, err = f.service.PlaceBid(ctx, otherBuyer, a.ID, decimal.NewFromInt(12))
		require.NoError(t, err)

		placed := f.sink.byType(domain.EventBidPlaced)
		require.Len(t, placed, 2)
		require.Equal(t, f.buyer.ID, placed[1].PrevBidderID)
	})

	t.Run("farmer_cannot_bid", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		_, err := f.service.PlaceBid(ctx, f.farmer, a.ID, decimal.NewFromInt(11))
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unknown_auction", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.PlaceBid(ctx, f.buyer, uuid.New(), decimal.NewFromInt(11))
		require.ErrorIs(t, err, domain.ErrAuctionNotFound)
	})

	t.Run("bid_below_minimum_reports_current_high", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		_, err := f.service.PlaceBid(ctx, f.buyer, a.ID, decimal.NewFromFloat(10.5))
		require.ErrorIs(t, err, domain.ErrBidTooLow)

		var tooLow *domain.BidTooLowError
		require.ErrorAs(t, err, &tooLow)
		require.True(t, tooLow.CurrentHigh.Equal(decimal.NewFromInt(10)))
		require.True(t, tooLow.MinimumNext.Equal(decimal.NewFromInt(11)))
		require.Empty(t, f.sink.byType(domain.EventBidPlaced))
	})

	t.Run("same_amount_twice_second_rejected", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		_, err := f.service.PlaceBid(ctx, f.buyer, a.ID, decimal.NewFromInt(11))
		require.NoError(t, err)
		_, err = f.service.PlaceBid(ctx, f.buyer, a.ID, decimal.NewFromInt(11))
		require.ErrorIs(t, err, domain.ErrBidTooLow)
	})

	t.Run("bid_after_end_time_closes_lazily", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		f.clk.Advance(3 * time.Hour)
		_, err := f.service.PlaceBid(ctx, f.buyer, a.ID, decimal.NewFromInt(11))
		require.ErrorIs(t, err, domain.ErrAuctionNotActive)

		state, err := f.service.GetAuctionState(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, string(domain.StateClosed), state.State)
	})

	t.Run("concurrent_bids_single_ordering", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(amount int64) {
				defer wg.Done()
				bidder := domain.Identity{ID: uuid.New(), Role: domain.RoleBuyer}
				_, _ = f.service.PlaceBid(ctx, bidder, a.ID, decimal.NewFromInt(amount))
			}(int64(11 + i))
		}
		wg.Wait()

		state, err := f.service.GetAuctionState(ctx, a.ID)
		require.NoError(t, err)

		// accepted bids re-checked sequentially stay self-consistent
		placed := f.sink.byType(domain.EventBidPlaced)
		require.NotEmpty(t, placed)
		prev := decimal.NewFromInt(10)
		for _, ev := range placed {
			require.True(t, ev.Amount.Sub(prev).GreaterThanOrEqual(decimal.NewFromInt(1)))
			prev = ev.Amount
		}
		require.True(t, state.CurrentHighBid.Equal(prev))
		require.Equal(t, len(placed), state.BidCount)
	})
}

func TestAuctionService_CancelAuction(t *testing.T) {
	ctx := context.Background()

	t.Run("owner_cancels_before_bids", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		require.NoError(t, f.service.CancelAuction(ctx, f.farmer, a.ID))

		state, err := f.service.GetAuctionState(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, string(domain.StateCancelled), state.State)
		require.Len(t, f.sink.byType(domain.EventAuctionCancelled), 1)
	})

	t.Run("cancel_with_bids_rejected", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		_, err := f.service.PlaceBid(ctx, f.buyer, a.ID, decimal.NewFromInt(11))
		require.NoError(t, err)

		err = f.service.CancelAuction(ctx, f.farmer, a.ID)
		require.ErrorIs(t, err, domain.ErrCannotCancelWithBids)
	})

	t.Run("non_owner_cannot_cancel", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		otherFarmer := domain.Identity{ID: uuid.New(), Role: domain.RoleFarmer}
		require.ErrorIs(t, f.service.CancelAuction(ctx, otherFarmer, a.ID), domain.ErrUnauthorized)
		require.ErrorIs(t, f.service.CancelAuction(ctx, f.buyer, a.ID), domain.ErrUnauthorized)
	})
}

func TestAuctionService_SettleAuction(t *testing.T) {
	ctx := context.Background()

	t.Run("settlement_confirmation_after_close", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		_, err := f.service.PlaceBid(ctx, f.buyer, a.ID, decimal.NewFromInt(11))
		require.NoError(t, err)

		f.clk.Advance(3 * time.Hour)
		require.NoError(t, f.service.SettleAuction(ctx, a.ID))

		state, err := f.service.GetAuctionState(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, string(domain.StateSettled), state.State)

		settled := f.sink.byType(domain.EventAuctionSettled)
		require.Len(t, settled, 1)
		require.Equal(t, f.buyer.ID, settled[0].BidderID)
	})

	t.Run("settle_while_active_rejected", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		require.ErrorIs(t, f.service.SettleAuction(ctx, a.ID), domain.ErrInvalidTransition)
	})
}

func TestAuctionService_GetAuctionState(t *testing.T) {
	ctx := context.Background()

	t.Run("reading_applies_lazy_close", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		state, err := f.service.GetAuctionState(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, string(domain.StateActive), state.State)
		require.True(t, state.MinimumNextBid.Equal(decimal.NewFromInt(11)))

		f.clk.Advance(3 * time.Hour)
		state, err = f.service.GetAuctionState(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, string(domain.StateClosed), state.State)
	})

	t.Run("includes_latest_bid", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		_, err := f.service.PlaceBid(ctx, f.buyer, a.ID, decimal.NewFromInt(11))
		require.NoError(t, err)

		state, err := f.service.GetAuctionState(ctx, a.ID)
		require.NoError(t, err)
		require.True(t, state.LastBidAmount.Equal(decimal.NewFromInt(11)))
		require.Equal(t, f.buyer.ID, state.LastBidderID)
		require.NotNil(t, state.LastBidTime)
		require.Equal(t, 1, state.BidCount)
	})

	t.Run("unknown_auction", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.GetAuctionState(ctx, uuid.New())
		require.ErrorIs(t, err, domain.ErrAuctionNotFound)
	})
}

func TestAuctionService_ListAuctions(t *testing.T) {
	ctx := context.Background()

	t.Run("filter_by_state_with_lazy_close_derived", func(t *testing.T) {
		f := newFixture(t)
		a1 := f.createAuction(t)
		a2 := f.createAuction(t)
		require.NoError(t, f.service.CancelAuction(ctx, f.farmer, a2.ID))

		active, err := f.service.ListAuctions(ctx, domain.StateActive, 10, 0)
		require.NoError(t, err)
		require.Len(t, active, 1)
		require.Equal(t, a1.ID, active[0].AuctionID)

		// past end time the listing derives closed even though the row still
		// says active
		f.clk.Advance(3 * time.Hour)
		listed, err := f.service.ListAuctions(ctx, domain.StateActive, 10, 0)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.Equal(t, string(domain.StateClosed), listed[0].State)
	})

	t.Run("ledger_in_acceptance_order", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		for _, amt := range []int64{11, 12, 14} {
			_, err := f.service.PlaceBid(ctx, f.buyer, a.ID, decimal.NewFromInt(amt))
			require.NoError(t, err)
		}

		bids, err := f.service.ListBids(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, bids, 3)
		require.True(t, bids[0].Amount.Equal(decimal.NewFromInt(11)))
		require.True(t, bids[2].Amount.Equal(decimal.NewFromInt(14)))

		_, err = f.service.ListBids(ctx, uuid.New())
		require.ErrorIs(t, err, domain.ErrAuctionNotFound)
	})

	t.Run("list_while_bidding", func(t *testing.T) {
		f := newFixture(t)
		a := f.createAuction(t)

		// listings snapshot the aggregate under its mutex, so reading a page
		// while bids land must stay race-free and internally consistent
		const n = 50
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(amount int64) {
				defer wg.Done()
				bidder := domain.Identity{ID: uuid.New(), Role: domain.RoleBuyer}
				_, _ = f.service.PlaceBid(ctx, bidder, a.ID, decimal.NewFromInt(amount))
			}(int64(11 + i))
		}
		for j := 0; j < 20; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				listed, err := f.service.ListAuctions(ctx, domain.StateActive, 10, 0)
				require.NoError(t, err)
				for _, dto := range listed {
					require.False(t, dto.CurrentHighBid.LessThan(dto.StartingPrice))
					require.True(t, dto.MinimumNextBid.Equal(dto.CurrentHighBid.Add(dto.MinIncrement)))
				}
				_, err = f.service.GetAuctionState(ctx, a.ID)
				require.NoError(t, err)
			}()
		}
		wg.Wait()

		state, err := f.service.GetAuctionState(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, state.BidCount, len(f.sink.byType(domain.EventBidPlaced)))
	})

	t.Run("pagination", func(t *testing.T) {
		f := newFixture(t)
		for j := 0; j < 5; j++ {
			f.createAuction(t)
		}

		page, err := f.service.ListAuctions(ctx, "", 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)

		rest, err := f.service.ListAuctions(ctx, "", 10, 4)
		require.NoError(t, err)
		require.Len(t, rest, 1)
	})
}
