package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestValidateAuctionInput(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pol := DefaultPolicy()
	productID := uuid.New().String()

	validInput := func() CreateAuctionInput {
		return CreateAuctionInput{
			ProductID:     productID,
			StartingPrice: "10",
			EndTime:       now.Add(2 * time.Hour).Format(time.RFC3339),
		}
	}

	tests := []struct {
		name       string
		mutate     func(*CreateAuctionInput)
		wantFields []string
	}{
		{
			name:       "valid_input",
			mutate:     func(in *CreateAuctionInput) {},
			wantFields: nil,
		},
		{
			name:       "missing_product",
			mutate:     func(in *CreateAuctionInput) { in.ProductID = "" },
			wantFields: []string{"productId"},
		},
		{
			name:       "malformed_product_id",
			mutate:     func(in *CreateAuctionInput) { in.ProductID = "not-a-uuid" },
			wantFields: []string{"productId"},
		},
		{
			name:       "starting_price_not_a_number",
			mutate:     func(in *CreateAuctionInput) { in.StartingPrice = "abc" },
			wantFields: []string{"startingPrice"},
		},
		{
			name:       "starting_price_zero",
			mutate:     func(in *CreateAuctionInput) { in.StartingPrice = "0" },
			wantFields: []string{"startingPrice"},
		},
		{
			name:       "starting_price_negative",
			mutate:     func(in *CreateAuctionInput) { in.StartingPrice = "-5" },
			wantFields: []string{"startingPrice"},
		},
		{
			name:       "negative_quantity",
			mutate:     func(in *CreateAuctionInput) { in.Quantity = "-1" },
			wantFields: []string{"quantity"},
		},
		{
			name:       "non_positive_min_increment",
			mutate:     func(in *CreateAuctionInput) { in.MinIncrement = "0" },
			wantFields: []string{"minIncrement"},
		},
		{
			name:       "unparseable_end_time",
			mutate:     func(in *CreateAuctionInput) { in.EndTime = "tomorrow" },
			wantFields: []string{"endTime"},
		},
		{
			name:       "end_time_below_one_hour",
			mutate:     func(in *CreateAuctionInput) { in.EndTime = now.Add(30 * time.Minute).Format(time.RFC3339) },
			wantFields: []string{"endTime"},
		},
		{
			name:       "end_time_exactly_one_hour",
			mutate:     func(in *CreateAuctionInput) { in.EndTime = now.Add(time.Hour).Format(time.RFC3339) },
			wantFields: []string{"endTime"},
		},
		{
			name:       "end_time_beyond_seven_days",
			mutate:     func(in *CreateAuctionInput) { in.EndTime = now.Add(8 * 24 * time.Hour).Format(time.RFC3339) },
			wantFields: []string{"endTime"},
		},
		{
			name: "all_violations_reported_together",
			mutate: func(in *CreateAuctionInput) {
				in.ProductID = ""
				in.StartingPrice = "-1"
				in.Quantity = "-2"
				in.EndTime = "garbage"
			},
			wantFields: []string{"productId", "startingPrice", "quantity", "endTime"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			parsed, verr := ValidateAuctionInput(in, now, pol)
			if len(tt.wantFields) == 0 {
				require.Nil(t, verr)
				require.Equal(t, productID, parsed.ProductID.String())
				require.True(t, parsed.StartingPrice.Equal(decimal.NewFromInt(10)))
				require.True(t, parsed.MinIncrement.Equal(pol.DefaultMinIncrement))
				return
			}

			require.NotNil(t, verr)
			require.ErrorIs(t, verr, ErrInvalidField)

			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			require.ElementsMatch(t, tt.wantFields, got)
		})
	}
}

func TestValidateAuctionInput_SevenDayBoundaryAllowed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in := CreateAuctionInput{
		ProductID:     uuid.New().String(),
		StartingPrice: "10",
		EndTime:       now.Add(7 * 24 * time.Hour).Format(time.RFC3339),
	}

	parsed, verr := ValidateAuctionInput(in, now, DefaultPolicy())
	require.Nil(t, verr)
	require.Equal(t, now.Add(7*24*time.Hour), parsed.EndTime.UTC())
}

func TestValidateBid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newActiveAuction := func() *Auction {
		a := NewAuction(uuid.New(), uuid.New(), ParsedAuctionInput{
			ProductID:     uuid.New(),
			StartingPrice: decimal.NewFromInt(10),
			MinIncrement:  decimal.NewFromInt(1),
			EndTime:       now.Add(2 * time.Hour),
		}, now)
		require.NoError(t, a.Activate())
		return a
	}

	t.Run("amount_below_starting_plus_increment", func(t *testing.T) {
		a := newActiveAuction()
		err := ValidateBid(a, decimal.NewFromFloat(10.5), now)
		require.ErrorIs(t, err, ErrBidTooLow)

		var tooLow *BidTooLowError
		require.ErrorAs(t, err, &tooLow)
		require.True(t, tooLow.CurrentHigh.Equal(decimal.NewFromInt(10)))
		require.True(t, tooLow.MinimumNext.Equal(decimal.NewFromInt(11)))
	})

	t.Run("amount_exactly_minimum_next", func(t *testing.T) {
		a := newActiveAuction()
		require.NoError(t, ValidateBid(a, decimal.NewFromInt(11), now))
	})

	t.Run("auction_not_active", func(t *testing.T) {
		a := newActiveAuction()
		a.State = StateClosed
		err := ValidateBid(a, decimal.NewFromInt(11), now)
		require.ErrorIs(t, err, ErrAuctionNotActive)
	})

	t.Run("end_time_passed", func(t *testing.T) {
		a := newActiveAuction()
		err := ValidateBid(a, decimal.NewFromInt(11), now.Add(3*time.Hour))
		require.ErrorIs(t, err, ErrAuctionNotActive)
	})

	t.Run("at_end_time_exactly", func(t *testing.T) {
		a := newActiveAuction()
		err := ValidateBid(a, decimal.NewFromInt(11), a.EndTime)
		require.ErrorIs(t, err, ErrAuctionNotActive)
	})
}
