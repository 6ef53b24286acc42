package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy holds the marketplace rules that bound every auction. Kept as
// explicit configuration instead of hard-coded constants so they can be tuned
// per deployment.
type Policy struct {
	MinDuration         time.Duration
	MaxDuration         time.Duration
	DefaultMinIncrement decimal.Decimal
}

// DefaultPolicy returns the marketplace defaults: auctions run between one
// hour and seven days, bids must beat the high bid by at least 1
func DefaultPolicy() Policy {
	return Policy{
		MinDuration:         time.Hour,
		MaxDuration:         7 * 24 * time.Hour,
		DefaultMinIncrement: decimal.NewFromInt(1),
	}
}

// CreateAuctionInput carries the raw creation fields as they arrive from the
// boundary. Numeric and time fields stay strings so that parse failures can be
// reported per field together with the rule violations.
type CreateAuctionInput struct {
	ProductID        string
	StartingPrice    string
	Quantity         string
	MinIncrement     string
	EndTime          string
	DeliveryRequired bool
}

// ParsedAuctionInput is the typed result of a successful validation
type ParsedAuctionInput struct {
	ProductID        uuid.UUID
	StartingPrice    decimal.Decimal
	Quantity         decimal.NullDecimal
	MinIncrement     decimal.Decimal
	EndTime          time.Time
	DeliveryRequired bool
}

// ValidateAuctionInput checks every creation field and reports all violations
// at once, it never short-circuits on the first bad field. Pure function, the
// caller supplies now.
func ValidateAuctionInput(in CreateAuctionInput, now time.Time, pol Policy) (ParsedAuctionInput, *ValidationError) {
	var parsed ParsedAuctionInput
	verr := &ValidationError{}

	if in.ProductID == "" {
		verr.add("productId", "is required")
	} else if id, err := uuid.Parse(in.ProductID); err != nil {
		verr.add("productId", "is not a valid id")
	} else {
		parsed.ProductID = id
	}

	if in.StartingPrice == "" {
		verr.add("startingPrice", "is required")
	} else if price, err := decimal.NewFromString(in.StartingPrice); err != nil {
		verr.add("startingPrice", "is not a valid number")
	} else if !price.IsPositive() {
		verr.add("startingPrice", "must be greater than zero")
	} else {
		parsed.StartingPrice = price
	}

	if in.Quantity != "" {
		if qty, err := decimal.NewFromString(in.Quantity); err != nil {
			verr.add("quantity", "is not a valid number")
		} else if qty.IsNegative() {
			verr.add("quantity", "must not be negative")
		} else {
			parsed.Quantity = decimal.NewNullDecimal(qty)
		}
	}

	parsed.MinIncrement = pol.DefaultMinIncrement
	if in.MinIncrement != "" {
		if inc, err := decimal.NewFromString(in.MinIncrement); err != nil {
			verr.add("minIncrement", "is not a valid number")
		} else if !inc.IsPositive() {
			verr.add("minIncrement", "must be greater than zero")
		} else {
			parsed.MinIncrement = inc
		}
	}

	if in.EndTime == "" {
		verr.add("endTime", "is required")
	} else if end, err := time.Parse(time.RFC3339, in.EndTime); err != nil {
		verr.add("endTime", "is not a valid timestamp")
	} else if !end.After(now.Add(pol.MinDuration)) {
		verr.add("endTime", "auction must run for at least "+pol.MinDuration.String())
	} else if end.After(now.Add(pol.MaxDuration)) {
		verr.add("endTime", "auction must not run for more than "+pol.MaxDuration.String())
	} else {
		parsed.EndTime = end
	}

	parsed.DeliveryRequired = in.DeliveryRequired

	if len(verr.Fields) > 0 {
		return ParsedAuctionInput{}, verr
	}
	return parsed, nil
}

// ValidateBid checks a bid amount against the auction's open window and its
// cached high bid. Pure with respect to the auction, the caller holds the
// auction's critical section and supplies now.
func ValidateBid(a *Auction, amount decimal.Decimal, now time.Time) error {
	if a.State != StateActive || !now.Before(a.EndTime) {
		return ErrAuctionNotActive
	}
	minimum := a.CurrentPrice.Add(a.MinIncrement)
	if amount.LessThan(minimum) {
		return &BidTooLowError{CurrentHigh: a.CurrentPrice, MinimumNext: minimum}
	}
	return nil
}
