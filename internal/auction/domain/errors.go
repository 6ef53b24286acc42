package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrUnauthorized         = errors.New("caller is not allowed to perform this operation")
	ErrAuctionNotActive     = errors.New("auction is not active")
	ErrBidTooLow            = errors.New("bid amount is too low")
	ErrCannotCancelWithBids = errors.New("auction cannot be cancelled once it has bids")
	ErrInvalidTransition    = errors.New("invalid auction state transition")
	ErrInvalidField         = errors.New("invalid auction input")
)

// FieldError is a single creation-time input violation, keyed by field name
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError aggregates every violated field so the caller can render
// all of them at once instead of fixing one error at a time
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "invalid auction input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidField }

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// BidTooLowError carries the current high bid so the UI can suggest the next
// acceptable amount
type BidTooLowError struct {
	CurrentHigh decimal.Decimal
	MinimumNext decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid amount is too low: current high bid is %s, minimum next bid is %s",
		e.CurrentHigh.String(), e.MinimumNext.String())
}

func (e *BidTooLowError) Is(target error) bool { return target == ErrBidTooLow }

// InvalidTransitionError reports an attempted transition outside the table in state.go
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid auction state transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }
