package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MessageType defines ws type message
type MessageType string

const (
	MessageTypeClientBid           MessageType = "client_bid"            // client msg to make a bid
	MessageTypeServerAuctionUpdate MessageType = "server_auction_update" // server msg with new high bid
	MessageTypeServerError         MessageType = "server_error"          // server msg indicating error
	MessageTypeServerInitialState  MessageType = "server_initial_state"  // server msg with auction state at connect
)

// BaseMessage is base struct for all the WS messages, includes a Type field
// for identify the message type
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientBidMessage is the DTO for a bid sent by a connected buyer. Identity
// travels explicitly in the payload, the gateway in front of this service has
// already authenticated it.
type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		AuctionID uuid.UUID `json:"auction_id"`
		UserID    uuid.UUID `json:"user_id"`
		Role      string    `json:"role"`
		Amount    string    `json:"amount"`
	} `json:"payload"`
}

// ServerAuctionUpdateMessage broadcasts the new high bid to an auction room
type ServerAuctionUpdateMessage struct {
	BaseMessage
	Payload struct {
		AuctionID  uuid.UUID       `json:"auction_id"`
		HighBid    decimal.Decimal `json:"high_bid"`
		BidderID   uuid.UUID       `json:"bidder_id"`
		EndTime    time.Time       `json:"end_time"`
		State      string          `json:"state"`
		OccurredAt time.Time       `json:"occurred_at"`
	} `json:"payload"`
}

type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error       string `json:"error"`
		CurrentHigh string `json:"current_high,omitempty"`
		MinimumNext string `json:"minimum_next,omitempty"`
	} `json:"payload"`
}

// ServerInitialStateMessage is sent to a client right after it joins a room
type ServerInitialStateMessage struct {
	BaseMessage
	Payload struct {
		AuctionID      uuid.UUID       `json:"auction_id"`
		StartingPrice  decimal.Decimal `json:"starting_price"`
		HighBid        decimal.Decimal `json:"high_bid"`
		MinimumNextBid decimal.Decimal `json:"minimum_next_bid"`
		EndTime        time.Time       `json:"end_time"`
		State          string          `json:"state"`
		BidCount       int             `json:"bid_count"`
	} `json:"payload"`
}
