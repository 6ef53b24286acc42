package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/farmgate/bidEngine/internal/auction/application"
	"github.com/farmgate/bidEngine/internal/auction/domain"
	"github.com/farmgate/bidEngine/internal/shared/logger"
	"github.com/farmgate/bidEngine/internal/shared/websocket"
)

var log = logger.GetLogger()

// AuctionWSHandler handles the ws inbound msgs which are specific to the
// auction module
type AuctionWSHandler struct {
	auctionService application.AuctionService
	hub            *websocket.Hub
}

// NewAuctionWSHandler creates a new instance of AuctionWSHandler
func NewAuctionWSHandler(auctionService application.AuctionService, hub *websocket.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{
		auctionService: auctionService,
		hub:            hub,
	}
}

// ListenForMessages consumes the hub inbound channel and processes every
// message in its own goroutine
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("AuctionWSHandler started listening for inbound messages")
	for {
		select {
		case <-ctx.Done():
			log.Info("AuctionWSHandler stopped listening for inbound messages")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		h.sendErrorToClient(client, "invalid message format", nil)
		return
	}
	switch baseMsg.Type {
	case MessageTypeClientBid:
		h.handleClientBidMessage(ctx, client, data)
	default:
		h.sendErrorToClient(client, "unknown message type", nil)
	}
}

func (h *AuctionWSHandler) handleClientBidMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var bidMsg ClientBidMessage
	if err := json.Unmarshal(data, &bidMsg); err != nil {
		h.sendErrorToClient(client, "invalid bid message format", nil)
		return
	}

	if bidMsg.Payload.AuctionID.String() != client.AuctionID {
		h.sendErrorToClient(client, "auction ID mismatch", nil)
		return
	}

	role, err := domain.ParseRole(bidMsg.Payload.Role)
	if err != nil {
		h.sendErrorToClient(client, "unknown role", nil)
		return
	}
	amount, err := decimal.NewFromString(bidMsg.Payload.Amount)
	if err != nil {
		h.sendErrorToClient(client, "invalid bid amount", nil)
		return
	}

	caller := domain.Identity{ID: bidMsg.Payload.UserID, Role: role}
	_, err = h.auctionService.PlaceBid(ctx, caller, bidMsg.Payload.AuctionID, amount)
	if err != nil {
		var tooLow *domain.BidTooLowError
		if errors.As(err, &tooLow) {
			h.sendErrorToClient(client, err.Error(), tooLow)
			return
		}
		h.sendErrorToClient(client, err.Error(), nil)
		return
	}
	// the room broadcast happens through the event sink, every watcher gets
	// the update including the bidder
}

// sendErrorToClient serializes and sends an error msg to a specific client
func (h *AuctionWSHandler) sendErrorToClient(client *websocket.Client, errorMessage string, tooLow *domain.BidTooLowError) {
	errMsg := ServerErrorMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerError},
	}
	errMsg.Payload.Error = errorMessage
	if tooLow != nil {
		errMsg.Payload.CurrentHigh = tooLow.CurrentHigh.String()
		errMsg.Payload.MinimumNext = tooLow.MinimumNext.String()
	}
	data, err := json.Marshal(errMsg)
	if err != nil {
		log.Error("failed to marshal ServerErrorMessage", zap.Error(err))
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn("client send channel full or closed, could not send error msg")
	}
}

// SendInitialState pushes the current auction snapshot to a freshly joined
// client
func (h *AuctionWSHandler) SendInitialState(ctx context.Context, client *websocket.Client, state *application.AuctionStateDTO) {
	msg := ServerInitialStateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerInitialState},
	}
	msg.Payload.AuctionID = state.AuctionID
	msg.Payload.StartingPrice = state.StartingPrice
	msg.Payload.HighBid = state.CurrentHighBid
	msg.Payload.MinimumNextBid = state.MinimumNextBid
	msg.Payload.EndTime = state.EndTime
	msg.Payload.State = state.State
	msg.Payload.BidCount = state.BidCount

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal ServerInitialStateMessage", zap.Error(err))
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn("client send channel full, could not send initial state")
	}
}
