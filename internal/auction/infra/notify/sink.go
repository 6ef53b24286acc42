// Package notify implements the engine's event sink. It fans domain events
// out to the websocket rooms and the log; the external notification system
// consumes the same events downstream. Delivery is fire-and-forget, a failed
// broadcast never affects the mutation that produced the event.
package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	infraws "github.com/farmgate/bidEngine/internal/auction/infra/websocket"

	"github.com/farmgate/bidEngine/internal/auction/domain"
	"github.com/farmgate/bidEngine/internal/shared/logger"
	"github.com/farmgate/bidEngine/internal/shared/websocket"
)

var log = logger.GetLogger()

// HubSink broadcasts events to the per-auction websocket rooms
type HubSink struct {
	hub *websocket.Hub
}

func NewHubSink(hub *websocket.Hub) *HubSink {
	return &HubSink{hub: hub}
}

func (s *HubSink) Emit(ctx context.Context, ev domain.Event) {
	log.Info("Domain event",
		zap.String("type", string(ev.Type)),
		zap.String("auctionID", ev.AuctionID.String()),
		zap.String("state", string(ev.State)),
	)

	if ev.Type != domain.EventBidPlaced {
		return
	}

	msg := infraws.ServerAuctionUpdateMessage{
		BaseMessage: infraws.BaseMessage{Type: infraws.MessageTypeServerAuctionUpdate},
	}
	msg.Payload.AuctionID = ev.AuctionID
	msg.Payload.HighBid = ev.Amount
	msg.Payload.BidderID = ev.BidderID
	msg.Payload.EndTime = ev.EndTime
	msg.Payload.State = string(ev.State)
	msg.Payload.OccurredAt = ev.OccurredAt

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal auction update", zap.Error(err))
		return
	}
	s.hub.BroadcastToAuction(ev.AuctionID.String(), data)
}

// LogSink only logs events. Used when the service runs without websockets,
// and in tests.
type LogSink struct{}

func (LogSink) Emit(ctx context.Context, ev domain.Event) {
	log.Info("Domain event",
		zap.String("type", string(ev.Type)),
		zap.String("auctionID", ev.AuctionID.String()),
		zap.String("state", string(ev.State)),
	)
}
