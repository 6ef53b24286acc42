package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/farmgate/bidEngine/internal/auction/application"
	infraws "github.com/farmgate/bidEngine/internal/auction/infra/websocket"
	sharedws "github.com/farmgate/bidEngine/internal/shared/websocket"
)

// RegisterWebSocketRoutes mounts the live auction room endpoint. Each
// connection joins the room of one auction and receives the current snapshot
// followed by every accepted bid.
func RegisterWebSocketRoutes(
	ctx context.Context,
	app *fiber.App,
	hub *sharedws.Hub,
	wsHandler *infraws.AuctionWSHandler,
	service application.AuctionService,
) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/auctions/:id", websocket.New(func(conn *websocket.Conn) {
		auctionID, err := uuid.Parse(conn.Params("id"))
		if err != nil {
			_ = conn.Close()
			return
		}

		state, err := service.GetAuctionState(ctx, auctionID)
		if err != nil {
			_ = conn.Close()
			return
		}

		client := &sharedws.Client{
			Hub:       hub,
			Conn:      conn,
			Send:      make(chan []byte, 16),
			AuctionID: auctionID.String(),
			ID:        uuid.New().String(),
		}
		hub.RegisterClient(client)

		go client.WritePump(ctx)
		wsHandler.SendInitialState(ctx, client, state)

		// blocks until the peer disconnects
		client.ReadPump(ctx)
	}))
}
