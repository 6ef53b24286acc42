package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmgate/bidEngine/internal/auction/application"
	"github.com/farmgate/bidEngine/internal/auction/domain"
)

// AuctionHandler exposes the auction service over REST
type AuctionHandler struct {
	service application.AuctionService
}

func NewAuctionHandler(service application.AuctionService) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// RegisterRoutes mounts the auction API under /api
func (h *AuctionHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/auctions", h.createAuction)
	api.Get("/auctions", h.listAuctions)
	api.Get("/auctions/:id", h.getAuction)
	api.Post("/auctions/:id/bids", h.placeBid)
	api.Get("/auctions/:id/bids", h.listBids)
	api.Post("/auctions/:id/cancel", h.cancelAuction)
	api.Post("/auctions/:id/settle", h.settleAuction)
}

type createAuctionBody struct {
	ProductID        string `json:"productId"`
	StartingPrice    string `json:"startingPrice"`
	Quantity         string `json:"quantity"`
	MinIncrement     string `json:"minIncrement"`
	EndTime          string `json:"endTime"`
	DeliveryRequired bool   `json:"deliveryRequired"`
}

type placeBidBody struct {
	Amount string `json:"amount"`
}

// callerIdentity reads the identity the authenticating gateway injected into
// the request headers. The engine treats it as trusted input and passes it on
// explicitly, it is never stashed in any ambient state.
func callerIdentity(c *fiber.Ctx) (domain.Identity, error) {
	id, err := uuid.Parse(c.Get("X-User-Id"))
	if err != nil {
		return domain.Identity{}, errors.New("missing or malformed X-User-Id header")
	}
	role, err := domain.ParseRole(c.Get("X-User-Role"))
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{ID: id, Role: role}, nil
}

func (h *AuctionHandler) createAuction(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	var body createAuctionBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	auction, err := h.service.CreateAuction(c.Context(), caller, domain.CreateAuctionInput{
		ProductID:        body.ProductID,
		StartingPrice:    body.StartingPrice,
		Quantity:         body.Quantity,
		MinIncrement:     body.MinIncrement,
		EndTime:          body.EndTime,
		DeliveryRequired: body.DeliveryRequired,
	})
	if err != nil {
		return writeDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"auction_id":        auction.ID,
		"product_id":        auction.ProductID,
		"farmer_id":         auction.FarmerID,
		"starting_price":    auction.StartingPrice,
		"min_increment":     auction.MinIncrement,
		"quantity":          auction.Quantity,
		"delivery_required": auction.DeliveryRequired,
		"start_time":        auction.StartTime,
		"end_time":          auction.EndTime,
		"state":             auction.CurrentState(),
	})
}

func (h *AuctionHandler) placeBid(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid auction id"})
	}

	var body placeBidBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount is not a valid number"})
	}

	result, err := h.service.PlaceBid(c.Context(), caller, auctionID, amount)
	if err != nil {
		return writeDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"bid_id":     result.Bid.ID,
		"auction_id": result.Bid.AuctionID,
		"amount":     result.Bid.Amount,
		"placed_at":  result.Bid.PlacedAt,
		"high_bid":   result.HighBid,
		"end_time":   result.EndTime,
		"state":      result.State,
	})
}

func (h *AuctionHandler) cancelAuction(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid auction id"})
	}

	if err := h.service.CancelAuction(c.Context(), caller, auctionID); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"state": domain.StateCancelled})
}

func (h *AuctionHandler) settleAuction(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid auction id"})
	}

	if err := h.service.SettleAuction(c.Context(), auctionID); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"state": domain.StateSettled})
}

func (h *AuctionHandler) getAuction(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid auction id"})
	}

	state, err := h.service.GetAuctionState(c.Context(), auctionID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(state)
}

func (h *AuctionHandler) listBids(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid auction id"})
	}

	bids, err := h.service.ListBids(c.Context(), auctionID)
	if err != nil {
		return writeDomainError(c, err)
	}

	out := make([]fiber.Map, 0, len(bids))
	for _, bid := range bids {
		out = append(out, fiber.Map{
			"bid_id":    bid.ID,
			"bidder_id": bid.BidderID,
			"amount":    bid.Amount,
			"placed_at": bid.PlacedAt,
		})
	}
	return c.JSON(fiber.Map{"bids": out})
}

func (h *AuctionHandler) listAuctions(c *fiber.Ctx) error {
	state := domain.State(c.Query("state"))
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	list, err := h.service.ListAuctions(c.Context(), state, limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"auctions": list})
}

// writeDomainError maps domain errors onto HTTP statuses. BidTooLow carries
// the current high bid so the UI can suggest a valid next amount, and
// InvalidField responses list every violated field at once.
func writeDomainError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "invalid auction input",
			"fields": verr.Fields,
		})
	}

	var tooLow *domain.BidTooLowError
	if errors.As(err, &tooLow) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":        err.Error(),
			"current_high": tooLow.CurrentHigh,
			"minimum_next": tooLow.MinimumNext,
		})
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrAuctionNotFound), errors.Is(err, domain.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrAuctionNotActive),
		errors.Is(err, domain.ErrCannotCancelWithBids),
		errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
