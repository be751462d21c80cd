package handlers

import (
	"net/http"
	"strconv"

	"vehicle-auctions/internal/services"
	"vehicle-auctions/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type BidHandler struct {
	bidService *services.BidService
	log        logger.Logger
}

type PlaceBidRequest struct {
	BidderID int64           `json:"bidder_id"`
	Amount   decimal.Decimal `json:"amount"`
}

func NewBidHandler(bidService *services.BidService, log logger.Logger) *BidHandler {
	return &BidHandler{
		bidService: bidService,
		log:        log,
	}
}

func (h *BidHandler) PlaceBid(c echo.Context) error {
	lotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || lotID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid lot id"})
	}

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.BidderID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Bidder id required"})
	}
	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Bid amount must be positive"})
	}

	bid, err := h.bidService.PlaceBid(c.Request().Context(), lotID, req.BidderID, req.Amount)
	if err != nil {
		h.log.Error("Failed to place bid", "lot_id", lotID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to place bid"})
	}

	return c.JSON(http.StatusCreated, bid)
}

func (h *BidHandler) GetHighBid(c echo.Context) error {
	lotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || lotID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid lot id"})
	}

	high, err := h.bidService.CurrentHighBid(c.Request().Context(), lotID)
	if err != nil {
		h.log.Error("Failed to load high bid", "lot_id", lotID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load high bid"})
	}
	if high == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No bids for lot"})
	}

	return c.JSON(http.StatusOK, high)
}
