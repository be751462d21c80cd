package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"vehicle-auctions/internal/services"
	"vehicle-auctions/pkg/logger"

	"github.com/labstack/echo/v4"
)

type FavouriteHandler struct {
	favouriteService *services.FavouriteService
	log              logger.Logger
}

type ToggleFavouriteRequest struct {
	UserID int64 `json:"user_id"`
	Active bool  `json:"active"`
}

func NewFavouriteHandler(favouriteService *services.FavouriteService, log logger.Logger) *FavouriteHandler {
	return &FavouriteHandler{
		favouriteService: favouriteService,
		log:              log,
	}
}

func (h *FavouriteHandler) Toggle(c echo.Context) error {
	favouriteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || favouriteID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid favourite id"})
	}

	var req ToggleFavouriteRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User id required"})
	}

	toggled, err := h.favouriteService.Toggle(c.Request().Context(), favouriteID, req.Active, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFavouriteNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Favourite not found"})
		case errors.Is(err, services.ErrFavouriteNotOwned):
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Favourite belongs to another user"})
		default:
			h.log.Error("Failed to toggle favourite", "favourite_id", favouriteID, "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to toggle favourite"})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"favourite_id": favouriteID,
		"active":       req.Active,
		"toggled":      toggled,
	})
}
