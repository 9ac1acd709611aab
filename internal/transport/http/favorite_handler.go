package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/Joestate_APP_BackEnd/internal/service"
	"github.com/njprem/Joestate_APP_BackEnd/internal/util"
)

type FavoriteHandler struct {
	favorites *service.FavoriteService
	listings  *service.ListingService
}

func RegisterFavorites(e *echo.Echo, identity IdentityProvider, favorites *service.FavoriteService, listings *service.ListingService) {
	handler := &FavoriteHandler{
		favorites: favorites,
		listings:  listings,
	}

	e.POST("/api/properties/:id/favorite", handler.toggleFavorite, RequireAuth(identity))
	e.GET("/api/users/me/favorites", handler.listFavorites, RequireAuth(identity))
}

func (h *FavoriteHandler) toggleFavorite(c echo.Context) error {
	listingID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	favorited, err := h.favorites.Toggle(c.Request().Context(), CurrentCaller(c), listingID)
	if err != nil {
		return respondError(c, err, "could not update favorites")
	}

	message := "Property removed from favorites"
	if favorited {
		message = "Property saved to favorites"
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"property_id": listingID,
		"is_favorite": favorited,
		"message":     message,
	})
}

func (h *FavoriteHandler) listFavorites(c echo.Context) error {
	views, err := h.listings.ListFavorites(c.Request().Context(), CurrentCaller(c))
	if err != nil {
		return respondError(c, err, "unable to load favorites")
	}
	return c.JSON(http.StatusOK, listingsEnvelope(views))
}
