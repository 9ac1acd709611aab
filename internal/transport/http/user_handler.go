package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/service"
	"github.com/njprem/Joestate_APP_BackEnd/internal/util"
)

type UserHandler struct {
	users    *service.UserService
	listings *service.ListingService
}

type updateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Bio         *string `json:"bio"`
	Email       *string `json:"email"`
	OldPassword *string `json:"old_password"`
	NewPassword *string `json:"new_password"`
}

func RegisterUsers(e *echo.Echo, identity IdentityProvider, users *service.UserService, listings *service.ListingService) {
	handler := &UserHandler{users: users, listings: listings}

	me := e.Group("/api/users/me", RequireAuth(identity))
	me.GET("", handler.me)
	me.PUT("", handler.updateProfile)
	me.POST("/avatar", handler.uploadAvatar)
	me.GET("/properties", handler.myListings)

	e.GET("/api/users/:id", handler.publicProfile)
	e.GET("/api/users/:id/properties", handler.publicListings)
}

func (h *UserHandler) me(c echo.Context) error {
	user, err := h.users.GetProfile(c.Request().Context(), CurrentCaller(c))
	if err != nil {
		return respondError(c, err, "unable to load profile")
	}
	return c.JSON(http.StatusOK, util.Data("user", user))
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	user, err := h.users.UpdateProfile(c.Request().Context(), CurrentCaller(c), domain.UserProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
		Email:       req.Email,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return respondError(c, err, "unable to update profile")
	}
	return c.JSON(http.StatusOK, util.Data("user", user))
}

func (h *UserHandler) uploadAvatar(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("file is required"))
	}
	file, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read file"))
	}
	defer file.Close()

	user, err := h.users.UploadAvatar(c.Request().Context(), CurrentCaller(c), *uploadFromHeader(fh, file))
	if err != nil {
		return respondError(c, err, "unable to upload profile picture")
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"user":                user,
		"profile_picture_url": user.ProfilePictureURL,
	})
}

func (h *UserHandler) myListings(c echo.Context) error {
	views, err := h.listings.ListMine(c.Request().Context(), CurrentCaller(c))
	if err != nil {
		return respondError(c, err, "unable to load properties")
	}
	return c.JSON(http.StatusOK, listingsEnvelope(views))
}

func (h *UserHandler) publicProfile(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	profile, err := h.users.GetPublicProfile(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "unable to load profile")
	}
	return c.JSON(http.StatusOK, util.Data("user", profile))
}

func (h *UserHandler) publicListings(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	if _, err := h.users.GetPublicProfile(c.Request().Context(), id); err != nil {
		return respondError(c, err, "unable to load properties")
	}
	views, err := h.listings.ListPublicByOwner(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "unable to load properties")
	}
	return c.JSON(http.StatusOK, listingsEnvelope(views))
}
