package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/service"
	"github.com/njprem/Joestate_APP_BackEnd/internal/util"
)

const contextCallerKey = "joestate.caller"

// IdentityProvider turns a bearer token into the caller it identifies.
type IdentityProvider interface {
	Identify(ctx context.Context, token string) (*domain.Caller, error)
}

// OptionalAuth identifies the caller when an Authorization header is sent and
// lets anonymous requests through. A header that does not verify is rejected.
func OptionalAuth(identity IdentityProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)) == "" {
				return next(c)
			}
			caller, status, message := identify(c, identity)
			if status != 0 {
				return c.JSON(status, util.Error(message))
			}
			c.Set(contextCallerKey, caller)
			return next(c)
		}
	}
}

func RequireAuth(identity IdentityProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)) == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing authorization header"))
			}
			caller, status, message := identify(c, identity)
			if status != 0 {
				return c.JSON(status, util.Error(message))
			}
			if caller.IsAnonymous() {
				return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
			}
			c.Set(contextCallerKey, caller)
			return next(c)
		}
	}
}

func identify(c echo.Context, identity IdentityProvider) (*domain.Caller, int, string) {
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, http.StatusUnauthorized, "invalid authorization header"
	}
	caller, err := identity.Identify(c.Request().Context(), strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			return nil, http.StatusUnauthorized, "invalid or expired token"
		}
		return nil, http.StatusInternalServerError, "unable to verify token"
	}
	return caller, 0, ""
}

// CurrentCaller returns the identified caller, or nil for anonymous requests.
func CurrentCaller(c echo.Context) *domain.Caller {
	caller, _ := c.Get(contextCallerKey).(*domain.Caller)
	return caller
}

// respondError maps service errors onto status codes.
func respondError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		return c.JSON(http.StatusNotFound, util.Error("property not found"))
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, util.Error("user not found"))
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, util.Error(service.ErrEmailTaken.Error()))
	case errors.Is(err, service.ErrListingValidation), errors.Is(err, service.ErrUserValidation):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrInvalidCredential):
		return c.JSON(http.StatusUnauthorized, util.Error(service.ErrInvalidCredential.Error()))
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	case errors.Is(err, service.ErrStorageFailure):
		c.Logger().Errorf("%s: %v", fallback, err)
		return c.JSON(http.StatusBadGateway, util.Error(fallback))
	default:
		c.Logger().Errorf("%s: %v", fallback, err)
		return c.JSON(http.StatusInternalServerError, util.Error(fallback))
	}
}
