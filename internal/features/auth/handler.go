package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/apperror"
)

// Handler handles HTTP requests for authentication. Handlers are thin:
// they bind the request, call the service, and shape the JSON response.
// No business logic lives here.
type Handler struct {
	service Service
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// LoginPIN processes a family PIN login (POST /auth/login).
func (h *Handler) LoginPIN(c echo.Context) error {
	var req PINLoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	token, session, err := h.service.LoginWithPIN(c.Request().Context(), req.PIN)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, PINLoginResponse{
		Token:    token,
		Family:   session.Name,
		FamilyID: session.EntityID,
	})
}

// LoginGoogle processes a director login (POST /auth/google).
func (h *Handler) LoginGoogle(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	token, session, err := h.service.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GoogleLoginResponse{
		Token:         token,
		SchoolID:      session.EntityID,
		SchoolSlug:    session.Slug,
		DirectorEmail: session.Email,
	})
}

// Logout revokes the caller's session (POST /auth/logout). Requires a
// valid bearer token; revoking twice is harmless.
func (h *Handler) Logout(c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		return apperror.NewUnauthorized("authentication required")
	}

	if err := h.service.RevokeToken(c.Request().Context(), token); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
