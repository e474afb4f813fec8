package auth

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/apperror"
)

// contextKeySession is the Echo context key holding the validated session.
// Other features read it via GetSession.
const contextKeySession = "auth_session"

// RequireSession returns middleware that validates the Authorization bearer
// token and binds the resolved session into the request context. Missing,
// malformed, invalid, or expired tokens all produce the same generic 401.
func RequireSession(service Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return apperror.NewUnauthorized("authentication required")
			}

			session, err := service.ValidateToken(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(contextKeySession, session)
			return next(c)
		}
	}
}

// RequireSchoolMatch returns middleware that verifies the :id path param
// matches the session's bound school. A valid token for one school must
// never read or write another school's content.
func RequireSchoolMatch() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := GetSession(c)
			if session == nil || session.Kind != KindDirector {
				return apperror.NewUnauthorized("authentication required")
			}

			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				return apperror.NewBadRequest("invalid school id")
			}
			if id != session.EntityID {
				return apperror.NewForbidden("session is not authorized for this school")
			}

			return next(c)
		}
	}
}

// RequireKind returns middleware that restricts a route to sessions of the
// given kind (family routes vs director routes).
func RequireKind(kind SessionKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := GetSession(c)
			if session == nil || session.Kind != kind {
				return apperror.NewForbidden("session is not authorized for this resource")
			}
			return next(c)
		}
	}
}

// RequireAdmin returns middleware that restricts a route to sessions
// carrying the admin claim. This is an explicit claim check on the
// authenticated principal, not an ambient capability lookup.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := GetSession(c)
			if session == nil {
				return apperror.NewUnauthorized("authentication required")
			}
			if !session.IsAdmin {
				return apperror.NewForbidden("administrator access required")
			}
			return next(c)
		}
	}
}

// GetSession retrieves the authenticated session from the Echo context.
// Returns nil if the request is not authenticated (middleware not applied).
func GetSession(c echo.Context) *Session {
	session, ok := c.Get(contextKeySession).(*Session)
	if !ok {
		return nil
	}
	return session
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns "" for missing or malformed headers.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		// No "Bearer " prefix found.
		return ""
	}
	return strings.TrimSpace(token)
}
