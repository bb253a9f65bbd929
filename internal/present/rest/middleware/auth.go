package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/folio-sh/folio/internal/domain"
	"github.com/folio-sh/folio/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	session *service.SessionService
}

func NewAuthMiddleware(session *service.SessionService) *AuthMiddleware {
	return &AuthMiddleware{
		session: session,
	}
}

// RequireSession gates admin routes. Browsers are redirected to the login
// entry with the original path preserved; API callers get 401. The login
// path itself must never sit behind this middleware.
func (s *AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.RequireSession")
		defer span.End()

		cookie, err := c.Cookie(domain.SessionCookieName)
		if err != nil || cookie.Value == "" {
			span.RecordError(errors.New("missing session cookie"))
			return s.reject(c)
		}

		result, err := s.session.Verify(ctx, cookie.Value)
		if err != nil {
			span.RecordError(errors.Wrap(err, "session verification failed"))
			return s.reject(c)
		}

		ctx = context.WithValue(ctx, domain.RequesterEmailCtxKey, result.Email)
		span.SetAttributes(attribute.String("RequesterEmail", result.Email))
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *AuthMiddleware) reject(c echo.Context) error {
	accept := c.Request().Header.Get("Accept")
	if strings.Contains(accept, "text/html") {
		target := domain.LoginPath + "?redirect=" + url.QueryEscape(c.Request().URL.RequestURI())
		return c.Redirect(http.StatusFound, target)
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
}
