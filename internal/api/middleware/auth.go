package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

// Context keys; kept in sync with handler.CtxUserID and friends.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxEmail  = "email"
)

// UserLookup resolves a token subject to a current, active user.
type UserLookup interface {
	Authenticate(ctx context.Context, userID string) (*domain.User, error)
}

// Auth validates the bearer JWT and injects the caller into the context.
// With a non-nil lookup the subject must still exist and be active, and the
// role comes from the stored user rather than the token.
func Auth(jwtSecret string, lookup UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sub, _ := claims.GetSubject()
			if sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
			}
			role, _ := claims["role"].(string)
			email, _ := claims["email"].(string)

			if lookup != nil {
				user, err := lookup.Authenticate(c.Request().Context(), sub)
				switch {
				case errors.Is(err, domain.ErrNotFound):
					return echo.NewHTTPError(http.StatusUnauthorized, "user no longer exists")
				case errors.Is(err, domain.ErrUserInactive):
					return echo.NewHTTPError(http.StatusUnauthorized, "account is deactivated")
				case err != nil:
					return err
				}
				role, email = user.Role, user.Email
			}

			c.Set(ctxUserID, sub)
			c.Set(ctxRole, role)
			c.Set(ctxEmail, email)

			return next(c)
		}
	}
}
