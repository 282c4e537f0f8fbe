package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

// RBAC lets the request through only when the caller holds one of
// allowedRoles; otherwise it fails with domain.ErrRoleForbidden.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ctxRole).(string)
			if _, ok := allowed[role]; !ok {
				return domain.ErrRoleForbidden
			}
			return next(c)
		}
	}
}
