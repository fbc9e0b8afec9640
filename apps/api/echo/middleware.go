package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func adminMiddleware() echo.MiddlewareFunc { return permMiddleware(isAdmin) }

// permMiddleware lets the request through if allowed returns true for the context claims.
func permMiddleware(allowed func(Claims) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if allowed(claims) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func isAdmin(c Claims) bool { return c.IsAdmin }

func canWriteGrades(c Claims) bool { return c.IsAdmin || c.IsTeacher }

func canManageMoney(c Claims) bool { return c.IsAdmin || c.IsAccountant }

// paramID returns the integer path parameter `name`; a malformed ID is not found.
func paramID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
