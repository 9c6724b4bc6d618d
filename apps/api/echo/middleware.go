package echoapi

import (
	"github.com/labstack/echo/v4"
)

// roleMiddleware guards a dashboard route group: only sessions carrying
// the given role may pass.
func roleMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.Role == role {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
