package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/middleware"
)

// ValidateJSON decodes request JSON via schema s, stores Decoded[T] in the
// request context on success, or returns 400 with the Issues payload when
// mapping fails. opts typically carry moderu.MaxBytes.
func ValidateJSON[T any](s moderu.Schema[T], opts ...moderu.SourceOpt) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			dm, err := moderu.DecodeFromWithMeta(c.Request().Context(), s, moderu.JSONReader(c.Request().Body, opts...))
			if err != nil {
				if iss, ok := moderu.AsIssues(err); ok {
					return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
				}
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			ctx := middleware.ContextWithDecoded(c.Request().Context(), dm)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetDecoded fetches Decoded[T] from echo.Context.
func GetDecoded[T any](c echo.Context) (moderu.Decoded[T], bool) {
	return middleware.DecodedFromContext[T](c.Request().Context())
}
