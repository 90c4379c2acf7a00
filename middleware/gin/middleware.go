package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/middleware"
)

// ValidateJSON decodes the incoming JSON using schema s, stores Decoded[T]
// in the request context, and on mapping failure returns 400 with the Issues
// payload. opts typically carry moderu.MaxBytes.
func ValidateJSON[T any](s moderu.Schema[T], opts ...moderu.SourceOpt) gin.HandlerFunc {
	return func(c *gin.Context) {
		dm, err := moderu.DecodeFromWithMeta(c.Request.Context(), s, moderu.JSONReader(c.Request.Body, opts...))
		if err != nil {
			if iss, ok := moderu.AsIssues(err); ok {
				c.JSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
				c.Abort()
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		// store decoded in request context
		c.Request = c.Request.WithContext(middleware.ContextWithDecoded(c.Request.Context(), dm))
		c.Next()
	}
}

// GetDecoded fetches Decoded[T] from gin.Context.
func GetDecoded[T any](c *gin.Context) (moderu.Decoded[T], bool) {
	return middleware.DecodedFromContext[T](c.Request.Context())
}
