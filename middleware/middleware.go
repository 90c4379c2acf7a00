package middleware

import (
	"context"
	"net/http"

	moderu "github.com/reoring/moderu"
)

// ctxKeyDecoded is a typed context key for storing Decoded[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a Decoded[T] to the context.
func ContextWithDecoded[T any](ctx context.Context, dm moderu.Decoded[T]) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, dm)
}

// DecodedFromContext retrieves a Decoded[T] from context.
func DecodedFromContext[T any](ctx context.Context) (moderu.Decoded[T], bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(moderu.Decoded[T])
	return v, ok
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []moderu.Issue) map[string]any {
	return map[string]any{"issues": issues}
}

// ValidateJSON decodes the request body via schema s, stores Decoded[T] in
// the request context, and on failure responds 400 with the Issues payload.
// opts typically carry moderu.MaxBytes for request-size capping.
func ValidateJSON[T any](s moderu.Schema[T], next http.Handler, opts ...moderu.SourceOpt) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dm, err := moderu.DecodeFromWithMeta(r.Context(), s, moderu.JSONReader(r.Body, opts...))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), dm)))
	})
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	var payload map[string]any
	if iss, ok := moderu.AsIssues(err); ok {
		payload = ErrorPayload(iss)
	} else {
		payload = map[string]any{"error": err.Error()}
	}
	data, merr := moderu.CurrentJSONDriver().EncodeRecord(payload)
	if merr != nil {
		return
	}
	_, _ = w.Write(data)
}
