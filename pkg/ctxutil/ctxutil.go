package ctxutil

import "context"

type ctxKey string

const (
	userKeyKey   ctxKey = "user_key"
	requestIDKey ctxKey = "request_id"
)

// WithUserKey stores the caller-supplied learner key in the context. There is
// no authentication layer in this repo (spec non-goal); the key arrives as
// an ordinary request field and is threaded through for logging only.
func WithUserKey(ctx context.Context, userKey string) context.Context {
	return context.WithValue(ctx, userKeyKey, userKey)
}

// UserKeyFromCtx extracts the learner key from the context.
// Returns an empty string if absent.
func UserKeyFromCtx(ctx context.Context) string {
	key, _ := ctx.Value(userKeyKey).(string)
	return key
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
