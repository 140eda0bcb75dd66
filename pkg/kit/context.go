package kit

import (
	"context"

	"github.com/google/uuid"
)

// Transports recorded in the request context.
const (
	TransportHTTP = "http"
	TransportMCP  = "mcp"
)

type contextKey string

const (
	transportKey contextKey = "agrocota_transport"
	requestIDKey contextKey = "agrocota_request_id"
)

// WithTransport tags ctx with the transport that carried the request.
func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, transportKey, t)
}

// GetTransport returns the transport tag, TransportHTTP when unset.
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(transportKey).(string); ok && v != "" {
		return v
	}
	return TransportHTTP
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// NewRequestID returns a fresh random request id.
func NewRequestID() string {
	return uuid.NewString()
}
