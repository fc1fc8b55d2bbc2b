package middleware

import (
	"context"

	"github.com/edubridge/platform/services/identity"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// ClientIDKey is the context key for the browser client ID
	ClientIDKey contextKey = "client_id"

	// ProviderKey is the context key for the request's auth provider
	ProviderKey contextKey = "auth_provider"
)

// GetRequestIDFromContext retrieves the request ID from context, falling back
// to the one set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return chimiddleware.GetReqID(ctx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetClientIDFromContext retrieves the client ID from context
func GetClientIDFromContext(ctx context.Context) uuid.UUID {
	if val := ctx.Value(ClientIDKey); val != nil {
		if clientID, ok := val.(uuid.UUID); ok {
			return clientID
		}
	}
	return uuid.Nil
}

// WithClientID adds a client ID to the context
func WithClientID(ctx context.Context, clientID uuid.UUID) context.Context {
	return context.WithValue(ctx, ClientIDKey, clientID)
}

// WithProvider adds an auth provider to the context
func WithProvider(ctx context.Context, p *identity.Provider) context.Context {
	return context.WithValue(ctx, ProviderKey, p)
}

// ProviderFromContext retrieves the auth provider from context
func ProviderFromContext(ctx context.Context) (*identity.Provider, bool) {
	p, ok := ctx.Value(ProviderKey).(*identity.Provider)
	return p, ok && p != nil
}

// MustProvider retrieves the auth provider and panics when none was
// installed. A missing provider means the route was wired without
// ClientContext.
func MustProvider(ctx context.Context) *identity.Provider {
	p, ok := ProviderFromContext(ctx)
	if !ok {
		panic("middleware: auth provider missing from request context; wrap the route with ClientContext")
	}
	return p
}
