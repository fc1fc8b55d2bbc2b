package middleware

import (
	"net/http"

	"github.com/edubridge/platform/config"
	"github.com/edubridge/platform/repositories"
	"github.com/edubridge/platform/services/identity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProviderFactory builds an unmounted auth provider over a client's storage
type ProviderFactory interface {
	NewProvider(kv repositories.KeyValueStore) *identity.Provider
}

// ClientContext gives every request the auth provider of its browser client.
// The client is identified by a signed cookie; requests without a valid one
// become a new client and receive a fresh cookie.
type ClientContext struct {
	tokens  *ClientTokens
	store   repositories.KeyValueStore
	factory ProviderFactory
	cookie  config.SessionConfig
	logger  *zap.Logger
}

// NewClientContext creates the client context middleware
func NewClientContext(cfg config.SessionConfig, store repositories.KeyValueStore, factory ProviderFactory, logger *zap.Logger) *ClientContext {
	return &ClientContext{
		tokens:  NewClientTokens(cfg.CookieSecret, cfg.CookieTTL),
		store:   store,
		factory: factory,
		cookie:  cfg,
		logger:  logger,
	}
}

// ClientScope returns the key-value scope of a client
func ClientScope(clientID uuid.UUID) string {
	return "client:" + clientID.String()
}

// Handler mounts the client's provider and stores it in the request context
func (m *ClientContext) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		clientID, ok := m.clientID(r)
		if !ok {
			clientID = uuid.New()
			if err := m.setCookie(w, clientID); err != nil {
				m.logger.Error("failed to issue client cookie",
					zap.String("request_id", requestID),
					zap.Error(err))
			}
		}

		provider := m.factory.NewProvider(repositories.Scoped(m.store, ClientScope(clientID)))
		provider.Mount(ctx)

		ctx = WithClientID(ctx, clientID)
		ctx = WithProvider(ctx, provider)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *ClientContext) clientID(r *http.Request) (uuid.UUID, bool) {
	c, err := r.Cookie(m.cookie.CookieName)
	if err != nil || c.Value == "" {
		return uuid.Nil, false
	}

	clientID, err := m.tokens.Parse(c.Value)
	if err != nil {
		m.logger.Debug("rejecting client cookie",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		return uuid.Nil, false
	}
	return clientID, true
}

func (m *ClientContext) setCookie(w http.ResponseWriter, clientID uuid.UUID) error {
	token, err := m.tokens.Issue(clientID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cookie.CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
