package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const clientTokenIssuer = "edubridge"

// ClientTokens signs and verifies the client cookie. The token is an HS256
// JWT whose subject is the client ID.
type ClientTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewClientTokens creates a signer with the given secret and lifetime
func NewClientTokens(secret string, ttl time.Duration) *ClientTokens {
	return &ClientTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for clientID
func (c *ClientTokens) Issue(clientID uuid.UUID) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Issuer:    clientTokenIssuer,
		Subject:   clientID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign client token: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns the client ID it carries
func (c *ClientTokens) Parse(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(clientTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid client token: %w", err)
	}

	clientID, err := uuid.Parse(claims.Subject)
	if err != nil || clientID == uuid.Nil {
		return uuid.Nil, errors.New("invalid client token: bad subject")
	}
	return clientID, nil
}
