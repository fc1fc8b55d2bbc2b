package auth

import (
	"errors"
	"fmt"

	"github.com/edubridge/platform/services"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// Verifier checks a password against a directory account
type Verifier interface {
	Verify(account *Account, password string) bool
	// Hash prepares the stored credential for a newly registered account
	Hash(password string) ([]byte, error)
}

// NonEmptyVerifier accepts any non-empty password for a known account.
// It exists for the demo directory only and performs no real verification.
type NonEmptyVerifier struct{}

// Verify implements Verifier
func (NonEmptyVerifier) Verify(_ *Account, password string) bool {
	return password != ""
}

// Hash implements Verifier; nothing is stored
func (NonEmptyVerifier) Hash(string) ([]byte, error) {
	return nil, nil
}

// BcryptVerifier checks passwords against stored bcrypt hashes
type BcryptVerifier struct {
	Cost int
}

// NewBcryptVerifier creates a verifier using the given cost (bcrypt.DefaultCost when <= 0)
func NewBcryptVerifier(cost int) BcryptVerifier {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return BcryptVerifier{Cost: cost}
}

// Verify implements Verifier
func (v BcryptVerifier) Verify(account *Account, password string) bool {
	if account == nil || password == "" || len(account.PasswordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)) == nil
}

// Hash implements Verifier
func (v BcryptVerifier) Hash(password string) ([]byte, error) {
	cost := v.Cost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, services.ErrInvalidInput.WithDetail("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
