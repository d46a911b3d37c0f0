package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = errors.New("invalid username or password")

type account struct {
	hash []byte
	role string
}

// Authenticator checks back-office credentials and issues tokens
type Authenticator struct {
	accounts    map[string]account
	tokens      *JWTService
	revocations *Revocations
}

// NewAuthenticator builds an authenticator from configured accounts
func NewAuthenticator(admins []config.AdminAccount, tokens *JWTService, revocations *Revocations) *Authenticator {
	accounts := make(map[string]account, len(admins))
	for _, a := range admins {
		accounts[strings.ToLower(a.Username)] = account{hash: []byte(a.PasswordHash), role: a.Role}
	}
	return &Authenticator{accounts: accounts, tokens: tokens, revocations: revocations}
}

// Login verifies the password and returns a fresh token
func (a *Authenticator) Login(username, password string) (*Token, string, error) {
	name := strings.ToLower(strings.TrimSpace(username))
	acc, ok := a.accounts[name]
	if !ok {
		// compare anyway so unknown users take as long as wrong passwords
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := a.tokens.Generate(name, acc.role)
	if err != nil {
		return nil, "", err
	}
	return token, acc.role, nil
}

// Authenticate validates a bearer token and checks it was not revoked
func (a *Authenticator) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if _, ok := a.accounts[claims.Username]; !ok {
		return nil, ErrInvalidClaims
	}
	revoked, err := a.revocations.IsRevoked(ctx, claims)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the token carrying claims
func (a *Authenticator) Logout(ctx context.Context, claims *Claims) error {
	return a.revocations.Revoke(ctx, claims)
}

// HashPassword produces the bcrypt hash stored in configuration
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unused"), bcrypt.MinCost)
