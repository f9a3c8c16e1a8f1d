package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/learnhub/backend/internal/models"
)

// JWKSVerifier validates tokens minted by an external identity provider that
// publishes its signing keys as a JWK Set.
type JWKSVerifier struct {
	issuer  string
	keyfunc jwt.Keyfunc
}

// NewJWKSVerifier fetches the key set at jwksURL and keeps it refreshed until ctx is cancelled.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer string) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("auth: jwks url is required")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("fetch JWKS from %s: %w", jwksURL, err)
	}

	return &JWKSVerifier{issuer: issuer, keyfunc: jwks.Keyfunc}, nil
}

// Verify parses token against the remote key set.
func (v *JWKSVerifier) Verify(_ context.Context, token string) (models.Identity, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.Parse(token, v.keyfunc, opts...)
	if err != nil || !parsed.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return models.Identity{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return models.Identity{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return models.Identity{ID: sub, Email: email}, nil
}

// ChainVerifier tries each verifier in order and returns the first identity that verifies.
type ChainVerifier []Verifier

// Verify implements Verifier.
func (c ChainVerifier) Verify(ctx context.Context, token string) (models.Identity, error) {
	for _, verifier := range c {
		if verifier == nil {
			continue
		}
		identity, err := verifier.Verify(ctx, token)
		if err == nil {
			return identity, nil
		}
	}
	return models.Identity{}, ErrInvalidToken
}

var (
	_ Verifier = (*JWKSVerifier)(nil)
	_ Verifier = ChainVerifier(nil)
)
