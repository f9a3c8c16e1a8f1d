package auth

import (
	"context"

	"github.com/learnhub/backend/internal/models"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the authenticated viewer.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the viewer attached to ctx, or nil for an anonymous request.
func IdentityFromContext(ctx context.Context) *models.Identity {
	if ctx == nil {
		return nil
	}
	identity, ok := ctx.Value(identityKey{}).(models.Identity)
	if !ok || identity.ID == "" {
		return nil
	}
	return &identity
}
