package handlers

import (
	"context"

	"github.com/learnhub/backend/internal/billing"
	"github.com/learnhub/backend/internal/catalog"
	"github.com/learnhub/backend/internal/emails"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/videos"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// SessionManager issues, rotates and revokes tokens for authenticated users.
type SessionManager interface {
	SignUp(ctx context.Context, identity models.Identity) (models.SessionTokens, error)
	SignIn(ctx context.Context, identity models.Identity) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	SignOut(ctx context.Context, refreshToken string) error
}

// CatalogRenderer serves the public catalogue with entitlement decisions applied.
type CatalogRenderer interface {
	List(ctx context.Context, viewer *models.Identity) ([]catalog.Entry, error)
	Watch(ctx context.Context, id string, viewer *models.Identity) (catalog.Watch, error)
}

// VideoUploader stores a media file and publishes its catalogue record.
type VideoUploader interface {
	Upload(ctx context.Context, req videos.UploadRequest, ownerID string, progress videos.Progress) (models.Video, error)
}

// VideoManager edits and removes an owner's videos.
type VideoManager interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	Get(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, id string, patch models.VideoPatch) (models.Video, error)
	Delete(ctx context.Context, id, locator string) error
}

// EmailService manages templates and sends mail.
type EmailService interface {
	EnsureDefaults(ctx context.Context, ownerID string) error
	Get(ctx context.Context, ownerID, id string) (models.EmailTemplate, error)
	List(ctx context.Context, ownerID string) ([]models.EmailTemplate, error)
	Save(ctx context.Context, ownerID string, tmpl models.EmailTemplate) (models.EmailTemplate, error)
	Send(ctx context.Context, tmpl models.EmailTemplate, to string, subs emails.Substitutions) (emails.Receipt, error)
	SendTemplate(ctx context.Context, ownerID, id, to string, subs emails.Substitutions) (emails.Receipt, error)
}

// CheckoutService opens hosted checkout sessions.
type CheckoutService interface {
	CreateSession(ctx context.Context, planID string) (billing.Session, error)
}
