// Package repositories holds the Postgres-backed stores for accounts, sessions,
// catalogue videos and email templates.
package repositories

import (
	"context"
	"errors"

	"github.com/learnhub/backend/internal/models"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write hits a unique constraint, such as a duplicate email.
	ErrConflict = errors.New("record conflict")
)

// UserRepository stores learner and admin accounts keyed by email.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// VideoRepository exposes data access for catalogue videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) (models.Video, error)
	Get(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context) ([]models.Video, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	Update(ctx context.Context, id string, patch models.VideoPatch) (models.Video, error)
	Delete(ctx context.Context, id string) error
}

// TemplateRepository exposes data access for email templates.
type TemplateRepository interface {
	Create(ctx context.Context, tmpl models.EmailTemplate) (models.EmailTemplate, error)
	Get(ctx context.Context, id string) (models.EmailTemplate, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.EmailTemplate, error)
	HasAny(ctx context.Context, ownerID string) (bool, error)
	Update(ctx context.Context, tmpl models.EmailTemplate) (models.EmailTemplate, error)
}
