// Package emails stores per-owner email templates and sends rendered mail
// through a transactional provider.
package emails

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/learnhub/backend/internal/apperr"
	"github.com/learnhub/backend/internal/logging"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repositories"
)

// ErrNotOwner indicates a template that belongs to a different owner.
var ErrNotOwner = errors.New("template belongs to another owner")

// TemplateStore persists templates.
type TemplateStore interface {
	Create(ctx context.Context, tmpl models.EmailTemplate) (models.EmailTemplate, error)
	Get(ctx context.Context, id string) (models.EmailTemplate, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.EmailTemplate, error)
	HasAny(ctx context.Context, ownerID string) (bool, error)
	Update(ctx context.Context, tmpl models.EmailTemplate) (models.EmailTemplate, error)
}

// Config carries the sender identity and site URL injected into every message.
type Config struct {
	FromAddress string
	FromName    string
	SiteURL     string
}

// Service manages templates and sends mail.
type Service struct {
	store  TemplateStore
	mailer Mailer
	cfg    Config
}

// NewService constructs a Service.
func NewService(store TemplateStore, mailer Mailer, cfg Config) *Service {
	return &Service{store: store, mailer: mailer, cfg: cfg}
}

// EnsureDefaults seeds the starter templates for ownerID when the owner has none.
// Calling it again after seeding does nothing.
func (s *Service) EnsureDefaults(ctx context.Context, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return apperr.Invalid("owner", "owner is required")
	}

	has, err := s.store.HasAny(ctx, ownerID)
	if err != nil {
		return apperr.Provider("database", "check templates", err)
	}
	if has {
		return nil
	}

	for _, tmpl := range DefaultTemplates() {
		tmpl.OwnerID = ownerID
		if _, err := s.store.Create(ctx, tmpl); err != nil {
			return apperr.Provider("database", "insert default template", err)
		}
	}

	logging.FromContext(ctx).Info("seeded default email templates", slog.String("owner_id", ownerID))
	return nil
}

// Get returns one of the owner's templates.
func (s *Service) Get(ctx context.Context, ownerID, id string) (models.EmailTemplate, error) {
	return s.owned(ctx, ownerID, id)
}

// List returns the owner's templates, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.EmailTemplate, error) {
	templates, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Provider("database", "list templates", err)
	}
	return templates, nil
}

// Save inserts tmpl when it has no ID and updates it by ID otherwise. New
// templates default to the custom type.
func (s *Service) Save(ctx context.Context, ownerID string, tmpl models.EmailTemplate) (models.EmailTemplate, error) {
	tmpl.Name = strings.TrimSpace(tmpl.Name)
	if tmpl.Name == "" {
		return models.EmailTemplate{}, apperr.Invalid("name", "name is required")
	}

	if strings.TrimSpace(tmpl.ID) == "" {
		if tmpl.Type == "" {
			tmpl.Type = models.TemplateCustom
		}
		if !tmpl.Type.Valid() {
			return models.EmailTemplate{}, apperr.Invalid("templateType", fmt.Sprintf("unknown template type %q", tmpl.Type))
		}
		tmpl.OwnerID = ownerID
		created, err := s.store.Create(ctx, tmpl)
		if err != nil {
			return models.EmailTemplate{}, apperr.Provider("database", "insert template", err)
		}
		return created, nil
	}

	existing, err := s.owned(ctx, ownerID, tmpl.ID)
	if err != nil {
		return models.EmailTemplate{}, err
	}
	if tmpl.Type == "" {
		tmpl.Type = existing.Type
	}
	if !tmpl.Type.Valid() {
		return models.EmailTemplate{}, apperr.Invalid("templateType", fmt.Sprintf("unknown template type %q", tmpl.Type))
	}

	tmpl.OwnerID = existing.OwnerID
	updated, err := s.store.Update(ctx, tmpl)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.EmailTemplate{}, err
		}
		return models.EmailTemplate{}, apperr.Provider("database", "update template", err)
	}
	return updated, nil
}

// Send renders tmpl with subs and hands it to the mailer. Substituted values are
// HTML-escaped in the body and inserted as-is in the subject. site_url defaults
// to the configured site.
func (s *Service) Send(ctx context.Context, tmpl models.EmailTemplate, to string, subs Substitutions) (Receipt, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return Receipt{}, apperr.Invalid("to", "recipient is required")
	}
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return Receipt{}, apperr.Invalid("to", "recipient is not a valid email address")
	}
	if strings.TrimSpace(tmpl.Subject) == "" {
		return Receipt{}, apperr.Invalid("subject", "subject is required")
	}

	subs = subs.with(Substitutions{KeySiteURL: s.cfg.SiteURL, KeyUserEmail: addr.Address})

	msg := Message{
		From:    Address{Name: s.cfg.FromName, Address: s.cfg.FromAddress},
		To:      []string{addr.Address},
		Subject: Render(tmpl.Subject, subs, false),
		HTML:    Render(tmpl.HTMLContent, subs, true),
	}

	receipt, err := s.mailer.Send(ctx, msg)
	if err != nil {
		logging.FromContext(ctx).Error("send email",
			slog.String("provider", s.mailer.Name()),
			slog.String("template_id", tmpl.ID),
			slog.Any("error", err),
		)
		return Receipt{}, apperr.Provider(s.mailer.Name(), "send", err)
	}
	return receipt, nil
}

// SendTemplate loads one of the owner's active templates and sends it.
func (s *Service) SendTemplate(ctx context.Context, ownerID, id, to string, subs Substitutions) (Receipt, error) {
	tmpl, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return Receipt{}, err
	}
	if !tmpl.IsActive {
		return Receipt{}, apperr.Invalid("template", "template is inactive")
	}
	return s.Send(ctx, tmpl, to, subs)
}

func (s *Service) owned(ctx context.Context, ownerID, id string) (models.EmailTemplate, error) {
	tmpl, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.EmailTemplate{}, err
		}
		return models.EmailTemplate{}, apperr.Provider("database", "get template", err)
	}
	if tmpl.OwnerID != ownerID {
		return models.EmailTemplate{}, ErrNotOwner
	}
	return tmpl, nil
}
