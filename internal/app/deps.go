package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/learnhub/backend/internal/auth"
	"github.com/learnhub/backend/internal/billing"
	"github.com/learnhub/backend/internal/catalog"
	"github.com/learnhub/backend/internal/config"
	"github.com/learnhub/backend/internal/db"
	"github.com/learnhub/backend/internal/emails"
	"github.com/learnhub/backend/internal/handlers"
	"github.com/learnhub/backend/internal/logging"
	"github.com/learnhub/backend/internal/metrics"
	"github.com/learnhub/backend/internal/middleware"
	"github.com/learnhub/backend/internal/repositories"
	"github.com/learnhub/backend/internal/storage"
	"github.com/learnhub/backend/internal/videos"
)

// container is everything serve needs beyond the routes themselves.
type container struct {
	deps     handlers.Dependencies
	verifier auth.Verifier
	cleanup  func(context.Context) error
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, m *metrics.Metrics) (container, error) {
	manager, err := auth.NewManager(auth.Options{
		Secret:     cfg.Auth.JWTSecret,
		Issuer:     cfg.Auth.Issuer,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}, repositories.NewPostgresSessionStore(pool))
	if err != nil {
		return container{}, err
	}

	cleanup := func(context.Context) error { return nil }
	var verifier auth.Verifier = manager
	if cfg.Auth.JWKSURL != "" {
		jwksCtx, cancel := context.WithCancel(ctx)
		external, err := auth.NewJWKSVerifier(jwksCtx, cfg.Auth.JWKSURL, cfg.Auth.JWKSIssuer)
		if err != nil {
			cancel()
			return container{}, fmt.Errorf("configure jwks verifier: %w", err)
		}
		verifier = auth.ChainVerifier{manager, external}
		cleanup = func(context.Context) error {
			cancel()
			return nil
		}
	}

	objects, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		cleanup(ctx)
		return container{}, err
	}
	media := instrumentedStorage{next: objects, metrics: m}

	videoRepo := repositories.NewPostgresVideoRepository(pool)
	uploader := videos.NewUploader(media, videoRepo, videos.UploaderConfig{
		KeyPrefix:            cfg.ObjectStore.KeyPrefix,
		PlaceholderThumbnail: cfg.ObjectStore.PlaceholderThumbnail,
	})

	mailer, ready := newMailer(cfg.Email)
	emailService := emails.NewService(
		repositories.NewPostgresTemplateRepository(pool),
		instrumentedMailer{next: mailer, metrics: m},
		emails.Config{FromAddress: cfg.Email.FromAddress, FromName: cfg.Email.FromName, SiteURL: cfg.SiteURL},
	)

	checkout := billing.NewCheckout(
		instrumentedGateway{next: billing.NewStripeGateway(cfg.Billing.StripeSecretKey), metrics: m},
		billing.CheckoutConfig{
			SiteURL:     cfg.SiteURL,
			Currency:    cfg.Billing.Currency,
			SuccessPath: cfg.Billing.SuccessPath,
			CancelPath:  cfg.Billing.CancelPath,
		},
	)

	manager.OnIdentityChange(identitySubscriber(m, emailService))

	limiter := middleware.NewIPRateLimiter(middleware.RateLimitOptions{
		Requests: cfg.RateLimit.Requests,
		Window:   cfg.RateLimit.Window,
		Burst:    cfg.RateLimit.Burst,
		OnReject: func(key string) {
			scope, _, _ := strings.Cut(key, ":")
			m.RateLimitRejections.WithLabelValues(scope).Inc()
		},
	})

	deps := handlers.Dependencies{
		Users:          repositories.NewPostgresUserRepository(pool),
		Sessions:       manager,
		Catalog:        catalog.NewRenderer(videoRepo),
		Uploads:        uploader,
		Videos:         videos.NewManager(videoRepo, media),
		Emails:         emailService,
		EmailReady:     ready,
		Checkout:       checkout,
		Limiter:        limiter,
		Metrics:        m.Handler(),
		HealthCheck:    func(ctx context.Context) error { return db.Ping(ctx, pool) },
		MaxUploadBytes: cfg.ObjectStore.MaxUploadBytes,
	}

	return container{deps: deps, verifier: verifier, cleanup: cleanup}, nil
}

// newMailer picks the configured provider and reports whether it has credentials.
func newMailer(cfg config.EmailConfig) (emails.Mailer, bool) {
	if cfg.Provider == "smtp" {
		return emails.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword), cfg.SMTPHost != ""
	}
	return emails.NewSendGridMailer(cfg.APIKey), cfg.APIKey != ""
}

type templateSeeder interface {
	EnsureDefaults(ctx context.Context, ownerID string) error
}

// identitySubscriber counts identity events and seeds starter templates for new accounts.
func identitySubscriber(m *metrics.Metrics, seeder templateSeeder) auth.Handler {
	return func(ctx context.Context, event auth.Event) {
		m.IdentityEvents.WithLabelValues(string(event.Kind)).Inc()

		logger := logging.FromContext(ctx).With(
			slog.String("event", string(event.Kind)),
			slog.String("user_id", event.Identity.ID),
		)
		logger.Info("identity changed")

		if event.Kind != auth.EventSignedUp {
			return
		}
		if err := seeder.EnsureDefaults(ctx, event.Identity.ID); err != nil {
			logger.Warn("seed default email templates", slog.Any("error", err))
		}
	}
}
