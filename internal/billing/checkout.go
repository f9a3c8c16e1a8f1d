package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/learnhub/backend/internal/apperr"
	"github.com/learnhub/backend/internal/logging"
)

// SessionRequest is everything the payment provider needs to open a session.
type SessionRequest struct {
	Plan       Plan
	Currency   string
	SuccessURL string
	CancelURL  string
}

// Session is a hosted checkout the buyer must be redirected to.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Gateway opens hosted checkout sessions at a payment provider.
type Gateway interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (Session, error)
}

// CheckoutConfig controls currency and the redirect targets.
type CheckoutConfig struct {
	SiteURL     string
	Currency    string
	SuccessPath string
	CancelPath  string
}

// Checkout turns plan ids into provider checkout sessions.
type Checkout struct {
	gateway Gateway
	cfg     CheckoutConfig
}

// NewCheckout constructs a Checkout.
func NewCheckout(gateway Gateway, cfg CheckoutConfig) *Checkout {
	cfg.SiteURL = strings.TrimSuffix(cfg.SiteURL, "/")
	if cfg.Currency == "" {
		cfg.Currency = "jpy"
	}
	return &Checkout{gateway: gateway, cfg: cfg}
}

var errMissingURL = errors.New("provider returned no checkout url")

// CreateSession opens a subscription checkout for planID. Unknown plans are
// rejected before the provider is contacted.
func (c *Checkout) CreateSession(ctx context.Context, planID string) (Session, error) {
	plan, ok := LookupPlan(strings.TrimSpace(planID))
	if !ok {
		return Session{}, apperr.Invalid("planId", fmt.Sprintf("unknown plan %q", planID))
	}

	session, err := c.gateway.CreateCheckoutSession(ctx, SessionRequest{
		Plan:       plan,
		Currency:   c.cfg.Currency,
		SuccessURL: c.cfg.SiteURL + c.cfg.SuccessPath,
		CancelURL:  c.cfg.SiteURL + c.cfg.CancelPath,
	})
	if err == nil && session.URL == "" {
		err = errMissingURL
	}
	if err != nil {
		logging.FromContext(ctx).Error("create checkout session",
			slog.String("provider", c.gateway.Name()),
			slog.String("plan_id", plan.ID),
			slog.Any("error", err),
		)
		return Session{}, apperr.Provider(c.gateway.Name(), "create checkout session", err)
	}

	return session, nil
}
