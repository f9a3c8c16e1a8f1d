package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/learnhub/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the provided refresh token does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired and cannot be used.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrInvalidToken indicates an access token failed signature, issuer or expiry checks.
	ErrInvalidToken = errors.New("invalid access token")
)

// SessionStore persists issued refresh tokens so they can survive process restarts.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Find(ctx context.Context, refreshToken string) (Session, error)
	Delete(ctx context.Context, refreshToken string) error
}

// Session represents a refresh token issued to a user.
type Session struct {
	RefreshToken string
	UserID       string
	Email        string
	ExpiresAt    time.Time
}

// Verifier resolves a bearer access token to the viewer it was issued for.
type Verifier interface {
	Verify(ctx context.Context, token string) (models.Identity, error)
}

// Options configures token issuance.
type Options struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Manager issues signed access tokens and rotating refresh tokens, and notifies
// subscribers whenever a viewer's session state changes.
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	store  SessionStore
	events *Events
	now    func() time.Time
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewManager constructs a Manager backed by store.
func NewManager(opts Options, store SessionStore) (*Manager, error) {
	if store == nil {
		return nil, errors.New("auth: session store must not be nil")
	}
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	if opts.AccessTTL <= 0 || opts.RefreshTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}
	return &Manager{
		secret:     []byte(opts.Secret),
		issuer:     opts.Issuer,
		accessTTL:  opts.AccessTTL,
		refreshTTL: opts.RefreshTTL,
		store:      store,
		events:     NewEvents(),
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// OnIdentityChange registers handler for every session change and returns its unsubscribe func.
func (m *Manager) OnIdentityChange(handler Handler) (unsubscribe func()) {
	return m.events.Subscribe(handler)
}

// SignUp issues the first session for a newly registered identity.
func (m *Manager) SignUp(ctx context.Context, identity models.Identity) (models.SessionTokens, error) {
	return m.start(ctx, identity, EventSignedUp)
}

// SignIn issues a session for an existing identity.
func (m *Manager) SignIn(ctx context.Context, identity models.Identity) (models.SessionTokens, error) {
	return m.start(ctx, identity, EventSignedIn)
}

func (m *Manager) start(ctx context.Context, identity models.Identity, kind EventKind) (models.SessionTokens, error) {
	tokens, err := m.issue(ctx, identity)
	if err != nil {
		return models.SessionTokens{}, err
	}
	m.events.Publish(ctx, Event{Kind: kind, Identity: identity, At: m.now()})
	return tokens, nil
}

func (m *Manager) issue(ctx context.Context, identity models.Identity) (models.SessionTokens, error) {
	if identity.ID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.now()
	claims := accessClaims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			ID:        uuid.NewString(),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}

	tokens := models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  now.Add(m.accessTTL),
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(m.refreshTTL),
	}

	if err := m.store.Save(ctx, Session{
		RefreshToken: refreshToken,
		UserID:       identity.ID,
		Email:        identity.Email,
		ExpiresAt:    tokens.RefreshExpiresAt,
	}); err != nil {
		return models.SessionTokens{}, err
	}

	return tokens, nil
}

// Refresh exchanges a refresh token for a new session token pair.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, ErrSessionNotFound
	}

	session, err := m.store.Find(ctx, refreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if m.now().After(session.ExpiresAt) {
		_ = m.store.Delete(ctx, refreshToken)
		return models.SessionTokens{}, ErrRefreshTokenExpired
	}

	if err := m.store.Delete(ctx, refreshToken); err != nil {
		return models.SessionTokens{}, err
	}

	identity := models.Identity{ID: session.UserID, Email: session.Email}
	tokens, err := m.issue(ctx, identity)
	if err != nil {
		return models.SessionTokens{}, err
	}
	m.events.Publish(ctx, Event{Kind: EventRefreshed, Identity: identity, At: m.now()})
	return tokens, nil
}

// SignOut revokes the refresh token. Access tokens stay valid until they expire.
func (m *Manager) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrSessionNotFound
	}

	session, err := m.store.Find(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, refreshToken); err != nil {
		return err
	}

	m.events.Publish(ctx, Event{
		Kind:     EventSignedOut,
		Identity: models.Identity{ID: session.UserID, Email: session.Email},
		At:       m.now(),
	})
	return nil
}

// Verify validates an access token issued by this Manager.
func (m *Manager) Verify(_ context.Context, token string) (models.Identity, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return models.Identity{}, ErrInvalidToken
	}

	return models.Identity{ID: claims.Subject, Email: claims.Email}, nil
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

var _ Verifier = (*Manager)(nil)
