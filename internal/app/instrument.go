package app

import (
	"context"
	"io"
	"time"

	"github.com/learnhub/backend/internal/billing"
	"github.com/learnhub/backend/internal/emails"
	"github.com/learnhub/backend/internal/metrics"
	"github.com/learnhub/backend/internal/videos"
)

// The wrappers below record every external provider call without the domain
// packages knowing about Prometheus.

type instrumentedStorage struct {
	next    videos.Storage
	metrics *metrics.Metrics
}

func (s instrumentedStorage) Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) error {
	start := time.Now()
	err := s.next.Put(ctx, path, body, size, contentType)
	s.metrics.ObserveProvider("storage", "put", start, err)
	return err
}

func (s instrumentedStorage) PublicURL(path string) string {
	return s.next.PublicURL(path)
}

func (s instrumentedStorage) Remove(ctx context.Context, paths ...string) error {
	start := time.Now()
	err := s.next.Remove(ctx, paths...)
	s.metrics.ObserveProvider("storage", "remove", start, err)
	return err
}

type instrumentedMailer struct {
	next    emails.Mailer
	metrics *metrics.Metrics
}

func (m instrumentedMailer) Name() string { return m.next.Name() }

func (m instrumentedMailer) Send(ctx context.Context, msg emails.Message) (emails.Receipt, error) {
	start := time.Now()
	receipt, err := m.next.Send(ctx, msg)
	m.metrics.ObserveProvider(m.next.Name(), "send", start, err)
	return receipt, err
}

type instrumentedGateway struct {
	next    billing.Gateway
	metrics *metrics.Metrics
}

func (g instrumentedGateway) Name() string { return g.next.Name() }

func (g instrumentedGateway) CreateCheckoutSession(ctx context.Context, req billing.SessionRequest) (billing.Session, error) {
	start := time.Now()
	session, err := g.next.CreateCheckoutSession(ctx, req)
	g.metrics.ObserveProvider(g.next.Name(), "create checkout session", start, err)
	return session, err
}
