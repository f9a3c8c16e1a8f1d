package emails

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/learnhub/backend/internal/apperr"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repositories"
)

type templateStoreStub struct {
	templates map[string]models.EmailTemplate
	order     []string
	creates   int
	hasErr    error
}

func newTemplateStore() *templateStoreStub {
	return &templateStoreStub{templates: make(map[string]models.EmailTemplate)}
}

func (s *templateStoreStub) Create(_ context.Context, tmpl models.EmailTemplate) (models.EmailTemplate, error) {
	s.creates++
	tmpl.ID = fmt.Sprintf("tmpl-%d", s.creates)
	tmpl.CreatedAt = time.Now().UTC()
	tmpl.UpdatedAt = tmpl.CreatedAt
	s.templates[tmpl.ID] = tmpl
	s.order = append(s.order, tmpl.ID)
	return tmpl, nil
}

func (s *templateStoreStub) Get(_ context.Context, id string) (models.EmailTemplate, error) {
	tmpl, ok := s.templates[id]
	if !ok {
		return models.EmailTemplate{}, repositories.ErrNotFound
	}
	return tmpl, nil
}

func (s *templateStoreStub) ListByOwner(_ context.Context, ownerID string) ([]models.EmailTemplate, error) {
	var out []models.EmailTemplate
	for i := len(s.order) - 1; i >= 0; i-- {
		if tmpl := s.templates[s.order[i]]; tmpl.OwnerID == ownerID {
			out = append(out, tmpl)
		}
	}
	return out, nil
}

func (s *templateStoreStub) HasAny(_ context.Context, ownerID string) (bool, error) {
	if s.hasErr != nil {
		return false, s.hasErr
	}
	for _, tmpl := range s.templates {
		if tmpl.OwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *templateStoreStub) Update(_ context.Context, tmpl models.EmailTemplate) (models.EmailTemplate, error) {
	if _, ok := s.templates[tmpl.ID]; !ok {
		return models.EmailTemplate{}, repositories.ErrNotFound
	}
	s.templates[tmpl.ID] = tmpl
	return tmpl, nil
}

type mailerStub struct {
	sent []Message
	err  error
}

func (m *mailerStub) Name() string { return "stub" }

func (m *mailerStub) Send(_ context.Context, msg Message) (Receipt, error) {
	if m.err != nil {
		return Receipt{}, m.err
	}
	m.sent = append(m.sent, msg)
	return Receipt{ID: fmt.Sprintf("msg-%d", len(m.sent))}, nil
}

func newTestService(store *templateStoreStub, mailer *mailerStub) *Service {
	return NewService(store, mailer, Config{
		FromAddress: "onboarding@learnhub.dev",
		FromName:    "LearnHub",
		SiteURL:     "https://learnhub.example.com",
	})
}

func TestRender(t *testing.T) {
	subs := Substitutions{"user_name": "Alice"}

	got := Render("Hi {{user_name}}! Bye {{ user_name }}. {{unknown}}", subs, false)
	want := "Hi Alice! Bye Alice. {{unknown}}"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	escaped := Render("<p>{{user_name}}</p>", Substitutions{"user_name": `<script>alert("x")</script>`}, true)
	if strings.Contains(escaped, "<script>") {
		t.Fatalf("expected value to be escaped, got %q", escaped)
	}

	if got := Render("{{user_name}}", nil, true); got != "{{user_name}}" {
		t.Fatalf("expected pass-through without substitutions, got %q", got)
	}
}

func TestEnsureDefaultsIsIdempotent(t *testing.T) {
	store := newTemplateStore()
	service := newTestService(store, &mailerStub{})
	ctx := context.Background()

	if err := service.EnsureDefaults(ctx, "owner-1"); err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}
	if err := service.EnsureDefaults(ctx, "owner-1"); err != nil {
		t.Fatalf("ensure defaults again: %v", err)
	}

	templates, err := service.List(ctx, "owner-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected exactly two default templates, got %d", len(templates))
	}

	types := map[models.TemplateType]bool{}
	for _, tmpl := range templates {
		types[tmpl.Type] = true
		if !strings.Contains(tmpl.HTMLContent, "{{user_name}}") {
			t.Fatalf("default template %q lacks user_name placeholder", tmpl.Name)
		}
	}
	if !types[models.TemplateWelcome] || !types[models.TemplateUpgradePrompt] {
		t.Fatalf("unexpected default types: %v", types)
	}
}

func TestEnsureDefaultsSkipsOwnersWithTemplates(t *testing.T) {
	store := newTemplateStore()
	service := newTestService(store, &mailerStub{})
	ctx := context.Background()

	if _, err := service.Save(ctx, "owner-1", models.EmailTemplate{Name: "Mine", Subject: "s"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := service.EnsureDefaults(ctx, "owner-1"); err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}
	if store.creates != 1 {
		t.Fatalf("expected no defaults for owner with templates, got %d creates", store.creates)
	}
}

func TestEnsureDefaultsProviderFailure(t *testing.T) {
	store := newTemplateStore()
	store.hasErr = errors.New("db down")
	service := newTestService(store, &mailerStub{})

	if err := service.EnsureDefaults(context.Background(), "owner-1"); !errors.Is(err, apperr.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestSaveInsertAndUpdate(t *testing.T) {
	store := newTemplateStore()
	service := newTestService(store, &mailerStub{})
	ctx := context.Background()

	created, err := service.Save(ctx, "owner-1", models.EmailTemplate{Name: "  Promo ", Subject: "Hi", IsActive: true})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID == "" || created.Type != models.TemplateCustom || created.OwnerID != "owner-1" || created.Name != "Promo" {
		t.Fatalf("unexpected created template: %+v", created)
	}

	created.Subject = "Updated"
	created.Type = ""
	updated, err := service.Save(ctx, "owner-1", created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Subject != "Updated" || updated.Type != models.TemplateCustom {
		t.Fatalf("unexpected updated template: %+v", updated)
	}

	if _, err := service.Save(ctx, "owner-2", created); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	missing := created
	missing.ID = "tmpl-missing"
	if _, err := service.Save(ctx, "owner-1", missing); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveValidation(t *testing.T) {
	store := newTemplateStore()
	service := newTestService(store, &mailerStub{})

	if _, err := service.Save(context.Background(), "owner-1", models.EmailTemplate{Name: " "}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := service.Save(context.Background(), "owner-1", models.EmailTemplate{Name: "x", Type: "newsletter"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
	if store.creates != 0 {
		t.Fatal("invalid templates must not be stored")
	}
}

func TestSendSubstitutesAndEscapes(t *testing.T) {
	mailer := &mailerStub{}
	service := newTestService(newTemplateStore(), mailer)

	tmpl := models.EmailTemplate{
		Subject:     "{{user_name}}, welcome",
		HTMLContent: "<p>{{user_name}} / {{user_name}}</p><a href=\"{{site_url}}\">go</a> {{coupon}}",
	}

	receipt, err := service.Send(context.Background(), tmpl, "alice@example.com", Substitutions{KeyUserName: "Alice & Bob"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if receipt.ID != "msg-1" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	msg := mailer.sent[0]
	if msg.Subject != "Alice & Bob, welcome" {
		t.Fatalf("subject should carry raw value, got %q", msg.Subject)
	}
	wantBody := `<p>Alice &amp; Bob / Alice &amp; Bob</p><a href="https://learnhub.example.com">go</a> {{coupon}}`
	if msg.HTML != wantBody {
		t.Fatalf("expected body %q, got %q", wantBody, msg.HTML)
	}
	if len(msg.To) != 1 || msg.To[0] != "alice@example.com" || msg.From.Address != "onboarding@learnhub.dev" {
		t.Fatalf("unexpected envelope: %+v", msg)
	}
}

func TestSendValidation(t *testing.T) {
	mailer := &mailerStub{}
	service := newTestService(newTemplateStore(), mailer)
	ctx := context.Background()

	tests := []struct {
		name string
		to   string
		tmpl models.EmailTemplate
	}{
		{name: "missing recipient", to: "", tmpl: models.EmailTemplate{Subject: "s"}},
		{name: "bad recipient", to: "not-an-address", tmpl: models.EmailTemplate{Subject: "s"}},
		{name: "missing subject", to: "a@example.com", tmpl: models.EmailTemplate{Subject: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.Send(ctx, tt.tmpl, tt.to, nil); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(mailer.sent) != 0 {
		t.Fatal("mailer must not be called for rejected sends")
	}
}

func TestSendProviderFailure(t *testing.T) {
	service := newTestService(newTemplateStore(), &mailerStub{err: errors.New("rate limited")})

	_, err := service.Send(context.Background(), models.EmailTemplate{Subject: "s"}, "a@example.com", nil)
	var pErr *apperr.ProviderError
	if !errors.As(err, &pErr) || pErr.Provider != "stub" {
		t.Fatalf("expected provider error from stub, got %v", err)
	}
}

func TestSendTemplate(t *testing.T) {
	store := newTemplateStore()
	mailer := &mailerStub{}
	service := newTestService(store, mailer)
	ctx := context.Background()

	active, _ := service.Save(ctx, "owner-1", models.EmailTemplate{Name: "a", Subject: "Hi {{user_name}}", HTMLContent: "x", IsActive: true})
	inactive, _ := service.Save(ctx, "owner-1", models.EmailTemplate{Name: "b", Subject: "Hi", HTMLContent: "x"})

	if _, err := service.SendTemplate(ctx, "owner-1", active.ID, "a@example.com", Substitutions{KeyUserName: "Al"}); err != nil {
		t.Fatalf("send template: %v", err)
	}
	if mailer.sent[0].Subject != "Hi Al" {
		t.Fatalf("unexpected subject %q", mailer.sent[0].Subject)
	}
	if _, err := service.SendTemplate(ctx, "owner-1", inactive.ID, "a@example.com", nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for inactive template, got %v", err)
	}
	if _, err := service.SendTemplate(ctx, "owner-2", active.ID, "a@example.com", nil); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := service.SendTemplate(ctx, "owner-1", "missing", "a@example.com", nil); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type sendGridClientStub struct {
	message *mail.SGMailV3
	resp    *rest.Response
	err     error
}

func (s *sendGridClientStub) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	s.message = email
	return s.resp, s.err
}

func TestSendGridMailer(t *testing.T) {
	client := &sendGridClientStub{resp: &rest.Response{
		StatusCode: 202,
		Headers:    map[string][]string{"X-Message-Id": {"sg-123"}},
	}}
	mailer := &SendGridMailer{client: client}

	receipt, err := mailer.Send(context.Background(), Message{
		From:    Address{Name: "LearnHub", Address: "from@example.com"},
		To:      []string{"to@example.com"},
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if receipt.ID != "sg-123" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if client.message.From.Address != "from@example.com" || client.message.Subject != "Hello" {
		t.Fatalf("unexpected message: %+v", client.message)
	}
	if len(client.message.Personalizations) != 1 || client.message.Personalizations[0].To[0].Address != "to@example.com" {
		t.Fatalf("unexpected personalizations: %+v", client.message.Personalizations)
	}

	client.resp = &rest.Response{StatusCode: 401, Body: `{"errors":[{"message":"bad key"}]}`}
	if _, err := mailer.Send(context.Background(), Message{To: []string{"to@example.com"}}); err == nil {
		t.Fatal("expected error for 401 response")
	}

	client.err = errors.New("timeout")
	if _, err := mailer.Send(context.Background(), Message{To: []string{"to@example.com"}}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestBuildMessage(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := string(buildMessage(Message{
		From:    Address{Name: "LearnHub", Address: "from@example.com"},
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
	}, "<id@localhost>", now))

	for _, want := range []string{
		"From: LearnHub <from@example.com>\r\n",
		"To: a@example.com, b@example.com\r\n",
		"Subject: Hello\r\n",
		"Message-ID: <id@localhost>\r\n",
		"Content-Type: text/html; charset=\"UTF-8\"\r\n",
		"\r\n\r\n<p>Hi</p>",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("message missing %q:\n%s", want, raw)
		}
	}
}
