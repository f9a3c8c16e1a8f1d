package handlers

import (
	"net/http"
	"strings"

	"github.com/learnhub/backend/internal/emails"
	"github.com/learnhub/backend/internal/logging"
	"github.com/learnhub/backend/internal/models"
)

// testMailBody is the message sent by the send-email diagnostic endpoint.
const testMailBody = `<h1>Test email sent successfully!</h1>
<p>Hello {{user_name}},</p>
<p>LearnHub email delivery is working.</p>`

// EmailHandler exposes template management and the send-email endpoint.
type EmailHandler struct {
	Emails     EmailService
	Configured bool
	Limiter    RateLimiter
}

// Status handles GET /api/send-email.
func (h EmailHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, map[string]any{
		"message":   "Email API is working",
		"hasApiKey": h.Configured,
	})
}

// SendTest handles POST /api/send-email.
func (h EmailHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, w, r, "send-email") {
		return
	}

	var req sendEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logging.FromContext(ctx).Warn("invalid send-email payload", "error", err)
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	subs := emails.Substitutions{
		emails.KeyUserName: strings.TrimSpace(req.UserData.Name),
	}
	if subs[emails.KeyUserName] == "" {
		subs[emails.KeyUserName] = "there"
	}
	if email := strings.TrimSpace(req.UserData.Email); email != "" {
		subs[emails.KeyUserEmail] = email
	}

	tmpl := models.EmailTemplate{Subject: req.Subject, HTMLContent: testMailBody}
	receipt, err := h.Emails.Send(ctx, tmpl, req.To, subs)
	if err != nil {
		respondError(ctx, w, err, "failed to send email")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"success": true, "data": receipt})
}

// ListTemplates handles GET /api/admin/email-templates. Owners without any
// templates get the default set before the first read.
func (h EmailHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := viewerID(r)

	if err := h.Emails.EnsureDefaults(ctx, owner); err != nil {
		respondError(ctx, w, err, "unable to load templates")
		return
	}

	templates, err := h.Emails.List(ctx, owner)
	if err != nil {
		respondError(ctx, w, err, "unable to load templates")
		return
	}
	if templates == nil {
		templates = []models.EmailTemplate{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"templates": templates})
}

// SaveTemplate handles POST /api/admin/email-templates. A body with an id
// updates that template; without one a new template is created.
func (h EmailHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	tmpl := req.template()
	creating := tmpl.ID == ""
	if !creating && req.IsActive == nil {
		existing, err := h.Emails.Get(ctx, viewerID(r), tmpl.ID)
		if err != nil {
			respondError(ctx, w, err, "unable to save template")
			return
		}
		tmpl.IsActive = existing.IsActive
	}

	saved, err := h.Emails.Save(ctx, viewerID(r), tmpl)
	if err != nil {
		respondError(ctx, w, err, "unable to save template")
		return
	}

	status := http.StatusOK
	if creating {
		status = http.StatusCreated
	}
	respondJSON(ctx, w, status, saved)
}

// SendTemplate handles POST /api/admin/email-templates/{id}/send.
func (h EmailHandler) SendTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, w, r, "send-email") {
		return
	}

	var req sendTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := h.Emails.SendTemplate(ctx, viewerID(r), r.PathValue("id"), req.To, emails.Substitutions(req.Data))
	if err != nil {
		respondError(ctx, w, err, "failed to send email")
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"success": true, "data": receipt})
}

type sendEmailRequest struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	UserData struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"userData"`
}

type sendTemplateRequest struct {
	To   string            `json:"to"`
	Data map[string]string `json:"data"`
}

type saveTemplateRequest struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
	Type        models.TemplateType `json:"templateType"`
	IsActive    *bool               `json:"isActive"`
}

// template converts the request. New templates are active unless the body says
// otherwise; updates without isActive are resolved against the stored template.
func (req saveTemplateRequest) template() models.EmailTemplate {
	id := strings.TrimSpace(req.ID)
	active := id == ""
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return models.EmailTemplate{
		ID:          id,
		Name:        req.Name,
		Subject:     req.Subject,
		HTMLContent: req.HTMLContent,
		Type:        req.Type,
		IsActive:    active,
	}
}
