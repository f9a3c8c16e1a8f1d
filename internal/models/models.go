package models

import "time"

// User represents a LearnHub account managed by the built-in identity provider.
type User struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity is the authenticated viewer as reported by the auth provider.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Video is a catalogue entry pointing at an uploaded media object.
type Video struct {
	ID           string `json:"id"`
	OwnerID      string `json:"ownerId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	MediaURL     string `json:"videoUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl"`
	// Duration is a display label such as "45 min", not a number of seconds.
	Duration  string    `json:"duration"`
	IsFree    bool      `json:"isFree"`
	CreatedAt time.Time `json:"createdAt"`
}

// VideoPatch carries the metadata fields an owner may change after upload.
// Nil fields are left untouched. The media locator is intentionally absent.
type VideoPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Duration    *string `json:"duration,omitempty"`
	IsFree      *bool   `json:"isFree,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p VideoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Duration == nil && p.IsFree == nil
}

// TemplateType classifies an email template.
type TemplateType string

const (
	TemplateWelcome       TemplateType = "welcome"
	TemplateUpgradePrompt TemplateType = "upgrade_prompt"
	TemplateRetention     TemplateType = "retention"
	TemplateCustom        TemplateType = "custom"
)

// Valid reports whether t is one of the known template types.
func (t TemplateType) Valid() bool {
	switch t {
	case TemplateWelcome, TemplateUpgradePrompt, TemplateRetention, TemplateCustom:
		return true
	default:
		return false
	}
}

// EmailTemplate is an owner's editable email with {{placeholder}} tokens.
type EmailTemplate struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"ownerId"`
	Name        string       `json:"name"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
	Type        TemplateType `json:"templateType"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
