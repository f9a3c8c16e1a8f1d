// Package catalog decides what a viewer may watch and shapes the public
// catalogue for display.
package catalog

import (
	"context"
	"errors"

	"github.com/learnhub/backend/internal/apperr"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repositories"
)

// Decision is the entitlement outcome for one viewer and one video.
type Decision string

const (
	Allow        Decision = "allow"
	RequireLogin Decision = "require_login"
)

// Decide allows free videos to anyone and paid videos to any signed-in viewer.
// There is no plan or subscription check.
func Decide(isFree bool, viewer *models.Identity) Decision {
	if isFree || viewer != nil {
		return Allow
	}
	return RequireLogin
}

// Action is the call to action rendered on a catalogue card.
type Action struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Entry is one catalogue card.
type Entry struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Duration     string   `json:"duration"`
	IsFree       bool     `json:"isFree"`
	Badge        string   `json:"badge"`
	Decision     Decision `json:"decision"`
	Action       Action   `json:"action"`
}

// Watch is the single-video view. Video.MediaURL is blank unless Decision is Allow.
type Watch struct {
	Video    models.Video `json:"video"`
	Decision Decision     `json:"decision"`
}

// Source reads the catalogue.
type Source interface {
	List(ctx context.Context) ([]models.Video, error)
	Get(ctx context.Context, id string) (models.Video, error)
}

// Renderer applies the entitlement decision to catalogue reads.
type Renderer struct {
	source Source
}

// NewRenderer constructs a Renderer.
func NewRenderer(source Source) *Renderer {
	return &Renderer{source: source}
}

// List returns every video, newest first, as cards for viewer. viewer is nil for
// anonymous visitors.
func (r *Renderer) List(ctx context.Context, viewer *models.Identity) ([]Entry, error) {
	videos, err := r.source.List(ctx)
	if err != nil {
		return nil, apperr.Provider("database", "list videos", err)
	}

	entries := make([]Entry, 0, len(videos))
	for _, video := range videos {
		decision := Decide(video.IsFree, viewer)
		entries = append(entries, Entry{
			ID:           video.ID,
			Title:        video.Title,
			Description:  video.Description,
			ThumbnailURL: video.ThumbnailURL,
			Duration:     video.Duration,
			IsFree:       video.IsFree,
			Badge:        badge(video.IsFree),
			Decision:     decision,
			Action:       action(video.ID, decision),
		})
	}
	return entries, nil
}

// Watch resolves a single video for viewer.
func (r *Renderer) Watch(ctx context.Context, id string, viewer *models.Identity) (Watch, error) {
	video, err := r.source.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Watch{}, err
		}
		return Watch{}, apperr.Provider("database", "get video", err)
	}

	decision := Decide(video.IsFree, viewer)
	if decision != Allow {
		video.MediaURL = ""
	}
	return Watch{Video: video, Decision: decision}, nil
}

func badge(isFree bool) string {
	if isFree {
		return "Free"
	}
	return "Paid"
}

func action(id string, decision Decision) Action {
	if decision == Allow {
		return Action{Kind: "watch", Label: "Watch now", Href: "/video/" + id}
	}
	return Action{Kind: "subscribe", Label: "Subscribe to watch", Href: "/pricing"}
}
