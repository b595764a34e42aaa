package publishers

import (
	"time"

	"github.com/damdeez/newsie/internal/domain"
)

// Event is one digest article published downstream.
type Event struct {
	Feed        string         `json:"feed"`
	Country     string         `json:"country"`
	Provider    string         `json:"provider"`
	Article     domain.Article `json:"article"`
	CollectedAt time.Time      `json:"collected_at"`
}

// NewEvent builds an Event stamped with at in UTC.
func NewEvent(feed, country, provider string, article domain.Article, at time.Time) Event {
	return Event{
		Feed:        feed,
		Country:     country,
		Provider:    provider,
		Article:     article,
		CollectedAt: at.UTC(),
	}
}

// Attributes are the routing keys copied onto queue/topic message metadata.
func (e Event) Attributes() map[string]string {
	attrs := map[string]string{
		"feed":       e.Feed,
		"country":    e.Country,
		"provider":   e.Provider,
		"article_id": e.Article.ID,
	}
	for k, v := range attrs {
		if v == "" {
			delete(attrs, k)
		}
	}
	return attrs
}
