// Package storage remembers which headlines the digest already published.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/damdeez/newsie/internal/domain"
)

// Store tracks published articles per feed (e.g. "headlines:us").
type Store interface {
	Close() error
	Published(feed, articleID string) (bool, error)
	MarkPublished(feed string, article domain.Article) error
	Prune() (int, error)
}

// Options controls retention for concrete store implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	Now             func() time.Time
}

const (
	defaultTTL             = 3 * 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// Supported backends.
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeBBolt  = "bbolt"
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeMemory:
		return newMemoryStore(opts), nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// record is what gets persisted for each published article.
type record struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func newRecord(a domain.Article, now time.Time, ttl time.Duration) record {
	return record{Title: a.Title, URL: a.URL, PublishedAt: now, ExpiresAt: now.Add(ttl)}
}

func (r record) expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

type noopStore struct{}

func (noopStore) Close() error                               { return nil }
func (noopStore) Published(string, string) (bool, error)     { return false, nil }
func (noopStore) MarkPublished(string, domain.Article) error { return nil }
func (noopStore) Prune() (int, error)                        { return 0, nil }
