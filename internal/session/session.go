// Package session composes one reader's search state and fetch hooks.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/damdeez/newsie/internal/dates"
	"github.com/damdeez/newsie/internal/hooks"
	"github.com/damdeez/newsie/internal/logger"
	"github.com/damdeez/newsie/internal/search"
)

// Options configure new sessions.
type Options struct {
	Debounce       time.Duration
	DefaultCountry string
	Now            func() time.Time
}

// Snapshot is the JSON view of a session.
type Snapshot struct {
	ID            string      `json:"id"`
	Greeting      string      `json:"greeting"`
	SearchTerm    string      `json:"searchTerm"`
	SearchLoading bool        `json:"searchLoading"`
	Everything    hooks.State `json:"everything"`
	Headlines     hooks.State `json:"headlines"`
	LastSeen      time.Time   `json:"lastSeen"`
}

// Session owns a search context, a debouncer feeding the keyword hook, and
// the headlines hook.
type Session struct {
	id         string
	search     *search.Context
	debounce   *search.Debouncer
	everything *hooks.Everything
	headlines  *hooks.Headlines
	now        func() time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// New creates a session and starts its headlines fetch for the default country.
func New(id string, source hooks.NewsSource, opts Options, log logger.Logger) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	sc := search.NewContext()
	s := &Session{
		id:         id,
		search:     sc,
		everything: hooks.NewEverything(context.Background(), source, sc, log),
		headlines:  hooks.NewHeadlines(context.Background(), source, sc, log),
		now:        opts.Now,
		lastSeen:   opts.Now(),
	}
	s.debounce = search.NewDebouncer(opts.Debounce, s.everything.SetQuery)

	if opts.DefaultCountry != "" {
		s.headlines.SetParams(opts.DefaultCountry, "")
	}
	return s
}

func (s *Session) ID() string { return s.id }

// Search records term and queues a debounced keyword fetch.
func (s *Session) Search(term string) {
	s.touch()
	s.search.SetSearchTerm(term)
	s.debounce.Push(term)
}

// FlushSearch runs the pending debounced search now.
func (s *Session) FlushSearch() {
	s.debounce.Flush()
}

// Headlines refetches the top headlines.
func (s *Session) Headlines(country, keyword string) {
	s.touch()
	s.headlines.SetParams(country, keyword)
}

// WaitHeadlines blocks until the headlines cycle settles or ctx is done.
func (s *Session) WaitHeadlines(ctx context.Context) (hooks.State, error) {
	return s.headlines.Wait(ctx)
}

// WaitEverything blocks until the keyword cycle settles or ctx is done.
func (s *Session) WaitEverything(ctx context.Context) (hooks.State, error) {
	return s.everything.Wait(ctx)
}

func (s *Session) Snapshot() Snapshot {
	sc := s.search.Snapshot()
	return Snapshot{
		ID:            s.id,
		Greeting:      dates.Greeting(s.now()),
		SearchTerm:    sc.SearchTerm,
		SearchLoading: sc.SearchLoading,
		Everything:    s.everything.State(),
		Headlines:     s.headlines.State(),
		LastSeen:      s.LastSeen(),
	}
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close stops the debouncer and cancels both hooks.
func (s *Session) Close() {
	s.debounce.Stop()
	s.everything.Close()
	s.headlines.Close()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}
