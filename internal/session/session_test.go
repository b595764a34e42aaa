package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/damdeez/newsie/internal/domain"
)

type stubSource struct {
	mu        sync.Mutex
	keywords  []string
	countries []string
}

func (s *stubSource) Everything(_ context.Context, p domain.QueryParams) (*domain.Response, error) {
	s.mu.Lock()
	s.keywords = append(s.keywords, p.Keyword)
	s.mu.Unlock()
	return &domain.Response{Status: domain.StatusOK, Articles: []domain.Article{{Title: "About " + p.Keyword}}}, nil
}

func (s *stubSource) TopHeadlines(_ context.Context, p domain.QueryParams) (*domain.Response, error) {
	s.mu.Lock()
	s.countries = append(s.countries, p.Country)
	s.mu.Unlock()
	return &domain.Response{Status: domain.StatusOK, Articles: []domain.Article{{Title: "Top in " + p.Country}}}, nil
}

func (s *stubSource) searched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keywords...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSessionLoadsDefaultHeadlines(t *testing.T) {
	src := &stubSource{}
	clk := &clock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	s := New("s1", src, Options{DefaultCountry: "us", Now: clk.Now}, nil)
	defer s.Close()

	st, err := s.WaitHeadlines(waitCtx(t))
	if err != nil {
		t.Fatalf("wait headlines: %v", err)
	}
	if st.Data == nil || st.Data.Articles[0].Title != "Top in us" {
		t.Fatalf("unexpected headlines %#v", st)
	}

	snap := s.Snapshot()
	if snap.Greeting != "Good morning!" || snap.ID != "s1" {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
	if !snap.Everything.Loading {
		t.Fatalf("keyword hook should start in loading state")
	}
}

func TestSessionSearchIsDebounced(t *testing.T) {
	src := &stubSource{}
	s := New("s2", src, Options{Debounce: 20 * time.Millisecond}, nil)
	defer s.Close()

	s.Search("b")
	s.Search("bi")
	s.Search("bitcoin")

	deadline := time.Now().Add(2 * time.Second)
	for len(src.searched()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	st, err := s.WaitEverything(waitCtx(t))
	if err != nil {
		t.Fatalf("wait everything: %v", err)
	}
	if got := src.searched(); len(got) != 1 || got[0] != "bitcoin" {
		t.Fatalf("expected single debounced search, got %v", got)
	}
	if st.Data == nil || st.Data.Articles[0].Title != "About bitcoin" {
		t.Fatalf("unexpected state %#v", st)
	}

	snap := s.Snapshot()
	if snap.SearchTerm != "bitcoin" || snap.SearchLoading {
		t.Fatalf("unexpected search snapshot %#v", snap)
	}
}

func TestSessionFlushSearch(t *testing.T) {
	src := &stubSource{}
	s := New("s3", src, Options{Debounce: time.Hour}, nil)
	defer s.Close()

	s.Search("go")
	s.FlushSearch()
	if _, err := s.WaitEverything(waitCtx(t)); err != nil {
		t.Fatalf("wait everything: %v", err)
	}
	if got := src.searched(); len(got) != 1 || got[0] != "go" {
		t.Fatalf("unexpected searches %v", got)
	}
}

func TestManagerLifecycle(t *testing.T) {
	clk := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(&stubSource{}, Options{Now: clk.Now}, time.Minute, nil)

	a := m.Create()
	b := m.Create()
	if a.ID() == b.ID() || m.Len() != 2 {
		t.Fatalf("expected two distinct sessions")
	}
	if _, ok := m.Get(a.ID()); !ok {
		t.Fatalf("expected session %s", a.ID())
	}

	clk.Advance(45 * time.Second)
	if _, ok := m.Get(b.ID()); !ok {
		t.Fatalf("expected session %s", b.ID())
	}
	clk.Advance(30 * time.Second)

	if n := m.Reap(); n != 1 {
		t.Fatalf("expected 1 reaped session, got %d", n)
	}
	if _, ok := m.Get(a.ID()); ok {
		t.Fatalf("idle session should be gone")
	}
	if !m.Close(b.ID()) || m.Close(b.ID()) {
		t.Fatalf("close should succeed exactly once")
	}
	if m.Len() != 0 {
		t.Fatalf("expected no sessions left")
	}
}

func TestManagerRunClosesOnShutdown(t *testing.T) {
	m := NewManager(&stubSource{}, Options{}, 0, nil)
	m.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return")
	}
	if m.Len() != 0 {
		t.Fatalf("expected sessions closed on shutdown")
	}
}
