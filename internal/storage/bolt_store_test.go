package storage

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/damdeez/newsie/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func article(id string) domain.Article {
	return domain.Article{ID: id, Title: "Title " + id, URL: "https://example.com/" + id}
}

func testStores(t *testing.T, clk *fakeClock) map[string]Store {
	t.Helper()
	opts := Options{TTL: time.Hour, CleanupInterval: 10 * time.Minute, Now: clk.Now}

	bolt, err := NewStore(TypeBBolt, filepath.Join(t.TempDir(), "nested", "digest.db"), opts)
	if err != nil {
		t.Fatalf("NewStore bbolt: %v", err)
	}
	t.Cleanup(func() { bolt.Close() })

	mem, err := NewStore(TypeMemory, "", opts)
	if err != nil {
		t.Fatalf("NewStore memory: %v", err)
	}
	return map[string]Store{TypeBBolt: bolt, TypeMemory: mem}
}

func TestStoreMarksAndExpiresArticles(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	for name, store := range testStores(t, clk) {
		t.Run(name, func(t *testing.T) {
			seen, err := store.Published("headlines:us", "id1")
			if err != nil || seen {
				t.Fatalf("expected unpublished article, seen=%v err=%v", seen, err)
			}

			if err := store.MarkPublished("headlines:us", article("id1")); err != nil {
				t.Fatalf("MarkPublished: %v", err)
			}
			if seen, err = store.Published("headlines:us", "id1"); err != nil || !seen {
				t.Fatalf("expected article published, got seen=%v err=%v", seen, err)
			}
			if seen, _ = store.Published("headlines:gb", "id1"); seen {
				t.Fatalf("feeds must be tracked independently")
			}
		})
	}

}

func TestStoreExpiry(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	stores := testStores(t, clk)
	for _, store := range stores {
		if err := store.MarkPublished("headlines:us", article("old")); err != nil {
			t.Fatalf("MarkPublished: %v", err)
		}
	}

	clk.Advance(30 * time.Minute)
	for _, store := range stores {
		if err := store.MarkPublished("headlines:us", article("fresh")); err != nil {
			t.Fatalf("MarkPublished: %v", err)
		}
	}

	clk.Advance(45 * time.Minute)
	for name, store := range stores {
		if seen, err := store.Published("headlines:us", "old"); err != nil || seen {
			t.Fatalf("%s: expected old entry to expire, seen=%v err=%v", name, seen, err)
		}
		if seen, err := store.Published("headlines:us", "fresh"); err != nil || !seen {
			t.Fatalf("%s: expected fresh entry, seen=%v err=%v", name, seen, err)
		}
	}

	clk.Advance(time.Hour)
	for name, store := range stores {
		removed, err := store.Prune()
		if err != nil {
			t.Fatalf("%s: Prune: %v", name, err)
		}
		if removed != 1 {
			t.Fatalf("%s: expected 1 pruned record, got %d", name, removed)
		}
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	path := filepath.Join(t.TempDir(), "digest.db")
	opts := normalizeOptions(Options{TTL: time.Hour, Now: clk.Now})

	store, err := openBolt(path, opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	if err := store.MarkPublished("headlines:in", article("a")); err != nil {
		t.Fatalf("MarkPublished: %v", err)
	}
	if err := store.MarkPublished("headlines:in", domain.Article{Title: "no id"}); err == nil {
		t.Fatalf("expected error for article without id")
	}
	store.Close()

	reopened, err := openBolt(path, opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if seen, err := reopened.Published("headlines:in", "a"); err != nil || !seen {
		t.Fatalf("expected record to survive reopen, seen=%v err=%v", seen, err)
	}
}

func TestNewStoreBackends(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkPublished("f", article("x")); err != nil {
		t.Fatalf("noop store MarkPublished: %v", err)
	}
	if seen, _ := store.Published("f", "x"); seen {
		t.Fatalf("noop store never reports published")
	}

	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for bbolt without path")
	}
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}
