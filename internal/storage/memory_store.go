package storage

import (
	"sync"

	"github.com/damdeez/newsie/internal/domain"
)

// memoryStore keeps records in process memory; contents are lost on restart.
type memoryStore struct {
	mu      sync.Mutex
	opts    Options
	records map[string]map[string]record
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{opts: opts, records: make(map[string]map[string]record)}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Published(feed, articleID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[feed][articleID]
	if !ok {
		return false, nil
	}
	if rec.expired(m.opts.Now()) {
		delete(m.records[feed], articleID)
		return false, nil
	}
	return true, nil
}

func (m *memoryStore) MarkPublished(feed string, a domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.records[feed]
	if !ok {
		bucket = make(map[string]record)
		m.records[feed] = bucket
	}
	bucket[a.ID] = newRecord(a, m.opts.Now(), m.opts.TTL)
	return nil
}

func (m *memoryStore) Prune() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.Now()
	removed := 0
	for feed, bucket := range m.records {
		for id, rec := range bucket {
			if rec.expired(now) {
				delete(bucket, id)
				removed++
			}
		}
		if len(bucket) == 0 {
			delete(m.records, feed)
		}
	}
	return removed, nil
}
