package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/damdeez/newsie/internal/domain"
)

const rootBucket = "published"

var errRootMissing = errors.New("published bucket missing")

// boltStore keeps one nested bucket per feed under the root bucket; values
// are JSON records carrying their own expiry.
type boltStore struct {
	db   *bolt.DB
	opts Options

	cleanupMu   sync.Mutex
	lastCleanup time.Time
}

func openBolt(path string, opts Options) (*boltStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rootBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db, opts: opts, lastCleanup: opts.Now()}, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Published reports whether articleID was published to feed and has not
// expired. Expired entries are deleted on read.
func (b *boltStore) Published(feed, articleID string) (bool, error) {
	if err := b.maybePrune(); err != nil {
		return false, err
	}

	now := b.opts.Now()
	var found bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		if root == nil {
			return errRootMissing
		}
		bucket := root.Bucket([]byte(feed))
		if bucket == nil {
			return nil
		}

		key := []byte(articleID)
		raw := bucket.Get(key)
		if raw == nil {
			return nil
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil || rec.expired(now) {
			return bucket.Delete(key)
		}
		found = true
		return nil
	})
	return found, err
}

func (b *boltStore) MarkPublished(feed string, a domain.Article) error {
	if a.ID == "" {
		return fmt.Errorf("article %q has no id", a.Title)
	}
	if err := b.maybePrune(); err != nil {
		return err
	}

	raw, err := json.Marshal(newRecord(a, b.opts.Now(), b.opts.TTL))
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		if root == nil {
			return errRootMissing
		}
		bucket, err := root.CreateBucketIfNotExists([]byte(feed))
		if err != nil {
			return fmt.Errorf("create feed bucket %q: %w", feed, err)
		}
		return bucket.Put([]byte(a.ID), raw)
	})
}

// Prune removes expired records across all feeds and drops empty feed buckets.
func (b *boltStore) Prune() (int, error) {
	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()
	return b.pruneLocked()
}

func (b *boltStore) maybePrune() error {
	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	if b.opts.Now().Sub(b.lastCleanup) < b.opts.CleanupInterval {
		return nil
	}
	_, err := b.pruneLocked()
	return err
}

func (b *boltStore) pruneLocked() (int, error) {
	now := b.opts.Now()
	removed := 0

	err := b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		if root == nil {
			return errRootMissing
		}

		var emptyFeeds [][]byte
		err := root.ForEachBucket(func(name []byte) error {
			bucket := root.Bucket(name)
			var expired [][]byte
			err := bucket.ForEach(func(k, v []byte) error {
				var rec record
				if err := json.Unmarshal(v, &rec); err != nil || rec.expired(now) {
					expired = append(expired, append([]byte(nil), k...))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, k := range expired {
				if err := bucket.Delete(k); err != nil {
					return err
				}
				removed++
			}
			if k, _ := bucket.Cursor().First(); k == nil {
				emptyFeeds = append(emptyFeeds, append([]byte(nil), name...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, name := range emptyFeeds {
			if err := root.DeleteBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup = now
	}
	return removed, err
}
