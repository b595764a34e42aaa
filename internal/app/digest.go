package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damdeez/newsie/internal/config"
	"github.com/damdeez/newsie/internal/domain"
	"github.com/damdeez/newsie/internal/enrich"
	"github.com/damdeez/newsie/internal/hooks"
	"github.com/damdeez/newsie/internal/logger"
	"github.com/damdeez/newsie/internal/storage"
	"github.com/damdeez/newsie/pkg/httpclient"
	"github.com/damdeez/newsie/pkg/publishers"
)

// ArticleEnricher fills missing article metadata.
type ArticleEnricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.Article
}

// EventPublisher delivers one event to every configured sink.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
	Close() error
}

// Digest periodically publishes new top headlines for a set of countries.
type Digest struct {
	source    hooks.NewsSource
	provider  string
	countries []string
	interval  time.Duration
	store     storage.Store
	enricher  ArticleEnricher
	publisher EventPublisher
	log       logger.Logger
	now       func() time.Time
}

// NewDigest builds a digest runtime from config files.
func NewDigest(ctx context.Context, cfg *config.Config, log logger.Logger) (*Digest, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}
	if len(cfg.DigestCountries) == 0 {
		return nil, fmt.Errorf("no digest countries configured")
	}

	client, err := NewNewsClient(cfg, log)
	if err != nil {
		return nil, err
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{"id": pubCfg.ID, "type": pubCfg.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	scraper := enrich.NewScraper(httpclient.NewRestyClient(cfg.RequestTimeout), enrich.Options{
		Delay:     cfg.EnrichDelay,
		UserAgent: httpclient.DefaultUserAgent,
	}, log)

	return &Digest{
		source:    client,
		provider:  client.Provider().ID,
		countries: cfg.DigestCountries,
		interval:  cfg.DigestInterval,
		store:     store,
		enricher:  scraper,
		publisher: fanout,
		log:       log,
		now:       time.Now,
	}, nil
}

// Run publishes once immediately and then every interval until ctx is cancelled.
func (d *Digest) Run(ctx context.Context) error {
	if d == nil || d.source == nil {
		return fmt.Errorf("digest is not initialized")
	}
	defer d.close()

	d.log.InfoObj("digest loop starting", "digest_state", map[string]any{
		"countries":        d.countries,
		"publishers_count": d.publisher.Size(),
		"interval":         d.interval.String(),
	})

	if err := d.RunOnce(ctx); err != nil {
		d.log.ErrorObj("initial digest failed", "error", err.Error())
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.InfoObj("digest loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := d.RunOnce(ctx); err != nil {
				d.log.ErrorObj("scheduled digest failed", "error", err.Error())
			}
		}
	}
}

// RunOnce processes every country; per-country failures are joined.
func (d *Digest) RunOnce(ctx context.Context) error {
	start := d.now()
	var errs []error
	total := 0

	for _, country := range d.countries {
		if ctx.Err() != nil {
			break
		}
		n, err := d.runCountry(ctx, country)
		total += n
		if err != nil {
			errs = append(errs, err)
			d.log.ErrorObj("country digest failed", "digest_error", map[string]any{
				"country": country,
				"error":   err.Error(),
			})
		}
	}

	if removed, err := d.store.Prune(); err != nil {
		errs = append(errs, fmt.Errorf("prune storage: %w", err))
	} else if removed > 0 {
		d.log.DebugObj("storage pruned", "storage_prune", map[string]any{"removed": removed})
	}

	d.log.InfoObj("digest completed", "digest_meta", map[string]any{
		"countries":  len(d.countries),
		"published":  total,
		"elapsed_ms": d.now().Sub(start).Milliseconds(),
	})
	return errors.Join(errs...)
}

func (d *Digest) runCountry(ctx context.Context, country string) (int, error) {
	h := hooks.NewHeadlines(ctx, d.source, nil, d.log)
	defer h.Close()

	h.SetParams(country, "")
	st, err := h.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("headlines %s: %w", country, err)
	}
	if st.Error != "" {
		return 0, fmt.Errorf("headlines %s: %s", country, st.Error)
	}
	if st.Data == nil {
		return 0, nil
	}

	feed := "headlines:" + country
	fresh := make([]domain.Article, 0, len(st.Data.Articles))
	for _, a := range st.Data.Articles {
		if a.ID == "" {
			continue
		}
		seen, err := d.store.Published(feed, a.ID)
		if err != nil {
			return 0, fmt.Errorf("check published %s: %w", a.ID, err)
		}
		if !seen {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if d.enricher != nil {
		fresh = d.enricher.Enrich(ctx, fresh)
	}

	var errs []error
	published := 0
	for _, a := range fresh {
		delivered, err := d.publisher.Publish(ctx, publishers.NewEvent(feed, country, d.provider, a, d.now()))
		if err != nil {
			errs = append(errs, err)
		}
		if delivered == 0 {
			continue
		}
		if err := d.store.MarkPublished(feed, a); err != nil {
			errs = append(errs, fmt.Errorf("mark published %s: %w", a.ID, err))
			continue
		}
		published++
	}
	return published, errors.Join(errs...)
}

func (d *Digest) close() {
	if err := d.publisher.Close(); err != nil {
		d.log.ErrorObj("publisher close failed", "error", err.Error())
	}
	if err := d.store.Close(); err != nil {
		d.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
