// Package enrich fills gaps in provider articles from the pages' OpenGraph tags.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/damdeez/newsie/internal/domain"
	"github.com/damdeez/newsie/internal/logger"
	"github.com/damdeez/newsie/pkg/httpclient"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Scraper fetches article pages and reads their metadata.
type Scraper struct {
	client  httpclient.Client
	delay   time.Duration
	headers map[string]string
	log     logger.Logger
}

// Options tune page fetching.
type Options struct {
	// Delay is waited between consecutive page fetches.
	Delay     time.Duration
	UserAgent string
}

func NewScraper(client httpclient.Client, opts Options, log logger.Logger) *Scraper {
	headers := map[string]string{"Accept": "text/html,application/xhtml+xml"}
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		headers["User-Agent"] = ua
	}
	return &Scraper{client: client, delay: opts.Delay, headers: headers, log: logger.Ensure(log)}
}

// Enrich returns a copy of articles where a missing Description or ImageURL
// was filled from the article page. Titles are never changed. On
// cancellation the remaining articles are returned untouched.
func (s *Scraper) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := append([]domain.Article(nil), articles...)
	fetched := 0

	for i, art := range articles {
		if !needsEnrichment(art) {
			continue
		}
		if fetched > 0 && s.delay > 0 {
			timer := time.NewTimer(s.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return out
		}
		fetched++

		meta, err := s.fetchMeta(ctx, art.URL)
		if err != nil {
			s.log.WarnObj("article metadata scrape failed", "metadata_error", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
			continue
		}
		out[i] = merge(art, meta)
	}

	return out
}

func needsEnrichment(a domain.Article) bool {
	return a.URL != "" && (a.Description == "" || a.ImageURL == "")
}

func merge(a domain.Article, meta pageMeta) domain.Article {
	if a.Description == "" {
		a.Description = meta.Description
	}
	if a.ImageURL == "" {
		a.ImageURL = resolveURL(meta.ImageURL, a.URL)
	}
	return a
}

func (s *Scraper) fetchMeta(ctx context.Context, pageURL string) (pageMeta, error) {
	resp, err := s.client.Get(ctx, pageURL, s.headers)
	if err != nil {
		return pageMeta{}, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return pageMeta{}, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}
	if ct := resp.Header("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "html") {
		return pageMeta{}, fmt.Errorf("unsupported content type %q", ct)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	return parseMeta(body)
}

type pageMeta struct {
	Description string
	ImageURL    string
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	content := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Description: firstNonEmpty(
			content(`meta[property="og:description"]`),
			content(`meta[name="twitter:description"]`),
			content(`meta[name="description"]`),
		),
		ImageURL: firstNonEmpty(
			content(`meta[property="og:image"]`),
			content(`meta[name="twitter:image"]`),
		),
	}, nil
}

// resolveURL makes ref absolute against base; unparseable refs are dropped.
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if r.IsAbs() {
		return r.String()
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ""
	}
	return b.ResolveReference(r).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
