package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/damdeez/newsie/internal/domain"
)

// NewsDataAdapter speaks the newsdata.io v1 format: "results", "link",
// "image_url" and status "success". The key travels as the apikey query param.
type NewsDataAdapter struct{}

const defaultHeadlinesCategory = "top"

type newsDataEnvelope struct {
	Status       string          `json:"status"`
	TotalResults int             `json:"totalResults"`
	Results      json.RawMessage `json:"results"`
	NextPage     string          `json:"nextPage"`
}

type newsDataError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type newsDataArticle struct {
	ArticleID   string   `json:"article_id"`
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Creator     []string `json:"creator"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	PubDate     string   `json:"pubDate"`
	ImageURL    string   `json:"image_url"`
	SourceID    string   `json:"source_id"`
	SourceName  string   `json:"source_name"`
}

func (NewsDataAdapter) Type() string { return TypeNewsData }

// Everything has no date window or sort option on newsdata's latest endpoint.
func (NewsDataAdapter) Everything(cfg Provider, apiKey string, p domain.QueryParams, _ time.Time) Request {
	q := url.Values{}
	q.Set("apikey", apiKey)
	q.Set("language", p.Language)
	q.Set("q", p.EffectiveKeyword())

	return Request{
		URL:     endpoint(cfg, ConfigEverythingPathKey, "/latest") + "?" + q.Encode(),
		Headers: Headers(cfg),
	}
}

func (NewsDataAdapter) TopHeadlines(cfg Provider, apiKey string, p domain.QueryParams) Request {
	q := url.Values{}
	q.Set("apikey", apiKey)
	q.Set("country", p.Country)
	q.Set("language", p.Language)
	q.Set("category", ConfigString(cfg, ConfigHeadlinesCategory, defaultHeadlinesCategory))
	if p.Keyword != "" {
		q.Set("q", p.Keyword)
	}

	return Request{
		URL:     endpoint(cfg, ConfigHeadlinesPathKey, "/latest") + "?" + q.Encode(),
		Headers: Headers(cfg),
	}
}

func (NewsDataAdapter) Decode(statusCode int, body []byte) (*domain.Response, error) {
	var env newsDataEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if !isSuccess(statusCode) {
			return nil, newAPIError(statusCode, "", "")
		}
		return nil, fmt.Errorf("decode newsdata response: %w (body=%s)", err, responseSnippet(body))
	}

	if !isSuccess(statusCode) || !strings.EqualFold(env.Status, "success") {
		// Error payloads carry an object under "results" instead of a list.
		var perr newsDataError
		if trimmed := bytes.TrimSpace(env.Results); len(trimmed) > 0 && trimmed[0] == '{' {
			_ = json.Unmarshal(trimmed, &perr)
		}
		return nil, newAPIError(statusCode, perr.Code, strings.TrimSpace(perr.Message))
	}

	var raw []newsDataArticle
	if trimmed := bytes.TrimSpace(env.Results); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("decode newsdata results: %w", err)
		}
	}

	articles := make([]domain.Article, 0, len(raw))
	for _, a := range raw {
		articles = append(articles, domain.Article{
			ID:          hashURL(a.Link),
			SourceID:    a.SourceID,
			SourceName:  sourceName(a),
			Author:      joinNonEmpty(a.Creator, ", "),
			Title:       a.Title,
			Description: a.Description,
			URL:         a.Link,
			ImageURL:    a.ImageURL,
			PublishedAt: normalizeTimestamp(a.PubDate),
			Content:     a.Content,
		})
	}

	return &domain.Response{
		Status:       domain.StatusOK,
		TotalResults: env.TotalResults,
		NextPage:     env.NextPage,
		Articles:     articles,
	}, nil
}

func sourceName(a newsDataArticle) string {
	if name := strings.TrimSpace(a.SourceName); name != "" {
		return name
	}
	return a.SourceID
}
