package providers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/damdeez/newsie/internal/dates"
	"github.com/damdeez/newsie/internal/domain"
)

// NewsAPIAdapter speaks the newsapi.org v2 format: "articles", "url",
// "urlToImage" and status "ok".
type NewsAPIAdapter struct{}

const newsAPIKeyHeader = "X-Api-Key"

type newsAPIEnvelope struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func (NewsAPIAdapter) Type() string { return TypeNewsAPI }

// Everything searches the last month of English articles, newest first.
func (NewsAPIAdapter) Everything(cfg Provider, apiKey string, p domain.QueryParams, now time.Time) Request {
	q := url.Values{}
	q.Set("language", p.Language)
	q.Set("from", dates.OneMonthAgo(now))
	q.Set("sortBy", "publishedAt")
	q.Set("q", p.EffectiveKeyword())

	return Request{
		URL:     endpoint(cfg, ConfigEverythingPathKey, "/everything") + "?" + q.Encode(),
		Headers: newsAPIHeaders(cfg, apiKey),
	}
}

// TopHeadlines requests the country's headlines; q is only sent when non-empty.
func (NewsAPIAdapter) TopHeadlines(cfg Provider, apiKey string, p domain.QueryParams) Request {
	q := url.Values{}
	q.Set("country", p.Country)
	q.Set("language", p.Language)
	if p.Keyword != "" {
		q.Set("q", p.Keyword)
	}

	return Request{
		URL:     endpoint(cfg, ConfigHeadlinesPathKey, "/top-headlines") + "?" + q.Encode(),
		Headers: newsAPIHeaders(cfg, apiKey),
	}
}

func newsAPIHeaders(cfg Provider, apiKey string) map[string]string {
	headers := Headers(cfg)
	headers[newsAPIKeyHeader] = apiKey
	return headers
}

func (NewsAPIAdapter) Decode(statusCode int, body []byte) (*domain.Response, error) {
	var env newsAPIEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if !isSuccess(statusCode) {
			return nil, newAPIError(statusCode, "", "")
		}
		return nil, fmt.Errorf("decode newsapi response: %w (body=%s)", err, responseSnippet(body))
	}

	if !isSuccess(statusCode) {
		return nil, newAPIError(statusCode, env.Code, strings.TrimSpace(env.Message))
	}
	if !strings.EqualFold(env.Status, "ok") {
		return nil, newAPIError(statusCode, env.Code, strings.TrimSpace(env.Message))
	}

	articles := make([]domain.Article, 0, len(env.Articles))
	for _, a := range env.Articles {
		articles = append(articles, domain.Article{
			ID:          hashURL(a.URL),
			SourceID:    a.Source.ID,
			SourceName:  a.Source.Name,
			Author:      a.Author,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			PublishedAt: normalizeTimestamp(a.PublishedAt),
			Content:     a.Content,
		})
	}

	return &domain.Response{
		Status:       domain.StatusOK,
		TotalResults: env.TotalResults,
		Articles:     articles,
	}, nil
}
