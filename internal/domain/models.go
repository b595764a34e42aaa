package domain

import "strings"

// Domain contains core models shared by providers, hooks and publishers.

// Language is the only article language newsie requests.
const Language = "en"

// Normalized response statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Article is a single news item normalized from a provider response.
// Empty optional fields (Author, Description, ImageURL, Content) mean the
// provider returned null.
type Article struct {
	ID          string `json:"id"`
	SourceID    string `json:"sourceId,omitempty"`
	SourceName  string `json:"sourceName"`
	Author      string `json:"author,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	ImageURL    string `json:"imageUrl,omitempty"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content,omitempty"`
}

// Response is the canonical envelope for one successful fetch.
type Response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	NextPage     string    `json:"nextPage,omitempty"`
	Articles     []Article `json:"articles"`
}

// QueryParams are the inputs of a single fetch cycle.
type QueryParams struct {
	Keyword  string
	Country  string
	Language string
}

// EverythingParams builds params for a keyword search.
func EverythingParams(keyword string) QueryParams {
	return QueryParams{Keyword: keyword, Language: Language}
}

// HeadlinesParams builds params for a top-headlines request.
func HeadlinesParams(country, keyword string) QueryParams {
	return QueryParams{Keyword: keyword, Country: strings.ToLower(strings.TrimSpace(country)), Language: Language}
}

// EffectiveKeyword is the trimmed keyword that drives keyword searches.
func (p QueryParams) EffectiveKeyword() string {
	return strings.TrimSpace(p.Keyword)
}
