package hooks

import (
	"context"

	"github.com/damdeez/newsie/internal/domain"
	"github.com/damdeez/newsie/internal/logger"
)

// ErrCountryRequired is reported when headlines are requested without a country.
const ErrCountryRequired = "country is required"

// Headlines is the top-headlines hook.
type Headlines struct {
	*runner
	source NewsSource
}

func NewHeadlines(ctx context.Context, source NewsSource, loading LoadingSetter, log logger.Logger) *Headlines {
	return &Headlines{runner: newRunner(ctx, "headlines", loading, log), source: source}
}

// SetParams starts a cycle when country or keyword changes. An empty keyword
// is omitted from the request; whitespace is sent as-is.
func (h *Headlines) SetParams(country, keyword string) {
	params := domain.HeadlinesParams(country, keyword)
	if params.Country == "" {
		h.settleNow(State{Error: ErrCountryRequired})
		return
	}
	h.start(params.Country+"\x00"+params.Keyword, func(ctx context.Context) (*domain.Response, error) {
		return h.source.TopHeadlines(ctx, params)
	})
}
