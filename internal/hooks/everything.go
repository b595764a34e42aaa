package hooks

import (
	"context"

	"github.com/damdeez/newsie/internal/domain"
	"github.com/damdeez/newsie/internal/logger"
)

// Everything is the keyword-search hook.
type Everything struct {
	*runner
	source NewsSource
}

// NewEverything creates an unmounted-on-Close keyword hook. Cycles derive
// from ctx; loading may be nil.
func NewEverything(ctx context.Context, source NewsSource, loading LoadingSetter, log logger.Logger) *Everything {
	return &Everything{runner: newRunner(ctx, "everything", loading, log), source: source}
}

// SetQuery starts a cycle when the trimmed keyword changes, superseding any
// in-flight one. A blank keyword settles to an idle state without a network
// call.
func (h *Everything) SetQuery(keyword string) {
	params := domain.EverythingParams(keyword)
	key := params.EffectiveKeyword()
	if key == "" {
		h.settleNow(State{})
		return
	}
	h.start(key, func(ctx context.Context) (*domain.Response, error) {
		return h.source.Everything(ctx, params)
	})
}
