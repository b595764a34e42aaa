// Package hooks runs cancellable fetch cycles whose latest result is exposed
// as a State snapshot.
package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/damdeez/newsie/internal/domain"
	"github.com/damdeez/newsie/internal/logger"
	"github.com/damdeez/newsie/pkg/providers"
)

// GenericErrorMessage is reported when a failure carries no usable message.
const GenericErrorMessage = providers.ProviderErrorMessage

// State is what a hook exposes to its reader. Error == "" means no error.
type State struct {
	Data    *domain.Response `json:"data"`
	Loading bool             `json:"loading"`
	Error   string           `json:"error"`
}

// MarshalJSON renders an empty Error as null.
func (s State) MarshalJSON() ([]byte, error) {
	type wire struct {
		Data    *domain.Response `json:"data"`
		Loading bool             `json:"loading"`
		Error   *string          `json:"error"`
	}
	w := wire{Data: s.Data, Loading: s.Loading}
	if s.Error != "" {
		w.Error = &s.Error
	}
	return json.Marshal(w)
}

// LoadingSetter receives the shared "search loading" flag.
type LoadingSetter interface {
	SetSearchLoading(loading bool)
}

// NewsSource is the subset of providers.Client the hooks call.
type NewsSource interface {
	Everything(ctx context.Context, p domain.QueryParams) (*domain.Response, error)
	TopHeadlines(ctx context.Context, p domain.QueryParams) (*domain.Response, error)
}

type fetchFunc func(ctx context.Context) (*domain.Response, error)

var errNonError = errors.New(GenericErrorMessage)

type cycle struct {
	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	clear    sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

func (c *cycle) finish() { c.doneOnce.Do(func() { close(c.done) }) }

// runner owns the cycle bookkeeping shared by Everything and Headlines.
// Only the cycle matching the current generation may write state.
type runner struct {
	name    string
	base    context.Context
	loading LoadingSetter
	log     logger.Logger

	mu        sync.Mutex
	gen       uint64
	cur       *cycle
	key       string
	hasKey    bool
	state     State
	closed    bool
	observers []func(State)
}

func newRunner(ctx context.Context, name string, loading LoadingSetter, log logger.Logger) *runner {
	if ctx == nil {
		ctx = context.Background()
	}
	initial := &cycle{ctx: ctx, cancel: func() {}, done: make(chan struct{})}
	return &runner{
		name:    name,
		base:    ctx,
		loading: loading,
		log:     logger.Ensure(log),
		cur:     initial,
		state:   State{Loading: true},
	}
}

// State returns the latest snapshot.
func (r *runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// OnSettle registers fn to run after every settled cycle, including idle and
// validation settles. Superseded cycles never notify.
func (r *runner) OnSettle(fn func(State)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

// Wait blocks until the current cycle settles (following any cycles that
// supersede it) or ctx is done.
func (r *runner) Wait(ctx context.Context) (State, error) {
	for {
		r.mu.Lock()
		c := r.cur
		r.mu.Unlock()

		select {
		case <-c.done:
			r.mu.Lock()
			if r.cur == c {
				st := r.state
				r.mu.Unlock()
				return st, nil
			}
			r.mu.Unlock()
		case <-ctx.Done():
			return r.State(), ctx.Err()
		}
	}
}

// Close cancels the in-flight cycle; its result is discarded. Later parameter
// changes are ignored.
func (r *runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	c := r.cur
	c.cancel()
	c.clear.Do(func() { r.setLoading(false) })
	r.mu.Unlock()
	c.finish()
}

// start begins a cycle for key unless key is the one already in flight or
// settled.
func (r *runner) start(key string, fetch fetchFunc) {
	r.mu.Lock()
	if r.closed || (r.hasKey && r.key == key) {
		r.mu.Unlock()
		return
	}
	r.key, r.hasKey = key, true
	prev := r.supersedeLocked()

	ctx, cancel := context.WithCancel(r.base)
	c := &cycle{gen: r.gen, ctx: ctx, cancel: cancel, done: make(chan struct{})}
	r.cur = c
	r.state = State{Data: r.state.Data, Loading: true}
	r.setLoading(true)
	r.mu.Unlock()

	prev.finish()
	go r.run(c, fetch)
}

// settleNow ends any in-flight cycle and settles immediately without a fetch.
func (r *runner) settleNow(next State) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	prev := r.cur
	prev.cancel()
	prev.clear.Do(func() { r.setLoading(false) })
	r.gen++
	r.key, r.hasKey = "", false

	c := &cycle{gen: r.gen, ctx: r.base, cancel: func() {}, done: make(chan struct{})}
	c.clear.Do(func() {})
	r.cur = c
	r.state = next
	observers := r.observersLocked()
	r.mu.Unlock()

	prev.finish()
	c.finish()
	notify(observers, next)
}

// supersedeLocked cancels the current cycle without touching the shared
// loading flag; the next cycle sets it again. Must hold r.mu.
func (r *runner) supersedeLocked() *cycle {
	prev := r.cur
	prev.cancel()
	prev.clear.Do(func() {})
	r.gen++
	return prev
}

func (r *runner) run(c *cycle, fetch fetchFunc) {
	resp, err := callFetch(c.ctx, fetch)
	r.settle(c, resp, err)
}

func (r *runner) settle(c *cycle, resp *domain.Response, err error) {
	r.mu.Lock()
	if r.closed || c.gen != r.gen || c.ctx.Err() != nil {
		if !r.closed && c.gen == r.gen {
			// parent context gone: the cycle never settles but still
			// releases the shared flag.
			c.clear.Do(func() { r.setLoading(false) })
		}
		r.mu.Unlock()
		c.cancel()
		r.log.DebugObj("discarding cancelled fetch", "hook_cycle", map[string]any{"hook": r.name, "generation": c.gen})
		return
	}
	c.cancel()

	var next State
	switch {
	case err != nil:
		next.Error = errorMessage(err)
		r.log.WarnObj("fetch failed", "hook_cycle", map[string]any{"hook": r.name, "generation": c.gen, "error": err.Error()})
	case resp == nil:
		next.Error = GenericErrorMessage
	default:
		next.Data = &domain.Response{
			Status:       resp.Status,
			TotalResults: resp.TotalResults,
			NextPage:     resp.NextPage,
			Articles:     domain.UniqueArticles(resp.Articles),
		}
	}
	r.state = next
	c.clear.Do(func() { r.setLoading(false) })
	observers := r.observersLocked()
	r.mu.Unlock()

	c.finish()
	notify(observers, next)
}

func (r *runner) setLoading(v bool) {
	if r.loading != nil {
		r.loading.SetSearchLoading(v)
	}
}

func (r *runner) observersLocked() []func(State) {
	out := make([]func(State), len(r.observers))
	copy(out, r.observers)
	return out
}

func notify(observers []func(State), st State) {
	for _, fn := range observers {
		fn(st)
	}
}

// callFetch turns panics into errors; a non-error panic value maps to the
// generic message.
func callFetch(ctx context.Context, fetch fetchFunc) (resp *domain.Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			err = errNonError
		}
	}()
	return fetch(ctx)
}

func errorMessage(err error) string {
	var apiErr *providers.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericErrorMessage
}
