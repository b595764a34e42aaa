package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/damdeez/newsie/internal/domain"
	"github.com/damdeez/newsie/internal/session"
	"github.com/damdeez/newsie/pkg/providers"
)

type fakeSource struct {
	mu       sync.Mutex
	err      error
	lastHead domain.QueryParams
	keywords []string
}

func (f *fakeSource) Everything(_ context.Context, p domain.QueryParams) (*domain.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keywords = append(f.keywords, p.Keyword)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Response{
		Status: domain.StatusOK,
		Articles: []domain.Article{
			{Title: "Same", URL: "https://example.com/1"},
			{Title: "Same", URL: "https://example.com/2"},
			{Title: "Other", URL: "https://example.com/3"},
		},
	}, nil
}

func (f *fakeSource) TopHeadlines(_ context.Context, p domain.QueryParams) (*domain.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastHead = p
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Response{Status: domain.StatusOK, Articles: []domain.Article{{Title: "Top " + p.Country}}}, nil
}

func (f *fakeSource) searched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keywords...)
}

type stateBody struct {
	Data    *domain.Response `json:"data"`
	Loading bool             `json:"loading"`
	Error   *string          `json:"error"`
}

func newTestServer(src *fakeSource) (*Server, *session.Manager) {
	gin.SetMode(gin.TestMode)
	mgr := session.NewManager(src, session.Options{Debounce: 10 * time.Millisecond, DefaultCountry: "us"}, time.Minute, nil)
	return New(src, mgr, "us", nil), mgr
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(&fakeSource{})
	rec := do(t, srv.Router(), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestEverythingEndpoint(t *testing.T) {
	srv, _ := newTestServer(&fakeSource{})
	rec := do(t, srv.Router(), http.MethodGet, "/api/everything?q=bitcoin", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	body := decode[stateBody](t, rec)
	if body.Error != nil || body.Loading || body.Data == nil || len(body.Data.Articles) != 2 {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestEverythingEndpointBlankQueryIsIdle(t *testing.T) {
	src := &fakeSource{}
	srv, _ := newTestServer(src)
	rec := do(t, srv.Router(), http.MethodGet, "/api/everything?q=+++", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != `{"data":null,"loading":false,"error":null}` {
		t.Fatalf("unexpected idle body %s", rec.Body.String())
	}
	if len(src.searched()) != 0 {
		t.Fatalf("blank query must not fetch")
	}
}

func TestEverythingEndpointError(t *testing.T) {
	srv, _ := newTestServer(&fakeSource{err: &providers.TransportError{Err: errors.New("Network error")}})
	rec := do(t, srv.Router(), http.MethodGet, "/api/everything?q=bitcoin", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[stateBody](t, rec)
	if body.Error == nil || *body.Error != "Network error" || body.Data != nil {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestTopHeadlinesEndpoint(t *testing.T) {
	src := &fakeSource{}
	srv, _ := newTestServer(src)
	router := srv.Router()

	rec := do(t, router, http.MethodGet, "/api/top-headlines?country=GB&q=vote", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if src.lastHead.Country != "gb" || src.lastHead.Keyword != "vote" {
		t.Fatalf("unexpected params %#v", src.lastHead)
	}

	rec = do(t, router, http.MethodGet, "/api/top-headlines", "")
	if rec.Code != http.StatusOK || src.lastHead.Country != "us" {
		t.Fatalf("expected default country, got %d %#v", rec.Code, src.lastHead)
	}

	rec = do(t, router, http.MethodGet, "/api/top-headlines?country=", "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "country is required") {
		t.Fatalf("expected validation error, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSessionFlow(t *testing.T) {
	src := &fakeSource{}
	srv, mgr := newTestServer(src)
	router := srv.Router()

	rec := do(t, router, http.MethodPost, "/api/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	snap := decode[session.Snapshot](t, rec)
	if snap.ID == "" || snap.Greeting == "" {
		t.Fatalf("unexpected snapshot %s", rec.Body.String())
	}

	rec = do(t, router, http.MethodPut, "/api/sessions/"+snap.ID+"/search", `{"search":"b"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected too-short search to be rejected, got %d", rec.Code)
	}
	rec = do(t, router, http.MethodPut, "/api/sessions/"+snap.ID+"/search", `{"search":"`+strings.Repeat("x", 31)+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected too-long search to be rejected, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPut, "/api/sessions/"+snap.ID+"/search", `{"search":"bitcoin"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("search status = %d", rec.Code)
	}
	if got := decode[session.Snapshot](t, rec); got.SearchTerm != "bitcoin" {
		t.Fatalf("unexpected search term %q", got.SearchTerm)
	}

	sess, ok := mgr.Get(snap.ID)
	if !ok {
		t.Fatalf("session missing")
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(src.searched()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if st, err := sess.WaitEverything(ctx); err != nil || st.Data == nil {
		t.Fatalf("search did not settle: %v %#v", err, st)
	}

	rec = do(t, router, http.MethodPut, "/api/sessions/"+snap.ID+"/headlines", `{"country":"ca"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("headlines status = %d", rec.Code)
	}
	if st, err := sess.WaitHeadlines(ctx); err != nil || st.Data == nil || st.Data.Articles[0].Title != "Top ca" {
		t.Fatalf("headlines did not settle: %v %#v", err, st)
	}

	rec = do(t, router, http.MethodGet, "/api/sessions/"+snap.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = do(t, router, http.MethodDelete, "/api/sessions/"+snap.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(t, router, http.MethodGet, "/api/sessions/"+snap.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}
