package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/damdeez/newsie/internal/config"
	"github.com/damdeez/newsie/internal/logger"
	"github.com/damdeez/newsie/internal/server"
	"github.com/damdeez/newsie/internal/session"
)

const shutdownTimeout = 10 * time.Second

// API is the HTTP runtime: the gin router plus the session reaper.
type API struct {
	httpServer *http.Server
	sessions   *session.Manager
	log        logger.Logger
}

// NewAPI builds the HTTP runtime from config.
func NewAPI(cfg *config.Config, log logger.Logger) (*API, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	client, err := NewNewsClient(cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sessions := session.NewManager(client, session.Options{
		Debounce:       cfg.SearchDebounce,
		DefaultCountry: cfg.DefaultCountry,
	}, cfg.SessionIdle, log)

	srv := server.New(client, sessions, cfg.DefaultCountry, log)

	return &API{
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		sessions: sessions,
		log:      log,
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	reaperCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go a.sessions.Run(reaperCtx)

	errCh := make(chan error, 1)
	go func() {
		a.log.InfoObj("http server listening", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.InfoObj("http server shutting down", "reason", ctx.Err().Error())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
