package app

import (
	"fmt"

	"github.com/damdeez/newsie/internal/config"
	"github.com/damdeez/newsie/internal/logger"
	"github.com/damdeez/newsie/pkg/httpclient"
	"github.com/damdeez/newsie/pkg/providers"
)

// NewNewsClient resolves the configured provider from the registry and
// builds a client for it. news_api_url overrides the provider's base URL.
func NewNewsClient(cfg *config.Config, log logger.Logger) (*providers.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	reg, err := providers.LoadRegistry(cfg.ProvidersFile)
	if err != nil {
		return nil, fmt.Errorf("load providers registry: %w", err)
	}

	provider, ok := reg.ByID(cfg.NewsProvider)
	if !ok {
		return nil, fmt.Errorf("news provider %q not found in registry", cfg.NewsProvider)
	}
	if cfg.NewsAPIURL != "" {
		provider.BaseURL = cfg.NewsAPIURL
	}

	client, err := providers.NewClient(provider, cfg.NewsAPIKey, httpclient.NewRestyClient(cfg.RequestTimeout))
	if err != nil {
		return nil, fmt.Errorf("build news client: %w", err)
	}

	if cfg.NewsAPIKey == "" {
		log.WarnObj("news api key is empty; requests will likely be rejected", "provider", provider.ID)
	}
	log.InfoObj("news provider selected", "provider_meta", map[string]any{
		"id":       provider.ID,
		"type":     provider.Type,
		"base_url": provider.BaseURL,
	})
	return client, nil
}
