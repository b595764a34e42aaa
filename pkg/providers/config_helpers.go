package providers

import "strings"

// ConfigString returns the trimmed string value for key from provider.Config or a fallback.
func ConfigString(cfg Provider, key, fallback string) string {
	if cfg.Config != nil {
		if raw, ok := cfg.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptLanguageKey = "accept_language"
	ConfigEverythingPathKey = "everything_path"
	ConfigHeadlinesPathKey  = "headlines_path"
	ConfigHeadlinesCategory = "headlines_category"
)

// Headers builds the common request headers from a provider config (skips empty values).
func Headers(cfg Provider) map[string]string {
	headers := map[string]string{"Accept": "application/json"}

	if v := ConfigString(cfg, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	if v := ConfigString(cfg, ConfigAcceptLanguageKey, ""); v != "" {
		headers["Accept-Language"] = v
	}

	return headers
}

// endpoint joins the provider base URL with a path, tolerating stray slashes.
func endpoint(cfg Provider, key, fallback string) string {
	path := ConfigString(cfg, key, fallback)
	return strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
