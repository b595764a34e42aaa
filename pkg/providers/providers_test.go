package providers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "providers.yaml")
	content := `
providers:
  - id: NewsAPI
    name: NewsAPI mirror
    type: newsapi
    base_url: https://mirror.example/v2/
    config:
      user_agent: newsie-test
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write providers file: %v", err)
	}

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}
	if got := len(reg.All()); got != 1 {
		t.Fatalf("expected 1 provider, got %d", got)
	}

	p, ok := reg.ByID("newsapi")
	if !ok {
		t.Fatalf("expected provider id newsapi to be loaded")
	}
	if p.BaseURL != "https://mirror.example/v2" {
		t.Fatalf("unexpected base_url: %s", p.BaseURL)
	}
	if ua := ConfigString(p, ConfigUserAgentKey, ""); ua != "newsie-test" {
		t.Fatalf("unexpected user agent: %q", ua)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "providers.json")
	content := `{"providers":[{"id":"nd","name":"NewsData","type":"newsdata","base_url":"https://newsdata.example/api/1"}]}`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write providers file: %v", err)
	}

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}
	if p, ok := reg.ByID("nd"); !ok || p.Type != TypeNewsData {
		t.Fatalf("unexpected provider %#v (ok=%v)", p, ok)
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "providers.yaml")
	content := `
providers:
  - id: duplicate
    name: Provider One
    type: newsapi
    base_url: https://p1.example
  - id: duplicate
    name: Provider Two
    type: newsdata
    base_url: https://p2.example
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write providers file: %v", err)
	}

	if _, err := LoadRegistry(file); err == nil {
		t.Fatalf("expected duplicate provider error, got nil")
	}
}

func TestLoadRegistryRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "providers.yaml")
	content := `
providers:
  - id: rss
    name: Some RSS
    type: rss
    base_url: https://rss.example
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write providers file: %v", err)
	}

	if _, err := LoadRegistry(file); err == nil {
		t.Fatalf("expected unsupported type error, got nil")
	}
}

func TestLoadRegistryEmptyPathUsesDefaults(t *testing.T) {
	reg, err := LoadRegistry("  ")
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}
	for _, id := range []string{"newsapi", "newsdata"} {
		if _, ok := reg.ByID(id); !ok {
			t.Fatalf("expected built-in provider %q", id)
		}
	}
}

func TestAdapterRegistryPrefersID(t *testing.T) {
	override := NewsDataAdapter{}
	reg := NewAdapterRegistry(map[string]Adapter{TypeNewsAPI: NewsAPIAdapter{}}, map[string]Adapter{"special": override})

	a, err := reg.AdapterFor(Provider{ID: "special", Type: TypeNewsAPI})
	if err != nil {
		t.Fatalf("AdapterFor returned error: %v", err)
	}
	if a.Type() != TypeNewsData {
		t.Fatalf("expected id override, got %s", a.Type())
	}

	if _, err := reg.AdapterFor(Provider{ID: "x", Type: "rss"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
