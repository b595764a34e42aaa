package providers

import (
	"fmt"
	"strings"
	"sync"
)

// adapterRegistry implements AdapterRegistry.
type adapterRegistry struct {
	adaptersByID   map[string]Adapter
	adaptersByType map[string]Adapter
	mu             sync.RWMutex
}

// NewAdapterRegistry builds a registry with type-based adapters and optional
// provider-specific overrides keyed by provider id.
func NewAdapterRegistry(typeAdapters map[string]Adapter, idAdapters map[string]Adapter) AdapterRegistry {
	reg := &adapterRegistry{
		adaptersByID:   make(map[string]Adapter),
		adaptersByType: make(map[string]Adapter),
	}
	for id, a := range idAdapters {
		reg.register(reg.adaptersByID, id, a)
	}
	for typ, a := range typeAdapters {
		reg.register(reg.adaptersByType, typ, a)
	}
	return reg
}

func (r *adapterRegistry) register(into map[string]Adapter, key string, a Adapter) {
	if a == nil {
		return
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return
	}

	r.mu.Lock()
	into[key] = a
	r.mu.Unlock()
}

// AdapterFor selects the adapter for the given provider based on its id or type.
func (r *adapterRegistry) AdapterFor(cfg Provider) (Adapter, error) {
	if r == nil {
		return nil, fmt.Errorf("adapter registry is nil")
	}
	if strings.TrimSpace(cfg.ID) == "" {
		return nil, fmt.Errorf("provider id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.adaptersByID[strings.ToLower(strings.TrimSpace(cfg.ID))]; ok {
		return a, nil
	}
	if typeKey := strings.ToLower(strings.TrimSpace(cfg.Type)); typeKey != "" {
		if a, ok := r.adaptersByType[typeKey]; ok {
			return a, nil
		}
	}

	return nil, fmt.Errorf("no adapter registered for provider %q (type %q)", cfg.ID, cfg.Type)
}

// DefaultAdapterRegistry wires up the known provider adapters.
func DefaultAdapterRegistry() AdapterRegistry {
	return NewAdapterRegistry(map[string]Adapter{
		TypeNewsAPI:  NewsAPIAdapter{},
		TypeNewsData: NewsDataAdapter{},
	}, nil)
}
