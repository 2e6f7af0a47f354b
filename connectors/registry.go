package connectors

import (
	"fmt"
	"net/url"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"taskbridge/backend/sync"
)

// ProviderConfig describes one remote provider in the registry file.
type ProviderConfig struct {
	ID       int64  `yaml:"id" validate:"required,gt=0"`
	Name     string `yaml:"name" validate:"required"`
	URL      string `yaml:"url" validate:"required,url"`
	Username string `yaml:"username,omitempty"`

	// InsecureSkipVerify disables TLS verification for this provider.
	// WARNING: Only use for self-signed certificates in dev
	InsecureSkipVerify bool `yaml:"insecure_skip_verify,omitempty"`
}

// Provider returns the engine-facing identity of this entry.
func (p ProviderConfig) Provider() sync.Provider {
	return sync.Provider{ID: p.ID, Name: p.Name}
}

// Adapter builds the remote adapter for this entry.
func (p ProviderConfig) Adapter(token string) (sync.RemoteAdapter, error) {
	u, err := url.Parse(p.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider URL %q: %w", p.URL, err)
	}
	cfg := &ConnectorConfig{URL: u, InsecureSkipVerify: p.InsecureSkipVerify}
	return cfg.RemoteAdapter(p.ID, token)
}

// Registry is the parsed providers file.
type Registry struct {
	Providers []ProviderConfig `yaml:"providers" validate:"required,min=1,dive"`
}

// Find returns the provider entry with the given name, or nil.
func (r *Registry) Find(name string) *ProviderConfig {
	for i := range r.Providers {
		if r.Providers[i].Name == name {
			return &r.Providers[i]
		}
	}
	return nil
}

// LoadRegistry reads and validates a YAML provider registry.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider registry: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry parses registry bytes. IDs and names must be unique; the
// mapping table keys on the provider id, so reusing one would cross-wire two
// services.
func ParseRegistry(data []byte) (*Registry, error) {
	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse provider registry: %w", err)
	}

	if err := validator.New().Struct(registry); err != nil {
		return nil, fmt.Errorf("invalid provider registry: %w", err)
	}

	seenIDs := make(map[int64]string, len(registry.Providers))
	seenNames := make(map[string]bool, len(registry.Providers))
	for _, p := range registry.Providers {
		if other, dup := seenIDs[p.ID]; dup {
			return nil, fmt.Errorf("provider id %d used by both %q and %q", p.ID, other, p.Name)
		}
		seenIDs[p.ID] = p.Name
		if seenNames[p.Name] {
			return nil, fmt.Errorf("duplicate provider name %q", p.Name)
		}
		seenNames[p.Name] = true
	}

	return &registry, nil
}
