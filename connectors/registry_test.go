package connectors

import (
	"strings"
	"testing"
)

const sampleRegistry = `
providers:
  - id: 1
    name: worktasks
    url: https://tasks.example.com/api
  - id: 2
    name: personal
    url: https://personal.example.com/api
    insecure_skip_verify: true
`

func TestParseRegistry(t *testing.T) {
	registry, err := ParseRegistry([]byte(sampleRegistry))
	if err != nil {
		t.Fatalf("ParseRegistry failed: %v", err)
	}
	if len(registry.Providers) != 2 {
		t.Fatalf("Expected two providers, got %d", len(registry.Providers))
	}

	entry := registry.Find("worktasks")
	if entry == nil || entry.ID != 1 {
		t.Fatalf("Expected to find worktasks, got %+v", entry)
	}
	if registry.Find("nope") != nil {
		t.Error("Expected nil for unknown provider")
	}

	provider := entry.Provider()
	if provider.ID != 1 || provider.Name != "worktasks" {
		t.Errorf("Unexpected provider identity: %+v", provider)
	}
}

func TestParseRegistryRejectsDuplicateIDs(t *testing.T) {
	_, err := ParseRegistry([]byte(`
providers:
  - id: 1
    name: one
    url: https://one.example.com
  - id: 1
    name: two
    url: https://two.example.com
`))
	if err == nil || !strings.Contains(err.Error(), "provider id 1") {
		t.Errorf("Expected duplicate id error, got %v", err)
	}
}

func TestParseRegistryRejectsMissingFields(t *testing.T) {
	_, err := ParseRegistry([]byte(`
providers:
  - id: 1
    name: broken
`))
	if err == nil {
		t.Error("Expected validation error for missing URL")
	}
}

func TestAdapterSchemeDispatch(t *testing.T) {
	entry := ProviderConfig{ID: 1, Name: "worktasks", URL: "https://tasks.example.com/api"}
	adapter, err := entry.Adapter("token")
	if err != nil {
		t.Fatalf("Adapter failed: %v", err)
	}
	if adapter == nil {
		t.Fatal("Expected an adapter")
	}

	entry.URL = "ftp://tasks.example.com"
	_, err = entry.Adapter("token")
	if err == nil {
		t.Fatal("Expected unsupported scheme error")
	}
	if !strings.Contains(err.Error(), "unsupported scheme") {
		t.Errorf("Unexpected error: %v", err)
	}
}
