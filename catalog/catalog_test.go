package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	c := Default()
	m, ok := c.Get("anthropic.claude-3-haiku-20240307-v1:0")
	if !ok {
		t.Fatal("expected Claude 3 Haiku to be in the default catalog")
	}
	if m.Provider != ProviderAnthropic {
		t.Errorf("expected provider %q, got %q", ProviderAnthropic, m.Provider)
	}
	m, ok = c.Get("amazon.titan-text-express-v1")
	if !ok {
		t.Fatal("expected Titan Text Express to be in the default catalog")
	}
	if m.Provider != ProviderAmazon {
		t.Errorf("expected provider %q, got %q", ProviderAmazon, m.Provider)
	}
	if _, ok = c.Get("gpt-4"); ok {
		t.Error("expected unknown model to be missing")
	}
}

func TestModelsReturnsCopy(t *testing.T) {
	c := Default()
	models := c.Models()
	models[0].ID = "changed"
	if c.Models()[0].ID == "changed" {
		t.Error("expected Models to return a copy")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		models    []Model
		expectErr bool
	}{
		{
			name: "valid models are accepted",
			models: []Model{
				{ID: "a", Name: "A", Provider: ProviderAnthropic},
				{ID: "b", Name: "B", Provider: ProviderAmazon},
			},
		},
		{
			name:      "missing ids are rejected",
			models:    []Model{{Name: "A", Provider: ProviderAnthropic}},
			expectErr: true,
		},
		{
			name:      "missing providers are rejected",
			models:    []Model{{ID: "a", Name: "A"}},
			expectErr: true,
		},
		{
			name: "duplicate ids are rejected",
			models: []Model{
				{ID: "a", Provider: ProviderAnthropic},
				{ID: "a", Provider: ProviderAmazon},
			},
			expectErr: true,
		},
		{
			name:   "unknown providers are accepted, dispatch rejects them later",
			models: []Model{{ID: "a", Provider: "meta"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.models)
			if tt.expectErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNameDefaultsToID(t *testing.T) {
	c, err := New([]Model{{ID: "a", Provider: ProviderAmazon}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, _ := c.Get("a")
	if m.Name != "a" {
		t.Errorf("expected name %q, got %q", "a", m.Name)
	}
}

func TestLoadFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "models.yaml")
	contents := `models:
  - id: anthropic.claude-3-haiku-20240307-v1:0
    name: Claude 3 Haiku
    provider: anthropic
  - id: amazon.titan-text-express-v1
    name: Titan Text Express
    provider: amazon
`
	if err := os.WriteFile(name, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	c, err := LoadFile(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []Model{
		{ID: "anthropic.claude-3-haiku-20240307-v1:0", Name: "Claude 3 Haiku", Provider: ProviderAnthropic},
		{ID: "amazon.titan-text-express-v1", Name: "Titan Text Express", Provider: ProviderAmazon},
	}
	if diff := cmp.Diff(expected, c.Models()); diff != "" {
		t.Error(diff)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("models: []\n"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("models: [\n"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	for _, name := range []string{empty, invalid, filepath.Join(dir, "missing.yaml")} {
		t.Run(filepath.Base(name), func(t *testing.T) {
			if _, err := LoadFile(name); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
