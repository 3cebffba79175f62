package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderAmazon    Provider = "amazon"
)

type Model struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Provider Provider `json:"provider" yaml:"provider"`
}

// Catalog is a read-only table of the models a server will forward to.
type Catalog struct {
	models []Model
	byID   map[string]int
}

func New(models []Model) (*Catalog, error) {
	c := &Catalog{
		models: make([]Model, len(models)),
		byID:   make(map[string]int, len(models)),
	}
	var errs []error
	for i, m := range models {
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("model %d: missing id", i))
			continue
		}
		if m.Provider == "" {
			errs = append(errs, fmt.Errorf("model %q: missing provider", m.ID))
		}
		if _, exists := c.byID[m.ID]; exists {
			errs = append(errs, fmt.Errorf("model %q: duplicate id", m.ID))
			continue
		}
		if m.Name == "" {
			m.Name = m.ID
		}
		c.models[i] = m
		c.byID[m.ID] = i
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("catalog: invalid models: %w", err)
	}
	return c, nil
}

var defaultModels = []Model{
	{ID: "anthropic.claude-v2:1", Name: "Claude v2.1", Provider: ProviderAnthropic},
	{ID: "anthropic.claude-3-haiku-20240307-v1:0", Name: "Claude 3 Haiku", Provider: ProviderAnthropic},
	{ID: "anthropic.claude-3-sonnet-20240229-v1:0", Name: "Claude 3 Sonnet", Provider: ProviderAnthropic},
	{ID: "anthropic.claude-3-5-sonnet-20240620-v1:0", Name: "Claude 3.5 Sonnet", Provider: ProviderAnthropic},
	{ID: "anthropic.claude-instant-v1", Name: "Claude Instant", Provider: ProviderAnthropic},
	{ID: "amazon.titan-text-express-v1", Name: "Titan Text Express", Provider: ProviderAmazon},
}

// Default returns the built-in model table.
func Default() *Catalog {
	c, err := New(defaultModels)
	if err != nil {
		panic(err)
	}
	return c
}

type file struct {
	Models []Model `yaml:"models"`
}

// LoadFile reads a YAML document of the form:
//
//	models:
//	  - id: anthropic.claude-3-haiku-20240307-v1:0
//	    name: Claude 3 Haiku
//	    provider: anthropic
func LoadFile(name string) (*Catalog, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to open %s: %w", name, err)
	}
	defer f.Close()
	var doc file
	if err = yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: failed to decode %s: %w", name, err)
	}
	if len(doc.Models) == 0 {
		return nil, fmt.Errorf("catalog: %s contains no models", name)
	}
	return New(doc.Models)
}

func (c *Catalog) Get(id string) (m Model, ok bool) {
	i, ok := c.byID[id]
	if !ok {
		return m, false
	}
	return c.models[i], true
}

// Models returns a copy of the table in declaration order.
func (c *Catalog) Models() []Model {
	out := make([]Model, len(c.models))
	copy(out, c.models)
	return out
}
