package bedrock

import (
	"bytes"
	"encoding/json"

	"github.com/a-h/bedrockchat/catalog"
)

const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
	DefaultTopP        = 1.0

	// DefaultMediaType is used for attachments that don't declare a type.
	DefaultMediaType = "application/octet-stream"
)

type Attachment struct {
	Data      []byte
	MediaType string
}

// Request is the provider independent form of a single-turn chat.
type Request struct {
	Text        string
	Attachments []Attachment
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// adapter converts a Request to a provider's InvokeModel body and reads the
// answer back out of the provider's response body.
type adapter struct {
	build   func(req Request) ([]byte, error)
	extract func(body []byte) (string, error)
}

var adapters = map[catalog.Provider]adapter{
	catalog.ProviderAnthropic: {
		build:   buildAnthropic,
		extract: extractAnthropic,
	},
	catalog.ProviderAmazon: {
		build:   buildAmazon,
		extract: extractAmazon,
	},
}

func adapterFor(p catalog.Provider) (a adapter, ok bool) {
	a, ok = adapters[p]
	return a, ok
}

const unknownUpstreamError = "Unknown error occurred"

// embeddedError reports whether a response body has a truthy "error" field,
// and the message to show for it.
func embeddedError(body []byte) (msg string, ok bool) {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false
	}
	raw := bytes.TrimSpace(envelope.Error)
	if len(raw) == 0 {
		return "", false
	}
	switch string(raw) {
	case "null", "false", "0", `""`:
		return "", false
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message, true
	}
	return unknownUpstreamError, true
}
