package bedrock

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const anthropicVersion = "bedrock-2023-05-31"

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
	Temperature      float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicContentBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
}

func buildAnthropic(req Request) ([]byte, error) {
	content := make([]anthropicContentBlock, 0, len(req.Attachments)+1)
	content = append(content, anthropicContentBlock{Type: "text", Text: req.Text})
	for _, a := range req.Attachments {
		content = append(content, anthropicContentBlock{
			Type: "image",
			Source: &anthropicSource{
				Type:      "base64",
				MediaType: a.MediaType,
				Data:      base64.StdEncoding.EncodeToString(a.Data),
			},
		})
	}
	return json.Marshal(anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        req.MaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: content},
		},
		Temperature: req.Temperature,
	})
}

func extractAnthropic(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode anthropic response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic response has no content")
	}
	return resp.Content[0].Text, nil
}
