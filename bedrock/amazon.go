package bedrock

import (
	"encoding/json"
	"fmt"
)

type titanRequest struct {
	InputText            string                    `json:"inputText"`
	TextGenerationConfig titanTextGenerationConfig `json:"textGenerationConfig"`
}

type titanTextGenerationConfig struct {
	MaxTokenCount int     `json:"maxTokenCount"`
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"topP"`
}

type titanResponse struct {
	InputTextTokenCount int           `json:"inputTextTokenCount"`
	Results             []titanResult `json:"results"`
}

type titanResult struct {
	TokenCount       int    `json:"tokenCount"`
	OutputText       string `json:"outputText"`
	CompletionReason string `json:"completionReason"`
}

// Titan text models only accept text, so attachments are dropped.
func buildAmazon(req Request) ([]byte, error) {
	return json.Marshal(titanRequest{
		InputText: req.Text,
		TextGenerationConfig: titanTextGenerationConfig{
			MaxTokenCount: req.MaxTokens,
			Temperature:   req.Temperature,
			TopP:          req.TopP,
		},
	})
}

func extractAmazon(body []byte) (string, error) {
	var resp titanResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode titan response: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("titan response has no results")
	}
	return resp.Results[0].OutputText, nil
}
