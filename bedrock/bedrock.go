// Package bedrock forwards single-turn chats to Amazon Bedrock's InvokeModel
// API, shaping the request and response for the model's provider.
package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/a-h/bedrockchat/catalog"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/tmc/langchaingo/llms"
)

// Invoker is the subset of *bedrockruntime.Client used to reach Bedrock.
type Invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// NewClient creates a Bedrock Runtime client using the default AWS credential
// chain. Missing credentials are reported by the first InvokeModel call.
func NewClient(ctx context.Context, region string) (*bedrockruntime.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("bedrock: failed to load AWS config: %w", err)
	}
	return bedrockruntime.NewFromConfig(cfg), nil
}

func New(invoker Invoker, models *catalog.Catalog, defaultModel string) *LLM {
	return &LLM{
		invoker:      invoker,
		models:       models,
		defaultModel: defaultModel,
	}
}

// LLM implements llms.Model on top of Bedrock.
type LLM struct {
	invoker      Invoker
	models       *catalog.Catalog
	defaultModel string
}

var _ llms.Model = (*LLM)(nil)

// NewRequest creates a Request with the default generation parameters.
func NewRequest(text string, attachments ...Attachment) Request {
	return Request{
		Text:        text,
		Attachments: attachments,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
}

// Chat sends a message and its attachments to the model and returns the text
// of the answer.
func (l *LLM) Chat(ctx context.Context, modelID string, req Request) (text string, err error) {
	if req.Text == "" {
		return "", newError(InvalidInput, nil, "Message is required")
	}
	if modelID == "" {
		modelID = l.defaultModel
	}
	model, ok := l.models.Get(modelID)
	if !ok {
		return "", newError(InvalidInput, nil, "Invalid model ID: %s", modelID)
	}
	a, ok := adapterFor(model.Provider)
	if !ok {
		return "", newError(UnsupportedProvider, nil, "Unsupported provider %q for model %s", model.Provider, model.ID)
	}
	attachments := make([]Attachment, len(req.Attachments))
	for i, a := range req.Attachments {
		if a.MediaType == "" {
			a.MediaType = DefaultMediaType
		}
		attachments[i] = a
	}
	req.Attachments = attachments

	body, err := a.build(req)
	if err != nil {
		return "", newError(UpstreamError, err, "Failed to build request for %s", model.ID)
	}
	out, err := l.invoker.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model.ID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", newError(UpstreamError, err, "%s", upstreamMessage(err))
	}
	if msg, hasError := embeddedError(out.Body); hasError {
		return "", newError(UpstreamError, nil, "%s", msg)
	}
	text, err = a.extract(out.Body)
	if err != nil {
		return "", newError(UpstreamError, err, "Invalid response from %s", model.ID)
	}
	return text, nil
}

func upstreamMessage(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) && ae.ErrorMessage() != "" {
		return ae.ErrorMessage()
	}
	return err.Error()
}

// GenerateContent accepts a single human message made of text parts and
// binary attachments. The model is selected with llms.WithModel.
func (l *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{
		Model:       l.defaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
	for _, opt := range options {
		opt(&opts)
	}

	req, err := requestFromMessages(messages)
	if err != nil {
		return nil, err
	}
	req.MaxTokens = opts.MaxTokens
	req.Temperature = opts.Temperature
	req.TopP = opts.TopP

	text, err := l.Chat(ctx, opts.Model, req)
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: text},
		},
	}, nil
}

// Call implements the deprecated single prompt interface of llms.Model.
func (l *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, l, prompt, options...)
}

func requestFromMessages(messages []llms.MessageContent) (req Request, err error) {
	if len(messages) != 1 {
		return req, newError(InvalidInput, nil, "Expected a single message, got %d", len(messages))
	}
	m := messages[0]
	if m.Role != llms.ChatMessageTypeHuman && m.Role != llms.ChatMessageTypeGeneric {
		return req, newError(InvalidInput, nil, "Unsupported message role %q", m.Role)
	}
	var texts []string
	for _, part := range m.Parts {
		switch p := part.(type) {
		case llms.TextContent:
			texts = append(texts, p.Text)
		case llms.BinaryContent:
			req.Attachments = append(req.Attachments, Attachment{
				Data:      p.Data,
				MediaType: p.MIMEType,
			})
		default:
			return req, newError(InvalidInput, nil, "Unsupported message part %T", part)
		}
	}
	req.Text = strings.Join(texts, "\n")
	return req, nil
}
