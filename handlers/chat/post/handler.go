package post

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/bedrockchat/auth"
	"github.com/a-h/bedrockchat/bedrock"
	"github.com/a-h/bedrockchat/models"
	"github.com/a-h/respond"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

func New(log *slog.Logger, llm llms.Model, maxBodyBytes int64) Handler {
	return Handler{
		log:          log,
		llm:          llm,
		maxBodyBytes: maxBodyBytes,
	}
}

type Handler struct {
	log          *slog.Logger
	llm          llms.Model
	maxBodyBytes int64
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respond.WithJSON(w, models.ErrorResponse{Error: fmt.Sprintf("Method %s Not Allowed", r.Method)}, http.StatusMethodNotAllowed)
		return
	}
	log := h.log.With(slog.String("requestId", uuid.NewString()))

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	form, err := parseForm(r)
	if err != nil {
		writeError(log, w, err)
		return
	}
	if form.Message == "" {
		writeError(log, w, &bedrock.Error{Kind: bedrock.InvalidInput, Message: "Message is required"})
		return
	}

	// If this is a test API key, don't use the LLM.
	if user, ok := auth.GetUser(r); ok && user == auth.TestUserNoLLM {
		respond.WithJSON(w, models.ChatPostResponse{Response: TestMessage}, http.StatusOK)
		return
	}

	parts := make([]llms.ContentPart, 0, len(form.Attachments)+1)
	parts = append(parts, llms.TextPart(form.Message))
	for _, a := range form.Attachments {
		parts = append(parts, llms.BinaryPart(a.MediaType, a.Data))
	}
	var opts []llms.CallOption
	if form.ModelID != "" {
		opts = append(opts, llms.WithModel(form.ModelID))
	}

	log.Info("generating content", slog.String("modelId", form.ModelID), slog.Int("attachments", len(form.Attachments)))
	resp, err := h.llm.GenerateContent(r.Context(), []llms.MessageContent{
		{Role: llms.ChatMessageTypeHuman, Parts: parts},
	}, opts...)
	if err != nil {
		writeError(log, w, err)
		return
	}
	if len(resp.Choices) == 0 {
		writeError(log, w, &bedrock.Error{Kind: bedrock.UpstreamError, Message: "The model returned no choices"})
		return
	}

	respond.WithJSON(w, models.ChatPostResponse{Response: resp.Choices[0].Content}, http.StatusOK)
}

func writeError(log *slog.Logger, w http.ResponseWriter, err error) {
	msg, status := err.Error(), http.StatusInternalServerError
	var be *bedrock.Error
	if errors.As(err, &be) {
		msg, status = be.Message, be.Kind.StatusCode()
	}
	log.Error("chat request failed", slog.Int("status", status), slog.Any("error", err))
	respond.WithJSON(w, models.ErrorResponse{Error: msg}, status)
}

const TestMessage = `Hello!

I'm a test message.

I'm here to help you test your integration with the API.

If you can see me, then your integration is working!`
