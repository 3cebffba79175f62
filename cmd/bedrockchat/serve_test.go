package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/bedrockchat/bedrock"
	"github.com/a-h/bedrockchat/catalog"
	"github.com/a-h/bedrockchat/models"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type staticInvoker string

func (s staticInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	return &bedrockruntime.InvokeModelOutput{Body: []byte(s)}, nil
}

func TestRoutes(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := catalog.Default()
	llm := bedrock.New(staticInvoker(`{"content":[{"type":"text","text":"Hi there"}]}`), c, "anthropic.claude-3-haiku-20240307-v1:0")
	s := httptest.NewServer(newMux(log, c, llm, 1<<20))
	defer s.Close()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedBody   string
		expectedAllow  string
	}{
		{
			name:           "chat returns the model response",
			method:         http.MethodPost,
			path:           "/api/chat",
			body:           `{"message":"Hello","modelId":"anthropic.claude-3-haiku-20240307-v1:0"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"response":"Hi there"`,
		},
		{
			name:           "chat rejects GET with a JSON 405",
			method:         http.MethodGet,
			path:           "/api/chat",
			expectedStatus: http.StatusMethodNotAllowed,
			expectedBody:   `"error":"Method GET Not Allowed"`,
			expectedAllow:  "POST",
		},
		{
			name:           "models are listed",
			method:         http.MethodGet,
			path:           "/api/models",
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":"amazon.titan-text-express-v1"`,
		},
		{
			name:           "the index page is served",
			method:         http.MethodGet,
			path:           "/",
			expectedStatus: http.StatusOK,
			expectedBody:   "<title>Amazon Bedrock Chat</title>",
		},
		{
			name:           "unknown paths are not found",
			method:         http.MethodGet,
			path:           "/missing",
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, s.URL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("failed to create request: %v", err)
			}
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, resp.StatusCode, body)
			}
			if !strings.Contains(string(body), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, body)
			}
			if allow := resp.Header.Get("Allow"); allow != tt.expectedAllow {
				t.Errorf("expected Allow %q, got %q", tt.expectedAllow, allow)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	c, err := loadCatalog("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Models()) != len(catalog.Default().Models()) {
		t.Errorf("expected the default catalog")
	}

	name := filepath.Join(t.TempDir(), "models.yaml")
	if err = os.WriteFile(name, []byte("models:\n  - id: amazon.titan-text-lite-v1\n    name: Titan Text Lite\n    provider: amazon\n"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	c, err = loadCatalog(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Get("amazon.titan-text-lite-v1"); !ok {
		t.Error("expected the file catalog to be loaded")
	}
}

func TestReadAttachments(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(name, []byte("png"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	attachments, err := readAttachments([]string{name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(attachments))
	}
	a := attachments[0]
	if a.Name != "photo.png" || a.MediaType != "image/png" || string(a.Data) != "png" {
		t.Errorf("unexpected attachment: %+v", a)
	}
	if _, err = readAttachments([]string{filepath.Join(dir, "missing.png")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestChatResponseJSON(t *testing.T) {
	// The web page and clients read the "response" and "error" keys.
	b, err := json.Marshal(models.ChatPostResponse{Response: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"response":"x"}` {
		t.Errorf("unexpected JSON: %s", b)
	}
	b, err = json.Marshal(models.ErrorResponse{Error: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"error":"x"}` {
		t.Errorf("unexpected JSON: %s", b)
	}
}
