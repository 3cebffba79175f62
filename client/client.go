package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/a-h/bedrockchat/models"
	"github.com/a-h/jsonapi"
)

func New(baseURL, apiKey string) Client {
	return Client{
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type Client struct {
	baseURL string
	apiKey  string
}

// ChatPost sends a message without attachments as JSON.
func (c Client) ChatPost(ctx context.Context, req models.ChatPostRequest) (resp models.ChatPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("api", "chat").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.ChatPostRequest, models.ChatPostResponse](ctx, url, req, jsonapi.WithRequestHeader("Authorization", c.apiKey))
}

// ChatPostMultipart sends a message and its attachments as a multipart form.
func (c Client) ChatPostMultipart(ctx context.Context, req models.ChatPostRequest, attachments []models.Attachment) (resp models.ChatPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("api", "chat").String()
	if err != nil {
		return resp, err
	}
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	if err = mw.WriteField("message", req.Message); err != nil {
		return resp, fmt.Errorf("failed to write message field: %w", err)
	}
	if req.ModelID != "" {
		if err = mw.WriteField("modelId", req.ModelID); err != nil {
			return resp, fmt.Errorf("failed to write modelId field: %w", err)
		}
	}
	for _, a := range attachments {
		if err = writeAttachment(mw, a); err != nil {
			return resp, fmt.Errorf("failed to write attachment %s: %w", a.Name, err)
		}
	}
	if err = mw.Close(); err != nil {
		return resp, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return resp, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	err = c.do(httpReq, &resp)
	return resp, err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeAttachment(mw *multipart.Writer, a models.Attachment) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(a.Name)))
	mediaType := a.MediaType
	if mediaType == "" {
		mediaType = http.DetectContentType(a.Data)
	}
	h.Set("Content-Type", mediaType)
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = w.Write(a.Data)
	return err
}

func (c Client) ModelsGet(ctx context.Context) (resp models.ModelsGetResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("api", "models").String()
	if err != nil {
		return resp, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return resp, fmt.Errorf("failed to create request: %w", err)
	}
	err = c.do(httpReq, &resp)
	return resp, err
}

func (c Client) do(req *http.Request, resp any) (err error) {
	res, err := jsonapi.Raw(req, jsonapi.WithRequestHeader("Authorization", c.apiKey))
	if err != nil {
		return fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return jsonapi.InvalidStatusError{
			Status: res.StatusCode,
			Body:   string(body),
		}
	}
	if err = json.NewDecoder(res.Body).Decode(resp); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
