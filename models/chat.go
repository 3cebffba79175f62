package models

// ChatPostRequest is the JSON form of a chat request. Multipart requests use
// the same field names, plus zero or more "files" parts.
type ChatPostRequest struct {
	Message string `json:"message"`
	ModelID string `json:"modelId,omitempty"`
}

type ChatPostResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Attachment is a file sent alongside a chat message.
type Attachment struct {
	Name      string
	MediaType string
	Data      []byte
}
