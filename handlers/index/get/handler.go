package get

import (
	_ "embed"
	"net/http"
)

//go:embed index.html
var page []byte

func New() Handler {
	return Handler{}
}

// Handler serves the chat page. The page lists models from /api/models and
// posts the form to /api/chat.
type Handler struct{}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}
