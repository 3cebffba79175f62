package get

import (
	"log/slog"
	"net/http"

	"github.com/a-h/bedrockchat/catalog"
	"github.com/a-h/bedrockchat/models"
	"github.com/a-h/respond"
)

func New(log *slog.Logger, c *catalog.Catalog) Handler {
	return Handler{
		log:     log,
		catalog: c,
	}
}

type Handler struct {
	log     *slog.Logger
	catalog *catalog.Catalog
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var resp models.ModelsGetResponse
	for _, m := range h.catalog.Models() {
		resp.Models = append(resp.Models, models.Model{
			ID:       m.ID,
			Name:     m.Name,
			Provider: string(m.Provider),
		})
	}
	h.log.Debug("listing models", slog.Int("count", len(resp.Models)))
	respond.WithJSON(w, resp, http.StatusOK)
}
