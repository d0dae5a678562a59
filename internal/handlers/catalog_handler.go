package handlers

import (
	"net/http"
	"strconv"

	"github.com/Aidos2201/ReelRivals/internal/catalog"
	"github.com/Aidos2201/ReelRivals/pkg/middleware"
	"github.com/gorilla/mux"
)

// CatalogHandler proxies read-only movie metadata lookups.
type CatalogHandler struct {
	Provider catalog.Provider
}

// NewCatalogHandler creates a new instance of CatalogHandler.
func NewCatalogHandler(provider catalog.Provider) *CatalogHandler {
	return &CatalogHandler{Provider: provider}
}

// SearchHandler searches the catalog by title.
func (h *CatalogHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserFromContext(r.Context()) == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Missing query", http.StatusBadRequest)
		return
	}

	movies, err := h.Provider.Search(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// MovieHandler fetches one movie's metadata.
func (h *CatalogHandler) MovieHandler(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserFromContext(r.Context()) == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid movie ID", http.StatusBadRequest)
		return
	}

	movie, err := h.Provider.Movie(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}
