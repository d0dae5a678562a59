package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/Aidos2201/ReelRivals/internal/services"
	"github.com/Aidos2201/ReelRivals/pkg/middleware"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntryHandler handles HTTP requests for the watch ledger.
type EntryHandler struct {
	Service *services.EntryService
}

// NewEntryHandler creates a new instance of EntryHandler.
func NewEntryHandler(service *services.EntryService) *EntryHandler {
	return &EntryHandler{Service: service}
}

// UpsertEntryHandler inserts or replaces the caller's entry for a movie.
func (h *EntryHandler) UpsertEntryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var entry models.MovieEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Entries are only ever written by their owner.
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)
	entry.UserID = userID

	saved, err := h.Service.Upsert(r.Context(), &entry)
	if err != nil {
		log.WithError(err).Warn("Failed to upsert entry")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// GetEntriesHandler returns entries for ?userId=X, or the whole ledger when
// the filter is omitted (clients derive friend entries from it).
func (h *EntryHandler) GetEntriesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	idHex := r.URL.Query().Get("userId")
	if idHex == "" {
		entries, err := h.Service.GetAll(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
		return
	}

	userID, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	entries, err := h.Service.GetByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// DeleteEntryHandler removes the caller's entry by composite key.
func (h *EntryHandler) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	movieID, err := strconv.Atoi(r.URL.Query().Get("movieId"))
	if err != nil {
		http.Error(w, "Invalid movie ID", http.StatusBadRequest)
		return
	}

	userID, _ := primitive.ObjectIDFromHex(claims.UserID)
	if err := h.Service.Delete(r.Context(), userID, movieID); err != nil {
		log.WithError(err).Error("Failed to delete entry")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted"})
}
