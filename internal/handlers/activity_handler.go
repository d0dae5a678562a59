package handlers

import (
	"net/http"
	"strconv"

	"github.com/Aidos2201/ReelRivals/internal/services"
	"github.com/Aidos2201/ReelRivals/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultFeedLimit = 50

// ActivityHandler serves the derived activity feed.
type ActivityHandler struct {
	Service *services.ActivityService
}

// NewActivityHandler creates a new instance of ActivityHandler.
func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

// FeedHandler returns the newest events, scoped to ?userId=X when given or
// global otherwise. Clients scope the global feed to friends locally.
func (h *ActivityHandler) FeedHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := defaultFeedLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	if idHex := r.URL.Query().Get("userId"); idHex != "" {
		userID, err := primitive.ObjectIDFromHex(idHex)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}
		feed, err := h.Service.FeedByUser(r.Context(), userID, limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, feed)
		return
	}

	feed, err := h.Service.Feed(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}
