package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Aidos2201/ReelRivals/internal/services"
	"github.com/Aidos2201/ReelRivals/pkg/middleware"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendHandler manages HTTP endpoints for the friendship protocol.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// RequestHandler sends a friend request to friendId. Re-sending for an
// existing pair is a no-op.
func (h *FriendHandler) RequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, otherID, ok := h.pairFromRequest(w, r, "friendId")
	if !ok {
		return
	}

	if err := h.Service.Request(r.Context(), userID, otherID); err != nil {
		log.WithError(err).Warn("Failed to send friend request")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request sent"})
}

// AcceptHandler accepts a pending request from senderId. Accepting a
// request that no longer exists reports success.
func (h *FriendHandler) AcceptHandler(w http.ResponseWriter, r *http.Request) {
	userID, senderID, ok := h.pairFromRequest(w, r, "senderId")
	if !ok {
		return
	}

	if err := h.Service.Accept(r.Context(), userID, senderID); err != nil {
		log.WithError(err).Error("Failed to accept friend request")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request accepted"})
}

// RejectHandler rejects a pending request from senderId.
func (h *FriendHandler) RejectHandler(w http.ResponseWriter, r *http.Request) {
	userID, senderID, ok := h.pairFromRequest(w, r, "senderId")
	if !ok {
		return
	}

	if err := h.Service.Reject(r.Context(), userID, senderID); err != nil {
		log.WithError(err).Error("Failed to reject friend request")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request rejected"})
}

// FriendsHandler returns the caller's accepted friends, resolved to users.
func (h *FriendHandler) FriendsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	friends, err := h.Service.Friends(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch friends")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// PendingHandler returns incoming pending requests with requesters resolved.
func (h *FriendHandler) PendingHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	requests, err := h.Service.Incoming(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// OutgoingHandler returns pending requests the caller has sent.
func (h *FriendHandler) OutgoingHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	requests, err := h.Service.Outgoing(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// pairFromRequest reads the caller id from claims and the counterpart id
// from the JSON body field named by key.
func (h *FriendHandler) pairFromRequest(w http.ResponseWriter, r *http.Request, key string) (primitive.ObjectID, primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	defer r.Body.Close()

	otherID, err := primitive.ObjectIDFromHex(body[key])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	userID, _ := primitive.ObjectIDFromHex(claims.UserID)
	return userID, otherID, true
}
