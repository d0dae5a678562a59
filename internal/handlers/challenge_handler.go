package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Aidos2201/ReelRivals/internal/services"
	"github.com/Aidos2201/ReelRivals/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChallengeHandler manages HTTP endpoints for the challenge lifecycle and
// in-game actions.
type ChallengeHandler struct {
	Service *services.ChallengeService
}

// NewChallengeHandler initializes a new ChallengeHandler.
func NewChallengeHandler(service *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{Service: service}
}

// CreateHandler opens a new challenge against a recipient.
func (h *ChallengeHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var body struct {
		RecipientID string `json:"recipient_id"`
		Type        string `json:"type"`
		Size        int    `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	recipientID, err := primitive.ObjectIDFromHex(body.RecipientID)
	if err != nil {
		http.Error(w, "Invalid recipient ID", http.StatusBadRequest)
		return
	}

	challenge, err := h.Service.Create(r.Context(), userID, recipientID, body.Type, body.Size)
	if err != nil {
		log.WithError(err).Warn("Failed to create challenge")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, challenge)
}

// ListHandler returns the caller's challenges (or ?userId=X's, which is the
// same data since a poller may ask on behalf of either participant).
func (h *ChallengeHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if idHex := r.URL.Query().Get("userId"); idHex != "" {
		if id, err := primitive.ObjectIDFromHex(idHex); err == nil {
			userID = id
		}
	}

	challenges, err := h.Service.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenges)
}

// UpdateHandler applies a last-writer-wins partial update (PUT).
func (h *ChallengeHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid challenge ID", http.StatusBadRequest)
		return
	}

	var patch services.ChallengePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	challenge, err := h.Service.ApplyPatch(r.Context(), id, userID, patch)
	if err != nil {
		log.WithError(err).Warn("Failed to update challenge")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

// DeleteHandler abandons a challenge outright (?id=X).
func (h *ChallengeHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid challenge ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(r.Context(), id, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Challenge deleted"})
}

// PickHandler applies one bracket pairing choice.
func (h *ChallengeHandler) PickHandler(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, ok := h.actionIDs(w, r)
	if !ok {
		return
	}

	var body struct {
		WinnerID int `json:"winner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	challenge, err := h.Service.PickWinner(r.Context(), challengeID, userID, body.WinnerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

// GuessHandler submits one quiz guess.
func (h *ChallengeHandler) GuessHandler(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, ok := h.actionIDs(w, r)
	if !ok {
		return
	}

	var body struct {
		MovieID int `json:"movie_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	challenge, correct, err := h.Service.Guess(r.Context(), challengeID, userID, body.MovieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"correct":   correct,
		"challenge": challenge,
	})
}

// SkipHandler gives up on the current quiz item.
func (h *ChallengeHandler) SkipHandler(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, ok := h.actionIDs(w, r)
	if !ok {
		return
	}

	challenge, err := h.Service.Skip(r.Context(), challengeID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

// RankingHandler stores a tier list ranking and completes the challenge.
func (h *ChallengeHandler) RankingHandler(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, ok := h.actionIDs(w, r)
	if !ok {
		return
	}

	var body struct {
		Ranking []int `json:"ranking"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	challenge, err := h.Service.SubmitRanking(r.Context(), challengeID, userID, body.Ranking)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

func (h *ChallengeHandler) actionIDs(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, primitive.ObjectID, bool) {
	userID, ok := callerID(w, r)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	challengeID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid challenge ID", http.StatusBadRequest)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return userID, challengeID, true
}

func callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	return userID, true
}
