package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Aidos2201/ReelRivals/internal/game"
	"github.com/Aidos2201/ReelRivals/internal/repository"
	"github.com/Aidos2201/ReelRivals/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the service-layer failure taxonomy onto HTTP
// status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidCredential):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrUsernameTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrInsufficientPool):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrNotParticipant), errors.Is(err, game.ErrNotYourTurn):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, game.ErrCompleted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, game.ErrInvalidPick), errors.Is(err, game.ErrWrongType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
