package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mindocean/mindocean/internal/api/respond"
	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/services"
)

// ProfileHandler provides HTTP transport for profile operations.
type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(svc *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: svc}
}

// GetProfile GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request, userID string) {
	p, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		// A user without a profile is a normal state, not an error.
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteJSON(w, http.StatusOK, nil)
			return
		}
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// SaveProfile PUT /api/profile
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request, userID string) {
	var patch model.Profile
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	p, err := h.profiles.Save(r.Context(), userID, &patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// GetCompleteness GET /api/profile/completeness
func (h *ProfileHandler) GetCompleteness(w http.ResponseWriter, r *http.Request, userID string) {
	rep, err := h.profiles.Completeness(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rep)
}

// GetStats GET /api/profile/stats
func (h *ProfileHandler) GetStats(w http.ResponseWriter, r *http.Request, userID string) {
	stats, err := h.profiles.Stats(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, stats)
}
