package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mindocean/mindocean/internal/api/respond"
	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/services"
)

// PersonaHandler provides HTTP transport for mind entity operations.
type PersonaHandler struct {
	personas *services.PersonaService
}

func NewPersonaHandler(svc *services.PersonaService) *PersonaHandler {
	return &PersonaHandler{personas: svc}
}

// GetEntity GET /api/entity
func (h *PersonaHandler) GetEntity(w http.ResponseWriter, r *http.Request, userID string) {
	p, err := h.personas.GetByUser(r.Context(), userID)
	if err != nil {
		// Not having synthesized yet is a normal state.
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteJSON(w, http.StatusOK, nil)
			return
		}
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// Synthesize POST /api/entity/synthesize
func (h *PersonaHandler) Synthesize(w http.ResponseWriter, r *http.Request, userID string) {
	res, err := h.personas.Synthesize(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// UpdateSettings PATCH /api/entity/settings
func (h *PersonaHandler) UpdateSettings(w http.ResponseWriter, r *http.Request, userID string) {
	var req services.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	p, err := h.personas.UpdateSettings(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// GenerateShareLink POST /api/entity/share-link
func (h *PersonaHandler) GenerateShareLink(w http.ResponseWriter, r *http.Request, userID string) {
	link, err := h.personas.GenerateShareLink(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, link)
}

// GetMindByID GET /api/minds/{personaId}
func (h *PersonaHandler) GetMindByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.personas.GetByID(r.Context(), mux.Vars(r)["personaId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// GetMindBySlug GET /api/minds/slug/{slug}
func (h *PersonaHandler) GetMindBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.personas.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// GetMindByToken GET /api/minds/token/{token}
func (h *PersonaHandler) GetMindByToken(w http.ResponseWriter, r *http.Request) {
	p, err := h.personas.GetByShareToken(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// BrowseOcean GET /api/ocean
func (h *PersonaHandler) BrowseOcean(w http.ResponseWriter, r *http.Request) {
	view, err := h.personas.Ocean(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, view)
}
