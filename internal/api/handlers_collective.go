package api

import (
	"encoding/json"
	"net/http"

	"github.com/mindocean/mindocean/internal/api/respond"
	"github.com/mindocean/mindocean/internal/services"
)

// CollectiveHandler provides HTTP transport for collective deliberation.
type CollectiveHandler struct {
	collective *services.CollectiveService
}

func NewCollectiveHandler(svc *services.CollectiveService) *CollectiveHandler {
	return &CollectiveHandler{collective: svc}
}

// GetMinds GET /api/collective/minds
func (h *CollectiveHandler) GetMinds(w http.ResponseWriter, r *http.Request) {
	minds, err := h.collective.GetMinds(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"minds": minds, "count": len(minds)})
}

// Consult POST /api/collective/consult
func (h *CollectiveHandler) Consult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	res, err := h.collective.Consult(r.Context(), req.Question)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}
