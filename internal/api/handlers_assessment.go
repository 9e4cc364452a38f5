package api

import (
	"encoding/json"
	"net/http"

	"github.com/mindocean/mindocean/internal/api/respond"
	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/services"
)

// AssessmentHandler provides HTTP transport for assessment operations.
type AssessmentHandler struct {
	assessments *services.AssessmentService
}

func NewAssessmentHandler(svc *services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: svc}
}

// ListAssessments GET /api/assessments
func (h *AssessmentHandler) ListAssessments(w http.ResponseWriter, r *http.Request, userID string) {
	as, err := h.assessments.List(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"assessments": as, "count": len(as)})
}

// SaveAssessment POST /api/assessments
func (h *AssessmentHandler) SaveAssessment(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		AssessmentType string          `json:"assessmentType"`
		Results        json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	a, err := h.assessments.Save(r.Context(), userID, model.AssessmentType(req.AssessmentType), req.Results)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, a)
}
