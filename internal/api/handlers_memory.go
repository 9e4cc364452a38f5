package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mindocean/mindocean/internal/api/respond"
	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/services"
)

// MemoryHandler provides HTTP transport for memory operations.
type MemoryHandler struct {
	memories *services.MemoryService
}

func NewMemoryHandler(svc *services.MemoryService) *MemoryHandler {
	return &MemoryHandler{memories: svc}
}

// ListMemories GET /api/memories
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request, userID string) {
	mems, err := h.memories.List(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"memories": mems, "count": len(mems)})
}

// SearchMemories GET /api/memories/search?q=...&category=...
func (h *MemoryHandler) SearchMemories(w http.ResponseWriter, r *http.Request, userID string) {
	q := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	mems, err := h.memories.Search(r.Context(), userID, q, category)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"memories": mems, "count": len(mems)})
}

// AddMemory POST /api/memories
func (h *MemoryHandler) AddMemory(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Title         *string `json:"title,omitempty"`
		Content       string  `json:"content"`
		Category      string  `json:"category,omitempty"`
		EmotionalTone *string `json:"emotionalTone,omitempty"`
		YearApprox    *int    `json:"yearApprox,omitempty"`
		Importance    int     `json:"importance,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	m, err := h.memories.Add(r.Context(), &model.Memory{
		UserID:        userID,
		Title:         req.Title,
		Content:       req.Content,
		Category:      req.Category,
		EmotionalTone: req.EmotionalTone,
		YearApprox:    req.YearApprox,
		Importance:    req.Importance,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, m)
}

// DeleteMemory DELETE /api/memories/{memoryId}
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request, userID string) {
	memoryID := mux.Vars(r)["memoryId"]
	if err := h.memories.Delete(r.Context(), userID, memoryID); err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ImportMemories POST /api/memories/import
func (h *MemoryHandler) ImportMemories(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	res, err := h.memories.ImportFromText(r.Context(), userID, req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// GetPrompt GET /api/memories/prompt
func (h *MemoryHandler) GetPrompt(w http.ResponseWriter, r *http.Request, userID string) {
	wp, err := h.memories.Prompt(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, wp)
}
