package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mindocean/mindocean/internal/api/respond"
	"github.com/mindocean/mindocean/internal/services"
)

// ChatHandler provides HTTP transport for visitor conversations. Chat
// endpoints are public; a bearer token, when present, only identifies the
// visitor on the conversation record.
type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(svc *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: svc}
}

// StartConversation POST /api/chat/conversations
func (h *ChatHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntityID    string  `json:"entityId"`
		Mode        string  `json:"mode,omitempty"`
		VisitorName *string `json:"visitorName,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.EntityID == "" {
		respond.WriteBadRequest(w, "entityId is required")
		return
	}

	var visitorUserID *string
	if u := UserFrom(r.Context()); u != nil {
		visitorUserID = &u.UserID
	}
	conv, err := h.chat.Start(r.Context(), req.EntityID, req.Mode, visitorUserID, req.VisitorName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, conv)
}

// SendMessage POST /api/chat/conversations/{conversationId}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	reply, err := h.chat.Send(r.Context(), mux.Vars(r)["conversationId"], req.Content)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"content": reply})
}

// GetHistory GET /api/chat/conversations/{conversationId}/messages
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chat.History(r.Context(), mux.Vars(r)["conversationId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs, "count": len(msgs)})
}
