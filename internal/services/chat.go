package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mindocean/mindocean/internal/llm"
	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/store"
)

// ChatService runs visitor conversations against a synthesized persona.
type ChatService struct {
	store store.Store
	llm   llm.Client
}

func NewChatService(s store.Store, c llm.Client) *ChatService {
	return &ChatService{store: s, llm: c}
}

// Start opens a fresh conversation with a persona. Conversations are never
// resumed; each call creates a new row. Persona status is deliberately not
// checked here, only existence.
func (s *ChatService) Start(ctx context.Context, personaID, mode string, visitorUserID, visitorName *string) (*model.Conversation, error) {
	if mode == "" {
		mode = model.ModeGeneral
	}
	if !model.ValidMode(mode) {
		return nil, fmt.Errorf("%w: unknown conversation mode %q", model.ErrValidation, mode)
	}
	if _, err := s.store.Personas().GetByID(ctx, personaID); err != nil {
		return nil, err
	}
	return s.store.Conversations().Create(ctx, &model.Conversation{
		PersonaID:     personaID,
		VisitorUserID: visitorUserID,
		VisitorName:   visitorName,
		Mode:          mode,
	})
}

func modeContext(mode string) string {
	switch mode {
	case model.ModeComfort:
		return "The visitor is seeking emotional comfort. Be warm, empathetic, and supportive."
	case model.ModeAdvice:
		return "The visitor is seeking advice. Draw on your life experiences and values."
	case model.ModeEstate:
		return "The visitor wants to understand your estate wishes and final thoughts. Be clear and thoughtful."
	default:
		return "Have a natural conversation as yourself."
	}
}

// Send appends the visitor's message, asks the LLM for the persona's reply,
// appends it, and bumps the persona's conversation counter. The visitor's
// message is durable even when the LLM call fails; a retried turn must
// resubmit to get a response but never duplicates the original utterance.
func (s *ChatService) Send(ctx context.Context, conversationID, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: message content is required", model.ErrValidation)
	}

	conv, err := s.store.Conversations().Get(ctx, conversationID)
	if err != nil {
		return "", err
	}
	persona, err := s.store.Personas().GetByID(ctx, conv.PersonaID)
	if err != nil {
		return "", err
	}

	if _, err := s.store.Messages().Add(ctx, &model.ChatMessage{
		ConversationID: conversationID,
		Role:           model.RoleUser,
		Content:        content,
	}); err != nil {
		return "", err
	}

	history, err := s.store.Messages().List(ctx, conversationID)
	if err != nil {
		return "", err
	}
	messages := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role == model.RoleSystem {
			continue
		}
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	systemPrompt := ""
	if persona.SystemPrompt != nil && *persona.SystemPrompt != "" {
		systemPrompt = *persona.SystemPrompt
	} else {
		synthesis := ""
		if persona.PersonalitySynthesis != nil {
			synthesis = *persona.PersonalitySynthesis
		}
		systemPrompt = fmt.Sprintf("You are %s. %s Respond authentically as this person.",
			orFallback(persona.EntityName, "this person"), synthesis)
	}

	reply, err := s.llm.Complete(ctx, messages, systemPrompt+"\n\nContext: "+modeContext(conv.Mode))
	if err != nil {
		return "", err
	}

	if _, err := s.store.Messages().Add(ctx, &model.ChatMessage{
		ConversationID: conversationID,
		Role:           model.RoleAssistant,
		Content:        reply,
	}); err != nil {
		return "", err
	}
	if err := s.store.Personas().IncrementConversations(ctx, persona.PersonaID, nowUTC()); err != nil {
		return "", err
	}
	return reply, nil
}

// History returns the full ordered transcript of a conversation.
func (s *ChatService) History(ctx context.Context, conversationID string) ([]*model.ChatMessage, error) {
	if _, err := s.store.Conversations().Get(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.store.Messages().List(ctx, conversationID)
}
