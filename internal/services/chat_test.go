package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mindocean/mindocean/internal/model"
)

func seedPersona(t *testing.T, st *fakeStore, userID string, u model.PersonaUpdate) *model.Persona {
	t.Helper()
	p, err := st.Personas().Upsert(context.Background(), userID, u)
	require.NoError(t, err)
	return p
}

func TestChatStart(t *testing.T) {
	st := newFakeStore()
	svc := NewChatService(st, &fakeLLM{})
	ctx := context.Background()

	building := model.PersonaBuilding
	p := seedPersona(t, st, "owner", model.PersonaUpdate{Status: &building})

	_, err := svc.Start(ctx, "missing-persona", "", nil, nil)
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.Start(ctx, p.PersonaID, "seance", nil, nil)
	require.ErrorIs(t, err, model.ErrValidation)

	// A persona that is still building can be chatted with; only existence
	// is checked.
	conv, err := svc.Start(ctx, p.PersonaID, "", strp("visitor-1"), strp("Guest"))
	require.NoError(t, err)
	require.Equal(t, model.ModeGeneral, conv.Mode)
	require.Equal(t, "visitor-1", *conv.VisitorUserID)

	// Starting again never resumes the prior session.
	conv2, err := svc.Start(ctx, p.PersonaID, model.ModeComfort, nil, nil)
	require.NoError(t, err)
	require.NotEqual(t, conv.ConversationID, conv2.ConversationID)
	require.Equal(t, model.ModeComfort, conv2.Mode)
}

func TestChatSendFullTurn(t *testing.T) {
	st := newFakeStore()
	mock := &fakeLLM{responses: []string{"Hello, dear visitor."}}
	svc := NewChatService(st, mock)
	ctx := context.Background()

	active := model.PersonaActive
	p := seedPersona(t, st, "owner", model.PersonaUpdate{
		Status:       &active,
		EntityName:   strp("Ada"),
		SystemPrompt: strp("You are Ada, be precise."),
	})
	conv, err := svc.Start(ctx, p.PersonaID, model.ModeComfort, nil, nil)
	require.NoError(t, err)

	reply, err := svc.Send(ctx, conv.ConversationID, "Hello Ada")
	require.NoError(t, err)
	require.Equal(t, "Hello, dear visitor.", reply)

	// Stored prompt plus the comfort-mode framing.
	require.Equal(t, "You are Ada, be precise.\n\nContext: The visitor is seeking emotional comfort. Be warm, empathetic, and supportive.",
		mock.calls[0].systemPrompt)
	require.Len(t, mock.calls[0].messages, 1)
	require.Equal(t, "Hello Ada", mock.calls[0].messages[0].Content)

	history, err := svc.History(ctx, conv.ConversationID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, model.RoleUser, history[0].Role)
	require.Equal(t, model.RoleAssistant, history[1].Role)

	p2, err := st.Personas().GetByUser(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, 1, p2.TotalConversations)
	require.NotNil(t, p2.LastContactedAt)

	// Second turn sends the whole transcript.
	_, err = svc.Send(ctx, conv.ConversationID, "Tell me more")
	require.NoError(t, err)
	require.Len(t, mock.calls[1].messages, 3)
}

func TestChatSendFallbackSystemPrompt(t *testing.T) {
	st := newFakeStore()
	mock := &fakeLLM{responses: []string{"ok"}}
	svc := NewChatService(st, mock)
	ctx := context.Background()

	active := model.PersonaActive
	p := seedPersona(t, st, "owner", model.PersonaUpdate{
		Status:               &active,
		EntityName:           strp("Ada"),
		PersonalitySynthesis: strp("Curious and exact."),
	})
	conv, err := svc.Start(ctx, p.PersonaID, "", nil, nil)
	require.NoError(t, err)

	_, err = svc.Send(ctx, conv.ConversationID, "hi")
	require.NoError(t, err)
	require.Equal(t, "You are Ada. Curious and exact. Respond authentically as this person.\n\nContext: Have a natural conversation as yourself.",
		mock.calls[0].systemPrompt)
}

func TestChatSendUserMessageDurableOnLLMFailure(t *testing.T) {
	st := newFakeStore()
	upstream := errors.New("provider down")
	svc := NewChatService(st, &fakeLLM{errs: []error{upstream}})
	ctx := context.Background()

	active := model.PersonaActive
	p := seedPersona(t, st, "owner", model.PersonaUpdate{Status: &active})
	conv, err := svc.Start(ctx, p.PersonaID, "", nil, nil)
	require.NoError(t, err)

	_, err = svc.Send(ctx, conv.ConversationID, "are you there?")
	require.ErrorIs(t, err, upstream)

	history, err := st.Messages().List(ctx, conv.ConversationID)
	require.NoError(t, err)
	require.Len(t, history, 1, "the visitor's message survives the failed turn")
	require.Equal(t, model.RoleUser, history[0].Role)
	require.Equal(t, "are you there?", history[0].Content)

	p2, err := st.Personas().GetByUser(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, 0, p2.TotalConversations, "failed turns do not bump the counter")
}

func TestChatSendNotFound(t *testing.T) {
	svc := NewChatService(newFakeStore(), &fakeLLM{})

	_, err := svc.Send(context.Background(), "missing-conversation", "hello")
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.Send(context.Background(), "missing-conversation", "  ")
	require.ErrorIs(t, err, model.ErrValidation)
}
