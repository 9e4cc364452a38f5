package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/store"
)

func strp(s string) *string { return &s }

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u-" + uuid.New().String()

	// Profiles: absent, then upsert, then overwrite in place.
	if _, err := s.Profiles().Get(ctx, userID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Profiles.Get on missing: want ErrNotFound, got %v", err)
	}
	p, err := s.Profiles().Upsert(ctx, &model.Profile{UserID: userID, DisplayName: strp("Ada"), LifeStory: strp("story")})
	if err != nil {
		t.Fatalf("Profiles.Upsert: %v", err)
	}
	if p.DisplayName == nil || *p.DisplayName != "Ada" {
		t.Fatalf("Profiles.Upsert returned %+v", p)
	}
	p.Location = strp("London")
	if p, err = s.Profiles().Upsert(ctx, p); err != nil || p.Location == nil || *p.Location != "London" {
		t.Fatalf("Profiles.Upsert overwrite: p=%+v err=%v", p, err)
	}

	// Memories: add, list ordering (newest first), search, delete.
	m1, err := s.Memories().Add(ctx, &model.Memory{UserID: userID, Content: "first summer by the lake", Category: model.CategoryChildhood, Importance: 7})
	if err != nil {
		t.Fatalf("Memories.Add: %v", err)
	}
	m2, err := s.Memories().Add(ctx, &model.Memory{UserID: userID, Title: strp("Graduation"), Content: "graduation day"})
	if err != nil {
		t.Fatalf("Memories.Add: %v", err)
	}
	if m2.Category != model.CategoryOther || m2.Importance != 5 {
		t.Fatalf("Memories.Add defaults: %+v", m2)
	}
	lst, err := s.Memories().List(ctx, userID)
	if err != nil || len(lst) != 2 {
		t.Fatalf("Memories.List: n=%d err=%v", len(lst), err)
	}
	if lst[0].MemoryID != m2.MemoryID {
		t.Fatalf("Memories.List order: want newest first, got %v then %v", lst[0].MemoryID, lst[1].MemoryID)
	}
	found, err := s.Memories().Search(ctx, userID, "lake", "")
	if err != nil || len(found) != 1 || found[0].MemoryID != m1.MemoryID {
		t.Fatalf("Memories.Search by text: n=%d err=%v", len(found), err)
	}
	found, err = s.Memories().Search(ctx, userID, "", model.CategoryChildhood)
	if err != nil || len(found) != 1 {
		t.Fatalf("Memories.Search by category: n=%d err=%v", len(found), err)
	}
	if err := s.Memories().Delete(ctx, userID, m1.MemoryID); err != nil {
		t.Fatalf("Memories.Delete: %v", err)
	}
	if err := s.Memories().Delete(ctx, userID, m1.MemoryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Memories.Delete twice: want ErrNotFound, got %v", err)
	}
	if err := s.Memories().Delete(ctx, "someone-else", m2.MemoryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Memories.Delete wrong owner: want ErrNotFound, got %v", err)
	}

	// Assessments accumulate, including repeated types.
	raw := json.RawMessage(`{"openness":0.8}`)
	if _, err := s.Assessments().Add(ctx, &model.Assessment{UserID: userID, Type: model.AssessmentBigFive, Results: raw}); err != nil {
		t.Fatalf("Assessments.Add: %v", err)
	}
	if _, err := s.Assessments().Add(ctx, &model.Assessment{UserID: userID, Type: model.AssessmentBigFive, Results: raw}); err != nil {
		t.Fatalf("Assessments.Add repeat: %v", err)
	}
	as, err := s.Assessments().List(ctx, userID)
	if err != nil || len(as) != 2 {
		t.Fatalf("Assessments.List: n=%d err=%v", len(as), err)
	}
	var decoded map[string]float64
	if err := json.Unmarshal(as[0].Results, &decoded); err != nil || decoded["openness"] != 0.8 {
		t.Fatalf("Assessments round-trip: %v %v", decoded, err)
	}

	// Personas: implicit building state, partial updates, lookups, lists, counter.
	if _, err := s.Personas().GetByUser(ctx, userID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Personas.GetByUser on missing: want ErrNotFound, got %v", err)
	}
	pe, err := s.Personas().Upsert(ctx, userID, model.PersonaUpdate{})
	if err != nil {
		t.Fatalf("Personas.Upsert create: %v", err)
	}
	if pe.Status != model.PersonaBuilding || pe.PersonaID == "" {
		t.Fatalf("Personas implicit create: %+v", pe)
	}
	active := model.PersonaActive
	name := "Ada's Mind"
	slug := "ada-" + uuid.New().String()[:8]
	token := uuid.New().String()
	yes := true
	pe, err = s.Personas().Upsert(ctx, userID, model.PersonaUpdate{
		Status: &active, EntityName: &name, Slug: &slug, ShareToken: &token,
		IsPublic: &yes, InCollective: &yes,
	})
	if err != nil {
		t.Fatalf("Personas.Upsert update: %v", err)
	}
	if pe.Status != model.PersonaActive || pe.Slug == nil || *pe.Slug != slug {
		t.Fatalf("Personas.Upsert fields: %+v", pe)
	}
	if got, err := s.Personas().GetByID(ctx, pe.PersonaID); err != nil || got.UserID != userID {
		t.Fatalf("Personas.GetByID: %v %v", got, err)
	}
	if got, err := s.Personas().GetBySlug(ctx, slug); err != nil || got.PersonaID != pe.PersonaID {
		t.Fatalf("Personas.GetBySlug: %v %v", got, err)
	}
	if got, err := s.Personas().GetByToken(ctx, token); err != nil || got.PersonaID != pe.PersonaID {
		t.Fatalf("Personas.GetByToken: %v %v", got, err)
	}
	if lst, err := s.Personas().ListCollective(ctx); err != nil || len(lst) == 0 {
		t.Fatalf("Personas.ListCollective: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Personas().ListPublic(ctx); err != nil || len(lst) == 0 {
		t.Fatalf("Personas.ListPublic: n=%d err=%v", len(lst), err)
	}

	now := time.Now()
	if err := s.Personas().IncrementConversations(ctx, pe.PersonaID, now); err != nil {
		t.Fatalf("IncrementConversations: %v", err)
	}
	if err := s.Personas().IncrementConversations(ctx, pe.PersonaID, now); err != nil {
		t.Fatalf("IncrementConversations: %v", err)
	}
	pe, err = s.Personas().GetByUser(ctx, userID)
	if err != nil || pe.TotalConversations != 2 || pe.LastContactedAt == nil {
		t.Fatalf("counter after two increments: %+v err=%v", pe, err)
	}
	if err := s.Personas().IncrementConversations(ctx, "missing-persona", now); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("IncrementConversations missing: want ErrNotFound, got %v", err)
	}

	// Conversations and messages: creation, defaults, ordered history.
	conv, err := s.Conversations().Create(ctx, &model.Conversation{PersonaID: pe.PersonaID, VisitorName: strp("guest")})
	if err != nil {
		t.Fatalf("Conversations.Create: %v", err)
	}
	if conv.Mode != model.ModeGeneral || conv.ConversationID == "" {
		t.Fatalf("Conversations defaults: %+v", conv)
	}
	if got, err := s.Conversations().Get(ctx, conv.ConversationID); err != nil || got.PersonaID != pe.PersonaID {
		t.Fatalf("Conversations.Get: %v %v", got, err)
	}
	if _, err := s.Conversations().Get(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Conversations.Get missing: want ErrNotFound, got %v", err)
	}

	for _, turn := range []struct{ role, content string }{
		{model.RoleUser, "hello"},
		{model.RoleAssistant, "hi there"},
		{model.RoleUser, "how are you?"},
	} {
		if _, err := s.Messages().Add(ctx, &model.ChatMessage{ConversationID: conv.ConversationID, Role: turn.role, Content: turn.content}); err != nil {
			t.Fatalf("Messages.Add: %v", err)
		}
	}
	msgs, err := s.Messages().List(ctx, conv.ConversationID)
	if err != nil || len(msgs) != 3 {
		t.Fatalf("Messages.List: n=%d err=%v", len(msgs), err)
	}
	if msgs[0].Content != "hello" || msgs[1].Content != "hi there" || msgs[2].Content != "how are you?" {
		t.Fatalf("Messages order: %v %v %v", msgs[0].Content, msgs[1].Content, msgs[2].Content)
	}
}
