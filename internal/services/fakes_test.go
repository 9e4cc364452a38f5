package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindocean/mindocean/internal/llm"
	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/store"
)

// fakeLLM replays scripted responses and records every request it sees.
type fakeLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     []fakeLLMCall
}

type fakeLLMCall struct {
	messages     []llm.Message
	systemPrompt string
}

func (f *fakeLLM) Complete(ctx context.Context, messages []llm.Message, systemPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeLLMCall{messages: messages, systemPrompt: systemPrompt})
	n := len(f.calls) - 1
	if n < len(f.errs) && f.errs[n] != nil {
		return "", f.errs[n]
	}
	if n < len(f.responses) {
		return f.responses[n], nil
	}
	if len(f.responses) > 0 {
		return f.responses[len(f.responses)-1], nil
	}
	return "", nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeStore is an in-memory store.Store good enough for service tests.
type fakeStore struct {
	mu            sync.Mutex
	profiles      map[string]*model.Profile
	memories      []*model.Memory
	assessments   []*model.Assessment
	personas      map[string]*model.Persona // keyed by user id
	conversations map[string]*model.Conversation
	messages      []*model.ChatMessage

	assessmentLists int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:      map[string]*model.Profile{},
		personas:      map[string]*model.Persona{},
		conversations: map[string]*model.Conversation{},
	}
}

func (f *fakeStore) Profiles() store.Profiles           { return (*fakeProfiles)(f) }
func (f *fakeStore) Memories() store.Memories           { return (*fakeMemories)(f) }
func (f *fakeStore) Assessments() store.Assessments     { return (*fakeAssessments)(f) }
func (f *fakeStore) Personas() store.Personas           { return (*fakePersonas)(f) }
func (f *fakeStore) Conversations() store.Conversations { return (*fakeConversations)(f) }
func (f *fakeStore) Messages() store.Messages           { return (*fakeMessages)(f) }

type fakeProfiles fakeStore

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Upsert(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	if cp.CreationTime.IsZero() {
		cp.CreationTime = time.Now().UTC()
	}
	cp.UpdateTime = time.Now().UTC()
	f.profiles[p.UserID] = &cp
	out := cp
	return &out, nil
}

type fakeMemories fakeStore

func (f *fakeMemories) List(ctx context.Context, userID string) ([]*model.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Memory
	for i := len(f.memories) - 1; i >= 0; i-- {
		if f.memories[i].UserID == userID {
			out = append(out, f.memories[i])
		}
	}
	return out, nil
}

func (f *fakeMemories) Search(ctx context.Context, userID, query, category string) ([]*model.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Memory
	for i := len(f.memories) - 1; i >= 0; i-- {
		m := f.memories[i]
		if m.UserID != userID {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		if query != "" {
			title := ""
			if m.Title != nil {
				title = *m.Title
			}
			if !strings.Contains(strings.ToLower(m.Content), strings.ToLower(query)) &&
				!strings.Contains(strings.ToLower(title), strings.ToLower(query)) {
				continue
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMemories) Add(ctx context.Context, m *model.Memory) (*model.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	cp.MemoryID = uuid.New().String()
	if cp.Category == "" {
		cp.Category = model.CategoryOther
	}
	if cp.Importance == 0 {
		cp.Importance = 5
	}
	cp.CreationTime = time.Now().UTC()
	f.memories = append(f.memories, &cp)
	out := cp
	return &out, nil
}

func (f *fakeMemories) Delete(ctx context.Context, userID, memoryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.memories {
		if m.UserID == userID && m.MemoryID == memoryID {
			f.memories = append(f.memories[:i], f.memories[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

type fakeAssessments fakeStore

func (f *fakeAssessments) List(ctx context.Context, userID string) ([]*model.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assessmentLists++
	var out []*model.Assessment
	for i := len(f.assessments) - 1; i >= 0; i-- {
		if f.assessments[i].UserID == userID {
			out = append(out, f.assessments[i])
		}
	}
	return out, nil
}

func (f *fakeAssessments) Add(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	cp.AssessmentID = uuid.New().String()
	cp.CompletedAt = time.Now().UTC()
	f.assessments = append(f.assessments, &cp)
	out := cp
	return &out, nil
}

type fakePersonas fakeStore

func (f *fakePersonas) GetByUser(ctx context.Context, userID string) (*model.Persona, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.personas[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePersonas) GetByID(ctx context.Context, personaID string) (*model.Persona, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.personas {
		if p.PersonaID == personaID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakePersonas) GetBySlug(ctx context.Context, slug string) (*model.Persona, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.personas {
		if p.Slug != nil && *p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakePersonas) GetByToken(ctx context.Context, token string) (*model.Persona, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.personas {
		if p.ShareToken != nil && *p.ShareToken == token {
			cp := *p
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakePersonas) Upsert(ctx context.Context, userID string, u model.PersonaUpdate) (*model.Persona, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.personas[userID]
	if !ok {
		p = &model.Persona{
			PersonaID:    uuid.New().String(),
			UserID:       userID,
			Status:       model.PersonaBuilding,
			CreationTime: time.Now().UTC(),
		}
		f.personas[userID] = p
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.IsPublic != nil {
		p.IsPublic = *u.IsPublic
	}
	if u.InCollective != nil {
		p.InCollective = *u.InCollective
	}
	if u.EntityName != nil {
		p.EntityName = u.EntityName
	}
	if u.EntityBio != nil {
		p.EntityBio = u.EntityBio
	}
	if u.PersonalitySynthesis != nil {
		p.PersonalitySynthesis = u.PersonalitySynthesis
	}
	if u.SystemPrompt != nil {
		p.SystemPrompt = u.SystemPrompt
	}
	if u.Slug != nil {
		p.Slug = u.Slug
	}
	if u.ShareToken != nil {
		p.ShareToken = u.ShareToken
	}
	if u.JoinedCollectiveAt != nil {
		p.JoinedCollectiveAt = u.JoinedCollectiveAt
	}
	if u.CollectiveJoinReason != nil {
		p.CollectiveJoinReason = u.CollectiveJoinReason
	}
	cp := *p
	return &cp, nil
}

func (f *fakePersonas) list(filter func(*model.Persona) bool) []*model.Persona {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Persona
	for _, p := range f.personas {
		if filter(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	// newest first, matching the relational implementations
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreationTime.After(out[i].CreationTime) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func (f *fakePersonas) ListCollective(ctx context.Context) ([]*model.Persona, error) {
	return f.list(func(p *model.Persona) bool {
		return p.InCollective && p.Status == model.PersonaActive
	}), nil
}

func (f *fakePersonas) ListPublic(ctx context.Context) ([]*model.Persona, error) {
	return f.list(func(p *model.Persona) bool {
		return p.IsPublic && p.Status == model.PersonaActive
	}), nil
}

func (f *fakePersonas) IncrementConversations(ctx context.Context, personaID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.personas {
		if p.PersonaID == personaID {
			p.TotalConversations++
			p.LastContactedAt = &at
			return nil
		}
	}
	return model.ErrNotFound
}

type fakeConversations fakeStore

func (f *fakeConversations) Create(ctx context.Context, c *model.Conversation) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	cp.ConversationID = uuid.New().String()
	if cp.Mode == "" {
		cp.Mode = model.ModeGeneral
	}
	cp.CreationTime = time.Now().UTC()
	f.conversations[cp.ConversationID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeConversations) Get(ctx context.Context, id string) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type fakeMessages fakeStore

func (f *fakeMessages) List(ctx context.Context, conversationID string) ([]*model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ChatMessage
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMessages) Add(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	cp.MessageID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	cp.CreationTime = time.Now().UTC()
	f.messages = append(f.messages, &cp)
	out := cp
	return &out, nil
}
