package store

import (
	"context"
	"time"

	"github.com/mindocean/mindocean/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Profiles() Profiles
	Memories() Memories
	Assessments() Assessments
	Personas() Personas
	Conversations() Conversations
	Messages() Messages
}

type Profiles interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Upsert(ctx context.Context, p *model.Profile) (*model.Profile, error)
}

type Memories interface {
	List(ctx context.Context, userID string) ([]*model.Memory, error)
	Search(ctx context.Context, userID, query, category string) ([]*model.Memory, error)
	Add(ctx context.Context, m *model.Memory) (*model.Memory, error)
	Delete(ctx context.Context, userID, memoryID string) error
}

type Assessments interface {
	List(ctx context.Context, userID string) ([]*model.Assessment, error)
	Add(ctx context.Context, a *model.Assessment) (*model.Assessment, error)
}

type Personas interface {
	GetByUser(ctx context.Context, userID string) (*model.Persona, error)
	GetByID(ctx context.Context, personaID string) (*model.Persona, error)
	GetBySlug(ctx context.Context, slug string) (*model.Persona, error)
	GetByToken(ctx context.Context, token string) (*model.Persona, error)
	// Upsert creates the user's persona in the building state when absent,
	// then applies the non-nil fields of upd.
	Upsert(ctx context.Context, userID string, upd model.PersonaUpdate) (*model.Persona, error)
	ListCollective(ctx context.Context) ([]*model.Persona, error)
	ListPublic(ctx context.Context) ([]*model.Persona, error)
	// IncrementConversations atomically bumps the conversation counter and
	// stamps last-contacted; it must not be a read-modify-write.
	IncrementConversations(ctx context.Context, personaID string, at time.Time) error
}

type Conversations interface {
	Create(ctx context.Context, c *model.Conversation) (*model.Conversation, error)
	Get(ctx context.Context, conversationID string) (*model.Conversation, error)
}

type Messages interface {
	List(ctx context.Context, conversationID string) ([]*model.ChatMessage, error)
	Add(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error)
}
