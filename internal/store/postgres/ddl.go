package postgres

import (
	"context"
	"database/sql"
)

// Schema for the Postgres store. Deployments normally apply this via
// migrations; EnsureSchema exists for dev and test environments.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id             TEXT PRIMARY KEY,
    display_name        TEXT,
    birth_year          INTEGER,
    location            TEXT,
    occupation          TEXT,
    life_story          TEXT,
    core_values         TEXT,
    beliefs             TEXT,
    likes_and_joys      TEXT,
    dislikes_and_fears  TEXT,
    communication_style TEXT,
    humor_style         TEXT,
    important_people    TEXT,
    legacy_message      TEXT,
    estate_wishes       TEXT,
    creation_time       TIMESTAMPTZ NOT NULL DEFAULT now(),
    update_time         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS memories (
    memory_id      TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL,
    title          TEXT,
    content        TEXT NOT NULL,
    category       TEXT NOT NULL DEFAULT 'other',
    emotional_tone TEXT,
    year_approx    INTEGER,
    importance     INTEGER NOT NULL DEFAULT 5,
    creation_time  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_memories_user ON memories(user_id, creation_time DESC);

CREATE TABLE IF NOT EXISTS assessments (
    assessment_id   TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    assessment_type TEXT NOT NULL,
    results         JSONB NOT NULL,
    completed_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_assessments_user ON assessments(user_id, completed_at DESC);

CREATE TABLE IF NOT EXISTS personas (
    persona_id             TEXT PRIMARY KEY,
    user_id                TEXT NOT NULL UNIQUE,
    status                 TEXT NOT NULL DEFAULT 'building',
    is_public              BOOLEAN NOT NULL DEFAULT false,
    in_collective          BOOLEAN NOT NULL DEFAULT false,
    entity_name            TEXT,
    entity_bio             TEXT,
    personality_synthesis  TEXT,
    system_prompt          TEXT,
    slug                   TEXT UNIQUE,
    share_token            TEXT UNIQUE,
    total_conversations    INTEGER NOT NULL DEFAULT 0,
    last_contacted_at      TIMESTAMPTZ,
    joined_collective_at   TIMESTAMPTZ,
    collective_join_reason TEXT,
    creation_time          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS conversations (
    conversation_id TEXT PRIMARY KEY,
    persona_id      TEXT NOT NULL,
    visitor_user_id TEXT,
    visitor_name    TEXT,
    mode            TEXT NOT NULL DEFAULT 'general',
    creation_time   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_conversations_persona ON conversations(persona_id);

CREATE TABLE IF NOT EXISTS chat_messages (
    message_id      TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL,
    seq             BIGSERIAL,
    role            TEXT NOT NULL,
    content         TEXT NOT NULL,
    creation_time   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_conversation ON chat_messages(conversation_id, creation_time, seq);
`

// EnsureSchema applies the schema idempotently.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Bootstrap performs a connectivity check to ensure Postgres is reachable.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}
