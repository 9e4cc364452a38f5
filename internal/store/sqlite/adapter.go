package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/store"
)

// New constructs a SQLite-backed store over an open database handle.
func New(db *sql.DB) store.Store { return &sqlStore{db: db} }

type sqlStore struct{ db *sql.DB }

func (s *sqlStore) Profiles() store.Profiles           { return &profiles{db: s.db} }
func (s *sqlStore) Memories() store.Memories           { return &memories{db: s.db} }
func (s *sqlStore) Assessments() store.Assessments     { return &assessments{db: s.db} }
func (s *sqlStore) Personas() store.Personas           { return &personas{db: s.db} }
func (s *sqlStore) Conversations() store.Conversations { return &conversations{db: s.db} }
func (s *sqlStore) Messages() store.Messages           { return &messages{db: s.db} }

// HealthPing implements health.HealthPinger for the SQLite-backed store.
func (s *sqlStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// --- Profiles ---

type profiles struct{ db *sql.DB }

const profileCols = `user_id, display_name, birth_year, location, occupation, life_story,
    core_values, beliefs, likes_and_joys, dislikes_and_fears, communication_style,
    humor_style, important_people, legacy_message, estate_wishes, creation_time, update_time`

func scanProfile(row interface{ Scan(...any) error }) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.UserID, &p.DisplayName, &p.BirthYear, &p.Location, &p.Occupation,
		&p.LifeStory, &p.CoreValues, &p.Beliefs, &p.LikesAndJoys, &p.DislikesAndFears,
		&p.CommunicationStyle, &p.HumorStyle, &p.ImportantPeople, &p.LegacyMessage,
		&p.EstateWishes, &p.CreationTime, &p.UpdateTime)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &p, nil
}

func (s *profiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileCols+` FROM profiles WHERE user_id=?`, userID)
	return scanProfile(row)
}

func (s *profiles) Upsert(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO profiles (`+profileCols+`)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT(user_id) DO UPDATE SET
            display_name=excluded.display_name, birth_year=excluded.birth_year,
            location=excluded.location, occupation=excluded.occupation,
            life_story=excluded.life_story, core_values=excluded.core_values,
            beliefs=excluded.beliefs, likes_and_joys=excluded.likes_and_joys,
            dislikes_and_fears=excluded.dislikes_and_fears,
            communication_style=excluded.communication_style,
            humor_style=excluded.humor_style, important_people=excluded.important_people,
            legacy_message=excluded.legacy_message, estate_wishes=excluded.estate_wishes,
            update_time=excluded.update_time
    `, p.UserID, p.DisplayName, p.BirthYear, p.Location, p.Occupation, p.LifeStory,
		p.CoreValues, p.Beliefs, p.LikesAndJoys, p.DislikesAndFears, p.CommunicationStyle,
		p.HumorStyle, p.ImportantPeople, p.LegacyMessage, p.EstateWishes, now, now)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p.UserID)
}

// --- Memories ---

type memories struct{ db *sql.DB }

const memoryCols = `memory_id, user_id, title, content, category, emotional_tone, year_approx, importance, creation_time`

func scanMemoryRows(rows *sql.Rows) ([]*model.Memory, error) {
	defer func() { _ = rows.Close() }()
	var res []*model.Memory
	for rows.Next() {
		var m model.Memory
		if err := rows.Scan(&m.MemoryID, &m.UserID, &m.Title, &m.Content, &m.Category,
			&m.EmotionalTone, &m.YearApprox, &m.Importance, &m.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (s *memories) List(ctx context.Context, userID string) ([]*model.Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+memoryCols+` FROM memories
        WHERE user_id=? ORDER BY creation_time DESC, rowid DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	return scanMemoryRows(rows)
}

func (s *memories) Search(ctx context.Context, userID, query, category string) ([]*model.Memory, error) {
	q := `SELECT ` + memoryCols + ` FROM memories WHERE user_id=?`
	args := []any{userID}
	if query != "" {
		q += ` AND (content LIKE ? OR COALESCE(title,'') LIKE ?)`
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern)
	}
	if category != "" {
		q += ` AND category=?`
		args = append(args, category)
	}
	q += ` ORDER BY creation_time DESC, rowid DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanMemoryRows(rows)
}

func (s *memories) Add(ctx context.Context, m *model.Memory) (*model.Memory, error) {
	out := *m
	if out.MemoryID == "" {
		out.MemoryID = uuid.New().String()
	}
	if out.Category == "" {
		out.Category = model.CategoryOther
	}
	if out.Importance == 0 {
		out.Importance = 5
	}
	out.CreationTime = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO memories (`+memoryCols+`) VALUES (?,?,?,?,?,?,?,?,?)
    `, out.MemoryID, out.UserID, out.Title, out.Content, out.Category,
		out.EmotionalTone, out.YearApprox, out.Importance, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *memories) Delete(ctx context.Context, userID, memoryID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE memory_id=? AND user_id=?`, memoryID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Assessments ---

type assessments struct{ db *sql.DB }

func (s *assessments) List(ctx context.Context, userID string) ([]*model.Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT assessment_id, user_id, assessment_type, results, completed_at
        FROM assessments WHERE user_id=? ORDER BY completed_at DESC, rowid DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Assessment
	for rows.Next() {
		var a model.Assessment
		var results string
		if err := rows.Scan(&a.AssessmentID, &a.UserID, &a.Type, &results, &a.CompletedAt); err != nil {
			return nil, err
		}
		a.Results = []byte(results)
		res = append(res, &a)
	}
	return res, rows.Err()
}

func (s *assessments) Add(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	out := *a
	if out.AssessmentID == "" {
		out.AssessmentID = uuid.New().String()
	}
	out.CompletedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO assessments (assessment_id, user_id, assessment_type, results, completed_at)
        VALUES (?,?,?,?,?)
    `, out.AssessmentID, out.UserID, string(out.Type), string(out.Results), out.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Personas ---

type personas struct{ db *sql.DB }

const personaCols = `persona_id, user_id, status, is_public, in_collective, entity_name, entity_bio,
    personality_synthesis, system_prompt, slug, share_token, total_conversations,
    last_contacted_at, joined_collective_at, collective_join_reason, creation_time`

func scanPersona(row interface{ Scan(...any) error }) (*model.Persona, error) {
	var p model.Persona
	err := row.Scan(&p.PersonaID, &p.UserID, &p.Status, &p.IsPublic, &p.InCollective,
		&p.EntityName, &p.EntityBio, &p.PersonalitySynthesis, &p.SystemPrompt,
		&p.Slug, &p.ShareToken, &p.TotalConversations, &p.LastContactedAt,
		&p.JoinedCollectiveAt, &p.CollectiveJoinReason, &p.CreationTime)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &p, nil
}

func (s *personas) getWhere(ctx context.Context, clause string, arg any) (*model.Persona, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personaCols+` FROM personas WHERE `+clause, arg)
	return scanPersona(row)
}

func (s *personas) GetByUser(ctx context.Context, userID string) (*model.Persona, error) {
	return s.getWhere(ctx, `user_id=?`, userID)
}

func (s *personas) GetByID(ctx context.Context, personaID string) (*model.Persona, error) {
	return s.getWhere(ctx, `persona_id=?`, personaID)
}

func (s *personas) GetBySlug(ctx context.Context, slug string) (*model.Persona, error) {
	return s.getWhere(ctx, `slug=?`, slug)
}

func (s *personas) GetByToken(ctx context.Context, token string) (*model.Persona, error) {
	return s.getWhere(ctx, `share_token=?`, token)
}

func (s *personas) Upsert(ctx context.Context, userID string, upd model.PersonaUpdate) (*model.Persona, error) {
	_, err := s.GetByUser(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		_, err = s.db.ExecContext(ctx, `
            INSERT INTO personas (persona_id, user_id, status, creation_time)
            VALUES (?,?,?,?)
        `, uuid.New().String(), userID, model.PersonaBuilding, time.Now().UTC())
	}
	if err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.IsPublic != nil {
		add("is_public", *upd.IsPublic)
	}
	if upd.InCollective != nil {
		add("in_collective", *upd.InCollective)
	}
	if upd.EntityName != nil {
		add("entity_name", *upd.EntityName)
	}
	if upd.EntityBio != nil {
		add("entity_bio", *upd.EntityBio)
	}
	if upd.PersonalitySynthesis != nil {
		add("personality_synthesis", *upd.PersonalitySynthesis)
	}
	if upd.SystemPrompt != nil {
		add("system_prompt", *upd.SystemPrompt)
	}
	if upd.Slug != nil {
		add("slug", *upd.Slug)
	}
	if upd.ShareToken != nil {
		add("share_token", *upd.ShareToken)
	}
	if upd.JoinedCollectiveAt != nil {
		add("joined_collective_at", *upd.JoinedCollectiveAt)
	}
	if upd.CollectiveJoinReason != nil {
		add("collective_join_reason", *upd.CollectiveJoinReason)
	}
	if len(sets) > 0 {
		args = append(args, userID)
		q := fmt.Sprintf(`UPDATE personas SET %s WHERE user_id=?`, strings.Join(sets, ", "))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return s.GetByUser(ctx, userID)
}

func (s *personas) listWhere(ctx context.Context, clause string) ([]*model.Persona, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+personaCols+` FROM personas WHERE `+clause+`
        ORDER BY creation_time DESC, rowid DESC
    `)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Persona
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (s *personas) ListCollective(ctx context.Context) ([]*model.Persona, error) {
	return s.listWhere(ctx, `in_collective=1 AND status='active'`)
}

func (s *personas) ListPublic(ctx context.Context) ([]*model.Persona, error) {
	return s.listWhere(ctx, `is_public=1 AND status='active'`)
}

func (s *personas) IncrementConversations(ctx context.Context, personaID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE personas
        SET total_conversations = total_conversations + 1, last_contacted_at = ?
        WHERE persona_id = ?
    `, at.UTC(), personaID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Conversations ---

type conversations struct{ db *sql.DB }

func (s *conversations) Create(ctx context.Context, c *model.Conversation) (*model.Conversation, error) {
	out := *c
	if out.ConversationID == "" {
		out.ConversationID = uuid.New().String()
	}
	if out.Mode == "" {
		out.Mode = model.ModeGeneral
	}
	out.CreationTime = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO conversations (conversation_id, persona_id, visitor_user_id, visitor_name, mode, creation_time)
        VALUES (?,?,?,?,?,?)
    `, out.ConversationID, out.PersonaID, out.VisitorUserID, out.VisitorName, out.Mode, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *conversations) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	var c model.Conversation
	row := s.db.QueryRowContext(ctx, `
        SELECT conversation_id, persona_id, visitor_user_id, visitor_name, mode, creation_time
        FROM conversations WHERE conversation_id=?
    `, conversationID)
	if err := row.Scan(&c.ConversationID, &c.PersonaID, &c.VisitorUserID, &c.VisitorName, &c.Mode, &c.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	return &c, nil
}

// --- Messages ---

type messages struct{ db *sql.DB }

func (s *messages) List(ctx context.Context, conversationID string) ([]*model.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT message_id, conversation_id, role, content, creation_time
        FROM chat_messages WHERE conversation_id=?
        ORDER BY creation_time ASC, rowid ASC
    `, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.MessageID, &m.ConversationID, &m.Role, &m.Content, &m.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (s *messages) Add(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error) {
	out := *m
	if out.MessageID == "" {
		out.MessageID = uuid.New().String()
	}
	out.CreationTime = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO chat_messages (message_id, conversation_id, role, content, creation_time)
        VALUES (?,?,?,?,?)
    `, out.MessageID, out.ConversationID, out.Role, out.Content, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
