package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Profiles() store.Profiles           { return &profiles{db: s.db} }
func (s *pgStore) Memories() store.Memories           { return &memories{db: s.db} }
func (s *pgStore) Assessments() store.Assessments     { return &assessments{db: s.db} }
func (s *pgStore) Personas() store.Personas           { return &personas{db: s.db} }
func (s *pgStore) Conversations() store.Conversations { return &conversations{db: s.db} }
func (s *pgStore) Messages() store.Messages           { return &messages{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
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
	row := s.db.QueryRowContext(ctx, `SELECT `+profileCols+` FROM profiles WHERE user_id=$1`, userID)
	return scanProfile(row)
}

func (s *profiles) Upsert(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO profiles (`+profileCols+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        ON CONFLICT (user_id) DO UPDATE SET
            display_name=EXCLUDED.display_name, birth_year=EXCLUDED.birth_year,
            location=EXCLUDED.location, occupation=EXCLUDED.occupation,
            life_story=EXCLUDED.life_story, core_values=EXCLUDED.core_values,
            beliefs=EXCLUDED.beliefs, likes_and_joys=EXCLUDED.likes_and_joys,
            dislikes_and_fears=EXCLUDED.dislikes_and_fears,
            communication_style=EXCLUDED.communication_style,
            humor_style=EXCLUDED.humor_style, important_people=EXCLUDED.important_people,
            legacy_message=EXCLUDED.legacy_message, estate_wishes=EXCLUDED.estate_wishes,
            update_time=EXCLUDED.update_time
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
        WHERE user_id=$1 ORDER BY creation_time DESC, memory_id DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	return scanMemoryRows(rows)
}

func (s *memories) Search(ctx context.Context, userID, query, category string) ([]*model.Memory, error) {
	q := `SELECT ` + memoryCols + ` FROM memories WHERE user_id=$1`
	args := []any{userID}
	if query != "" {
		q += fmt.Sprintf(` AND (content ILIKE $%d OR COALESCE(title,'') ILIKE $%d)`, len(args)+1, len(args)+2)
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern)
	}
	if category != "" {
		q += fmt.Sprintf(` AND category=$%d`, len(args)+1)
		args = append(args, category)
	}
	q += ` ORDER BY creation_time DESC, memory_id DESC`
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
	var created time.Time
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO memories (memory_id, user_id, title, content, category, emotional_tone, year_approx, importance)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING creation_time
    `, out.MemoryID, out.UserID, out.Title, out.Content, out.Category, out.EmotionalTone, out.YearApprox, out.Importance)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreationTime = created
	return &out, nil
}

func (s *memories) Delete(ctx context.Context, userID, memoryID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE memory_id=$1 AND user_id=$2`, memoryID, userID)
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
        FROM assessments WHERE user_id=$1 ORDER BY completed_at DESC, assessment_id DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Assessment
	for rows.Next() {
		var a model.Assessment
		var results []byte
		if err := rows.Scan(&a.AssessmentID, &a.UserID, &a.Type, &results, &a.CompletedAt); err != nil {
			return nil, err
		}
		a.Results = results
		res = append(res, &a)
	}
	return res, rows.Err()
}

func (s *assessments) Add(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	out := *a
	if out.AssessmentID == "" {
		out.AssessmentID = uuid.New().String()
	}
	var completed time.Time
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO assessments (assessment_id, user_id, assessment_type, results)
        VALUES ($1,$2,$3,$4)
        RETURNING completed_at
    `, out.AssessmentID, out.UserID, string(out.Type), string(out.Results))
	if err := row.Scan(&completed); err != nil {
		return nil, err
	}
	out.CompletedAt = completed
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
	return s.getWhere(ctx, `user_id=$1`, userID)
}

func (s *personas) GetByID(ctx context.Context, personaID string) (*model.Persona, error) {
	return s.getWhere(ctx, `persona_id=$1`, personaID)
}

func (s *personas) GetBySlug(ctx context.Context, slug string) (*model.Persona, error) {
	return s.getWhere(ctx, `slug=$1`, slug)
}

func (s *personas) GetByToken(ctx context.Context, token string) (*model.Persona, error) {
	return s.getWhere(ctx, `share_token=$1`, token)
}

func (s *personas) Upsert(ctx context.Context, userID string, upd model.PersonaUpdate) (*model.Persona, error) {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO personas (persona_id, user_id, status)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id) DO NOTHING
    `, uuid.New().String(), userID, model.PersonaBuilding)
	if err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
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
		q := fmt.Sprintf(`UPDATE personas SET %s WHERE user_id=$%d`, strings.Join(sets, ", "), len(args))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return s.GetByUser(ctx, userID)
}

func (s *personas) listWhere(ctx context.Context, clause string) ([]*model.Persona, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+personaCols+` FROM personas WHERE `+clause+`
        ORDER BY creation_time DESC, persona_id DESC
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
	return s.listWhere(ctx, `in_collective AND status='active'`)
}

func (s *personas) ListPublic(ctx context.Context) ([]*model.Persona, error) {
	return s.listWhere(ctx, `is_public AND status='active'`)
}

func (s *personas) IncrementConversations(ctx context.Context, personaID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE personas
        SET total_conversations = total_conversations + 1, last_contacted_at = $1
        WHERE persona_id = $2
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
	var created time.Time
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO conversations (conversation_id, persona_id, visitor_user_id, visitor_name, mode)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING creation_time
    `, out.ConversationID, out.PersonaID, out.VisitorUserID, out.VisitorName, out.Mode)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreationTime = created
	return &out, nil
}

func (s *conversations) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	var c model.Conversation
	row := s.db.QueryRowContext(ctx, `
        SELECT conversation_id, persona_id, visitor_user_id, visitor_name, mode, creation_time
        FROM conversations WHERE conversation_id=$1
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
        FROM chat_messages WHERE conversation_id=$1
        ORDER BY creation_time ASC, seq ASC
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
	var created time.Time
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO chat_messages (message_id, conversation_id, role, content)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time
    `, out.MessageID, out.ConversationID, out.Role, out.Content)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreationTime = created
	return &out, nil
}
