package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/mindocean/mindocean/internal/completeness"
	"github.com/mindocean/mindocean/internal/llm"
	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/store"
)

const synthesisSystemPrompt = "You are an expert in personality psychology and AI persona creation. Respond only with valid JSON."

const synthesisPromptTemplate = `You are synthesizing a digital mind entity from personal data. Create a rich, nuanced personality synthesis that captures this person's essence.

PROFILE:
%s

MEMORIES:
%s

ASSESSMENTS:
%s

Create:
1. A personality synthesis (2-3 paragraphs describing who this person is, their values, how they think and communicate)
2. A system prompt for an AI to embody this person authentically

Format your response as JSON with keys: "personalitySynthesis", "systemPrompt", "entityName", "entityBio"
The entityName should be the person's name or a meaningful variant.
The entityBio should be 1-2 sentences describing this mind entity for public display.`

// synthesisMemoryCap bounds how many recent memories enter the prompt.
const synthesisMemoryCap = 20

// PersonaService owns the synthesis pipeline and persona-facing reads,
// sharing and settings.
type PersonaService struct {
	store store.Store
	llm   llm.Client
}

func NewPersonaService(s store.Store, c llm.Client) *PersonaService {
	return &PersonaService{store: s, llm: c}
}

// SynthesisResult reports the upserted persona and whether the model output
// parsed cleanly or the degraded fallback was used.
type SynthesisResult struct {
	Persona  *model.Persona `json:"persona"`
	Degraded bool           `json:"degraded"`
}

type synthesisOutput struct {
	PersonalitySynthesis string `json:"personalitySynthesis"`
	SystemPrompt         string `json:"systemPrompt"`
	EntityName           string `json:"entityName"`
	EntityBio            string `json:"entityBio"`
}

// Synthesize builds the persona from the user's current data. Requires a
// completeness score of at least 20. Parse failures never fail the call;
// the persona falls back to degraded-but-usable fields so the conversation
// engine always has something to work with. Slug and share token are
// provisioned at most once per persona, ever.
func (s *PersonaService) Synthesize(ctx context.Context, userID string) (*SynthesisResult, error) {
	profile, err := s.store.Profiles().Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		profile = nil
	}
	mems, err := s.store.Memories().List(ctx, userID)
	if err != nil {
		return nil, err
	}
	assessments, err := s.store.Assessments().List(ctx, userID)
	if err != nil {
		return nil, err
	}
	types := make([]model.AssessmentType, 0, len(assessments))
	for _, a := range assessments {
		types = append(types, a.Type)
	}

	if completeness.Score(profile, len(mems), types) < completeness.SynthesisThreshold {
		return nil, fmt.Errorf("%w: complete at least %d%% of your profile before synthesizing",
			model.ErrInsufficientData, completeness.SynthesisThreshold)
	}

	prompt := fmt.Sprintf(synthesisPromptTemplate,
		profileSummary(profile), memoriesSummary(mems), assessmentsSummary(assessments))

	raw, err := s.llm.Complete(ctx, []llm.Message{{Role: model.RoleUser, Content: prompt}}, synthesisSystemPrompt)
	if err != nil {
		return nil, err
	}

	var out synthesisOutput
	degraded := true
	if span, ok := llm.FirstJSONObject(raw); ok {
		if err := json.Unmarshal([]byte(span), &out); err == nil {
			degraded = false
		}
	}
	displayName := ""
	if profile != nil && profile.DisplayName != nil {
		displayName = *profile.DisplayName
	}
	if degraded {
		subject := displayName
		if subject == "" {
			subject = "this person"
		}
		entityName := displayName
		if entityName == "" {
			entityName = "Mind Entity"
		}
		out = synthesisOutput{
			PersonalitySynthesis: raw,
			SystemPrompt:         fmt.Sprintf("You are %s. Respond as them based on their profile and memories.", subject),
			EntityName:           entityName,
			EntityBio:            "A digital mind entity",
		}
	}
	if out.EntityName == "" {
		out.EntityName = displayName
	}

	update := model.PersonaUpdate{
		PersonalitySynthesis: &out.PersonalitySynthesis,
		SystemPrompt:         &out.SystemPrompt,
		EntityBio:            &out.EntityBio,
		Status:               strp(model.PersonaActive),
	}
	if out.EntityName != "" {
		update.EntityName = &out.EntityName
	}

	existing, err := s.store.Personas().GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	if existing == nil || existing.Slug == nil {
		base := out.EntityName
		if base == "" {
			base = "mind"
		}
		slug := generateSlug(base)
		update.Slug = &slug
	}
	if existing == nil || existing.ShareToken == nil {
		token := generateShareToken()
		update.ShareToken = &token
	}

	persona, err := s.store.Personas().Upsert(ctx, userID, update)
	if err != nil {
		return nil, err
	}
	return &SynthesisResult{Persona: persona, Degraded: degraded}, nil
}

func strp(s string) *string { return &s }

func orFallback(v *string, fallback string) string {
	if v != nil && *v != "" {
		return *v
	}
	return fallback
}

func profileSummary(p *model.Profile) string {
	if p == nil {
		return "No profile data available"
	}
	birthYear := "Unknown"
	if p.BirthYear != nil {
		birthYear = fmt.Sprintf("%d", *p.BirthYear)
	}
	return strings.Join([]string{
		"Name: " + orFallback(p.DisplayName, "Unknown"),
		"Birth Year: " + birthYear,
		"Location: " + orFallback(p.Location, "Unknown"),
		"Occupation: " + orFallback(p.Occupation, "Unknown"),
		"Life Story: " + orFallback(p.LifeStory, "Not provided"),
		"Core Values: " + orFallback(p.CoreValues, "Not provided"),
		"Beliefs: " + orFallback(p.Beliefs, "Not provided"),
		"Likes & Joys: " + orFallback(p.LikesAndJoys, "Not provided"),
		"Dislikes & Fears: " + orFallback(p.DislikesAndFears, "Not provided"),
		"Communication Style: " + orFallback(p.CommunicationStyle, "Not provided"),
		"Humor Style: " + orFallback(p.HumorStyle, "Not provided"),
		"Important People: " + orFallback(p.ImportantPeople, "Not provided"),
		"Legacy Message: " + orFallback(p.LegacyMessage, "Not provided"),
		"Estate Wishes: " + orFallback(p.EstateWishes, "Not provided"),
	}, "\n")
}

func memoriesSummary(mems []*model.Memory) string {
	if len(mems) == 0 {
		return "No memories recorded"
	}
	if len(mems) > synthesisMemoryCap {
		mems = mems[:synthesisMemoryCap]
	}
	lines := make([]string, 0, len(mems))
	for _, m := range mems {
		title := ""
		if m.Title != nil {
			title = *m.Title
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", m.Category, title, m.Content))
	}
	return strings.Join(lines, "\n")
}

func assessmentsSummary(as []*model.Assessment) string {
	if len(as) == 0 {
		return "No assessments completed"
	}
	lines := make([]string, 0, len(as))
	for _, a := range as {
		lines = append(lines, fmt.Sprintf("%s: %s", a.Type, string(a.Results)))
	}
	return strings.Join(lines, "\n")
}

// generateSlug derives a URL-safe identifier from the entity name with a
// short random suffix, since slugs are globally unique.
func generateSlug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "mind"
	}
	suffix := strings.ToLower(ulid.Make().String())
	return base + "-" + suffix[len(suffix)-6:]
}

func generateShareToken() string {
	return strings.ToLower(ulid.Make().String())
}

func (s *PersonaService) GetByUser(ctx context.Context, userID string) (*model.Persona, error) {
	return s.store.Personas().GetByUser(ctx, userID)
}

func (s *PersonaService) GetByID(ctx context.Context, personaID string) (*model.Persona, error) {
	return s.store.Personas().GetByID(ctx, personaID)
}

// GetBySlug returns the public-safe projection for the shareable slug page.
func (s *PersonaService) GetBySlug(ctx context.Context, slug string) (*model.PublicPersona, error) {
	p, err := s.store.Personas().GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &model.PublicPersona{
		PersonaID:          p.PersonaID,
		EntityName:         p.EntityName,
		EntityBio:          p.EntityBio,
		Status:             p.Status,
		IsPublic:           p.IsPublic,
		InCollective:       p.InCollective,
		Slug:               p.Slug,
		TotalConversations: p.TotalConversations,
		CreationTime:       p.CreationTime,
	}, nil
}

// GetByShareToken resolves the private share link. The token grants access
// even when the persona is not public, so the token echoes back but the
// public/collective flags do not.
func (s *PersonaService) GetByShareToken(ctx context.Context, token string) (*model.PublicPersona, error) {
	p, err := s.store.Personas().GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &model.PublicPersona{
		PersonaID:          p.PersonaID,
		EntityName:         p.EntityName,
		EntityBio:          p.EntityBio,
		Status:             p.Status,
		Slug:               p.Slug,
		ShareToken:         p.ShareToken,
		TotalConversations: p.TotalConversations,
		CreationTime:       p.CreationTime,
	}, nil
}

// GenerateShareLink provisions any missing slug/token and returns both URLs.
// Calling it twice always returns the same identifiers.
func (s *PersonaService) GenerateShareLink(ctx context.Context, userID string) (*model.ShareLink, error) {
	persona, err := s.store.Personas().GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: no mind entity found, synthesize your mind first", model.ErrNotFound)
		}
		return nil, err
	}
	if persona.Status != model.PersonaActive {
		return nil, fmt.Errorf("%w: your mind entity must be active before sharing", model.ErrValidation)
	}

	var update model.PersonaUpdate
	if persona.Slug == nil {
		slug := generateSlug(orFallback(persona.EntityName, "mind"))
		update.Slug = &slug
	}
	if persona.ShareToken == nil {
		token := generateShareToken()
		update.ShareToken = &token
	}
	if update.Slug != nil || update.ShareToken != nil {
		if persona, err = s.store.Personas().Upsert(ctx, userID, update); err != nil {
			return nil, err
		}
	}

	return &model.ShareLink{
		Slug:       *persona.Slug,
		ShareToken: *persona.ShareToken,
		SlugURL:    "/mind/" + *persona.Slug,
		TokenURL:   "/mind/token/" + *persona.ShareToken,
	}, nil
}

// SettingsUpdate is the owner-editable subset of persona fields.
type SettingsUpdate struct {
	IsPublic     *bool   `json:"isPublic,omitempty"`
	InCollective *bool   `json:"inCollective,omitempty"`
	EntityName   *string `json:"entityName,omitempty"`
	EntityBio    *string `json:"entityBio,omitempty"`
}

// UpdateSettings applies the partial settings change. Joining the collective
// stamps the join time and reason.
func (s *PersonaService) UpdateSettings(ctx context.Context, userID string, in SettingsUpdate) (*model.Persona, error) {
	update := model.PersonaUpdate{
		IsPublic:     in.IsPublic,
		InCollective: in.InCollective,
		EntityName:   in.EntityName,
		EntityBio:    in.EntityBio,
	}
	if in.InCollective != nil && *in.InCollective {
		now := nowUTC()
		update.JoinedCollectiveAt = &now
		update.CollectiveJoinReason = strp("voluntary")
	}
	return s.store.Personas().Upsert(ctx, userID, update)
}

// Ocean lists the publicly browsable minds plus the collective headcount.
func (s *PersonaService) Ocean(ctx context.Context) (*model.OceanView, error) {
	public, err := s.store.Personas().ListPublic(ctx)
	if err != nil {
		return nil, err
	}
	collective, err := s.store.Personas().ListCollective(ctx)
	if err != nil {
		return nil, err
	}

	minds := make([]model.OceanMind, 0, len(public))
	for _, p := range public {
		minds = append(minds, model.OceanMind{
			PersonaID:     p.PersonaID,
			Name:          p.EntityName,
			Bio:           p.EntityBio,
			InCollective:  p.InCollective,
			Conversations: p.TotalConversations,
			Slug:          p.Slug,
		})
	}
	return &model.OceanView{SwimmingMinds: minds, CollectiveCount: len(collective)}, nil
}
