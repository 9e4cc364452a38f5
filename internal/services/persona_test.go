package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mindocean/mindocean/internal/model"
)

// seedCompleteUser fills enough data to clear the synthesis gate.
func seedCompleteUser(t *testing.T, st *fakeStore, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := st.Profiles().Upsert(ctx, &model.Profile{
		UserID:      userID,
		DisplayName: strp("Ada Lovelace"),
		LifeStory:   strp("mathematician"),
		CoreValues:  strp("curiosity"),
		Location:    strp("London"),
		Occupation:  strp("analyst"),
	})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := st.Memories().Add(ctx, &model.Memory{UserID: userID, Content: "a memory"})
		require.NoError(t, err)
	}
}

func TestSynthesizeGatesOnCompleteness(t *testing.T) {
	st := newFakeStore()
	mock := &fakeLLM{}
	svc := NewPersonaService(st, mock)

	_, err := svc.Synthesize(context.Background(), "u1")
	require.ErrorIs(t, err, model.ErrInsufficientData)
	require.Equal(t, 0, mock.callCount(), "gate must reject before any LLM call")

	_, getErr := st.Personas().GetByUser(context.Background(), "u1")
	require.ErrorIs(t, getErr, model.ErrNotFound, "gate must perform no writes")
}

func TestSynthesizeStructured(t *testing.T) {
	st := newFakeStore()
	mock := &fakeLLM{responses: []string{`Sure, here it is:
{"personalitySynthesis": "Curious and precise.", "systemPrompt": "You are Ada.", "entityName": "Ada's Mind", "entityBio": "A pioneering analyst."}`}}
	svc := NewPersonaService(st, mock)
	seedCompleteUser(t, st, "u1")

	res, err := svc.Synthesize(context.Background(), "u1")
	require.NoError(t, err)
	require.False(t, res.Degraded)

	p := res.Persona
	require.Equal(t, model.PersonaActive, p.Status)
	require.Equal(t, "Ada's Mind", *p.EntityName)
	require.Equal(t, "You are Ada.", *p.SystemPrompt)
	require.Equal(t, "A pioneering analyst.", *p.EntityBio)
	require.NotNil(t, p.Slug)
	require.True(t, strings.HasPrefix(*p.Slug, "ada-s-mind-"), "slug derives from entity name, got %q", *p.Slug)
	require.NotNil(t, p.ShareToken)

	// Prompt carries the profile dump and memory lines.
	require.Contains(t, mock.calls[0].messages[0].Content, "Name: Ada Lovelace")
	require.Contains(t, mock.calls[0].messages[0].Content, "[other] : a memory")
}

func TestSynthesizeDegradedFallback(t *testing.T) {
	st := newFakeStore()
	mock := &fakeLLM{responses: []string{"I cannot produce JSON today, but Ada was brilliant."}}
	svc := NewPersonaService(st, mock)
	seedCompleteUser(t, st, "u1")

	res, err := svc.Synthesize(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, res.Degraded)

	p := res.Persona
	require.Equal(t, model.PersonaActive, p.Status)
	require.Equal(t, "I cannot produce JSON today, but Ada was brilliant.", *p.PersonalitySynthesis)
	require.Equal(t, "You are Ada Lovelace. Respond as them based on their profile and memories.", *p.SystemPrompt)
	require.Equal(t, "Ada Lovelace", *p.EntityName)
	require.Equal(t, "A digital mind entity", *p.EntityBio)
	require.NotNil(t, p.Slug)
	require.NotNil(t, p.ShareToken)
}

func TestSynthesizeSlugTokenStableAcrossRuns(t *testing.T) {
	st := newFakeStore()
	mock := &fakeLLM{responses: []string{
		`{"personalitySynthesis": "v1", "systemPrompt": "sp1", "entityName": "Ada", "entityBio": "b1"}`,
		`{"personalitySynthesis": "v2", "systemPrompt": "sp2", "entityName": "Renamed", "entityBio": "b2"}`,
	}}
	svc := NewPersonaService(st, mock)
	seedCompleteUser(t, st, "u1")

	first, err := svc.Synthesize(context.Background(), "u1")
	require.NoError(t, err)
	second, err := svc.Synthesize(context.Background(), "u1")
	require.NoError(t, err)

	require.Equal(t, *first.Persona.Slug, *second.Persona.Slug)
	require.Equal(t, *first.Persona.ShareToken, *second.Persona.ShareToken)
	require.Equal(t, "v2", *second.Persona.PersonalitySynthesis)
	require.Equal(t, "Renamed", *second.Persona.EntityName)
}

func TestGenerateShareLink(t *testing.T) {
	st := newFakeStore()
	svc := NewPersonaService(st, &fakeLLM{})
	ctx := context.Background()

	_, err := svc.GenerateShareLink(ctx, "u1")
	require.ErrorIs(t, err, model.ErrNotFound)

	building := model.PersonaBuilding
	_, err = st.Personas().Upsert(ctx, "u1", model.PersonaUpdate{Status: &building})
	require.NoError(t, err)
	_, err = svc.GenerateShareLink(ctx, "u1")
	require.ErrorIs(t, err, model.ErrValidation)

	active := model.PersonaActive
	_, err = st.Personas().Upsert(ctx, "u1", model.PersonaUpdate{Status: &active, EntityName: strp("Ada")})
	require.NoError(t, err)

	link, err := svc.GenerateShareLink(ctx, "u1")
	require.NoError(t, err)
	require.NotEmpty(t, link.Slug)
	require.NotEmpty(t, link.ShareToken)
	require.Equal(t, "/mind/"+link.Slug, link.SlugURL)
	require.Equal(t, "/mind/token/"+link.ShareToken, link.TokenURL)

	again, err := svc.GenerateShareLink(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, link.Slug, again.Slug)
	require.Equal(t, link.ShareToken, again.ShareToken)
}

func TestUpdateSettingsStampsCollectiveJoin(t *testing.T) {
	st := newFakeStore()
	svc := NewPersonaService(st, &fakeLLM{})
	ctx := context.Background()

	yes := true
	p, err := svc.UpdateSettings(ctx, "u1", SettingsUpdate{InCollective: &yes})
	require.NoError(t, err)
	require.True(t, p.InCollective)
	require.NotNil(t, p.JoinedCollectiveAt)
	require.Equal(t, "voluntary", *p.CollectiveJoinReason)

	no := false
	p, err = svc.UpdateSettings(ctx, "u1", SettingsUpdate{InCollective: &no})
	require.NoError(t, err)
	require.False(t, p.InCollective)
	// leaving keeps the historical join stamp
	require.NotNil(t, p.JoinedCollectiveAt)
}

func TestPublicProjections(t *testing.T) {
	st := newFakeStore()
	svc := NewPersonaService(st, &fakeLLM{})
	ctx := context.Background()

	active := model.PersonaActive
	yes := true
	_, err := st.Personas().Upsert(ctx, "u1", model.PersonaUpdate{
		Status: &active, EntityName: strp("Ada"), Slug: strp("ada-x"),
		ShareToken: strp("tok-x"), IsPublic: &yes,
	})
	require.NoError(t, err)

	bySlug, err := svc.GetBySlug(ctx, "ada-x")
	require.NoError(t, err)
	require.Equal(t, "Ada", *bySlug.EntityName)
	require.Nil(t, bySlug.ShareToken, "slug lookup must not leak the share token")

	byToken, err := svc.GetByShareToken(ctx, "tok-x")
	require.NoError(t, err)
	require.Equal(t, "tok-x", *byToken.ShareToken)

	_, err = svc.GetBySlug(ctx, "missing")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestOceanBrowse(t *testing.T) {
	st := newFakeStore()
	svc := NewPersonaService(st, &fakeLLM{})
	ctx := context.Background()

	active := model.PersonaActive
	yes := true
	_, err := st.Personas().Upsert(ctx, "u1", model.PersonaUpdate{Status: &active, IsPublic: &yes, EntityName: strp("Ada")})
	require.NoError(t, err)
	_, err = st.Personas().Upsert(ctx, "u2", model.PersonaUpdate{Status: &active, InCollective: &yes, EntityName: strp("Grace")})
	require.NoError(t, err)

	view, err := svc.Ocean(ctx)
	require.NoError(t, err)
	require.Len(t, view.SwimmingMinds, 1)
	require.Equal(t, "Ada", *view.SwimmingMinds[0].Name)
	require.Equal(t, 1, view.CollectiveCount)
}

func TestGenerateSlug(t *testing.T) {
	slug := generateSlug("Ada  Lovelace!")
	require.True(t, strings.HasPrefix(slug, "ada-lovelace-"), "got %q", slug)
	require.NotEqual(t, slug, generateSlug("Ada  Lovelace!"), "random suffix keeps slugs unique")

	require.True(t, strings.HasPrefix(generateSlug("???"), "mind-"))
}
