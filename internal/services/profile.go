package services

import (
	"context"
	"errors"

	"github.com/mindocean/mindocean/internal/completeness"
	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/store"
)

// ProfileService handles profile reads, partial saves and the derived
// completeness/stats views.
type ProfileService struct {
	store store.Store
}

func NewProfileService(s store.Store) *ProfileService { return &ProfileService{store: s} }

func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return s.store.Profiles().Get(ctx, userID)
}

// Save merges the non-nil fields of patch onto the stored profile and
// persists the result. A missing profile is created from the patch alone.
func (s *ProfileService) Save(ctx context.Context, userID string, patch *model.Profile) (*model.Profile, error) {
	existing, err := s.store.Profiles().Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		existing = &model.Profile{UserID: userID}
	}
	applyProfilePatch(existing, patch)
	existing.UserID = userID
	return s.store.Profiles().Upsert(ctx, existing)
}

func applyProfilePatch(dst, patch *model.Profile) {
	if patch == nil {
		return
	}
	if patch.DisplayName != nil {
		dst.DisplayName = patch.DisplayName
	}
	if patch.BirthYear != nil {
		dst.BirthYear = patch.BirthYear
	}
	if patch.Location != nil {
		dst.Location = patch.Location
	}
	if patch.Occupation != nil {
		dst.Occupation = patch.Occupation
	}
	if patch.LifeStory != nil {
		dst.LifeStory = patch.LifeStory
	}
	if patch.CoreValues != nil {
		dst.CoreValues = patch.CoreValues
	}
	if patch.Beliefs != nil {
		dst.Beliefs = patch.Beliefs
	}
	if patch.LikesAndJoys != nil {
		dst.LikesAndJoys = patch.LikesAndJoys
	}
	if patch.DislikesAndFears != nil {
		dst.DislikesAndFears = patch.DislikesAndFears
	}
	if patch.CommunicationStyle != nil {
		dst.CommunicationStyle = patch.CommunicationStyle
	}
	if patch.HumorStyle != nil {
		dst.HumorStyle = patch.HumorStyle
	}
	if patch.ImportantPeople != nil {
		dst.ImportantPeople = patch.ImportantPeople
	}
	if patch.LegacyMessage != nil {
		dst.LegacyMessage = patch.LegacyMessage
	}
	if patch.EstateWishes != nil {
		dst.EstateWishes = patch.EstateWishes
	}
}

// Completeness recomputes the 0-100 score and missing-data tips from the
// user's current profile, memories and assessments.
func (s *ProfileService) Completeness(ctx context.Context, userID string) (*model.CompletenessReport, error) {
	profile, memCount, _, types, err := s.loadScoringInputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.CompletenessReport{
		Score: completeness.Score(profile, memCount, types),
		Tips:  completeness.Tips(profile, memCount, types),
	}, nil
}

// Stats assembles the dashboard aggregate over the user's data and persona.
func (s *ProfileService) Stats(ctx context.Context, userID string) (*model.ProfileStats, error) {
	profile, memCount, assessmentCount, types, err := s.loadScoringInputs(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &model.ProfileStats{
		MemoryCount:     memCount,
		AssessmentCount: assessmentCount,
		Completeness:    completeness.Score(profile, memCount, types),
	}
	persona, err := s.store.Personas().GetByUser(ctx, userID)
	switch {
	case err == nil:
		stats.EntityStatus = &persona.Status
		stats.EntityName = persona.EntityName
		stats.EntitySlug = persona.Slug
		stats.IsPublic = persona.IsPublic
		stats.InCollective = persona.InCollective
		stats.TotalConversations = persona.TotalConversations
	case errors.Is(err, model.ErrNotFound):
		// No persona yet; defaults stand.
	default:
		return nil, err
	}
	return stats, nil
}

func (s *ProfileService) loadScoringInputs(ctx context.Context, userID string) (*model.Profile, int, int, []model.AssessmentType, error) {
	profile, err := s.store.Profiles().Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return nil, 0, 0, nil, err
		}
		profile = nil
	}
	mems, err := s.store.Memories().List(ctx, userID)
	if err != nil {
		return nil, 0, 0, nil, err
	}
	assessments, err := s.store.Assessments().List(ctx, userID)
	if err != nil {
		return nil, 0, 0, nil, err
	}
	types := make([]model.AssessmentType, 0, len(assessments))
	for _, a := range assessments {
		types = append(types, a.Type)
	}
	return profile, len(mems), len(assessments), types, nil
}
