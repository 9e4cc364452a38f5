package services

import (
	"context"
	"fmt"

	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/store"
)

// AssessmentService records completed psychometric tests. Results are opaque
// JSON; repeated completions of the same type accumulate rather than replace.
type AssessmentService struct {
	store store.Store
}

func NewAssessmentService(s store.Store) *AssessmentService { return &AssessmentService{store: s} }

func (s *AssessmentService) List(ctx context.Context, userID string) ([]*model.Assessment, error) {
	return s.store.Assessments().List(ctx, userID)
}

func (s *AssessmentService) Save(ctx context.Context, userID string, typ model.AssessmentType, results []byte) (*model.Assessment, error) {
	if !model.ValidAssessmentType(typ) {
		return nil, fmt.Errorf("%w: unknown assessment type %q", model.ErrValidation, typ)
	}
	if len(results) == 0 {
		results = []byte("{}")
	}
	return s.store.Assessments().Add(ctx, &model.Assessment{UserID: userID, Type: typ, Results: results})
}
