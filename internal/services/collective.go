package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mindocean/mindocean/internal/llm"
	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/store"
)

const (
	questionMaxLen = 1000

	// deliberationFanOut caps how many minds are consulted per question.
	deliberationFanOut = 10
)

const voteSystemPrompt = "You are embodying a specific person's perspective. Respond only with valid JSON."

const votePromptTemplate = `You are %s. %s

Question posed to The Human Mind collective: %q

Respond with your perspective as this individual mind. Vote FOR, AGAINST, or NEUTRAL on the question.
Format as JSON: { "vote": "for"|"against"|"neutral", "perspective": "your 2-3 sentence view", "reasoning": "brief reasoning" }`

const emptyCollectiveAnswer = "The collective is empty. No minds have joined yet. Be the first to add your mind to The Human Mind."

// CollectiveService answers posed questions by fanning out to the minds that
// opted into the collective and tallying their votes.
type CollectiveService struct {
	store  store.Store
	llm    llm.Client
	logger zerolog.Logger
}

func NewCollectiveService(s store.Store, c llm.Client, logger zerolog.Logger) *CollectiveService {
	return &CollectiveService{store: s, llm: c, logger: logger}
}

// GetMinds lists the active personas currently in the collective.
func (s *CollectiveService) GetMinds(ctx context.Context) ([]*model.Persona, error) {
	return s.store.Personas().ListCollective(ctx)
}

type voteResponse struct {
	Vote        string `json:"vote"`
	Perspective string `json:"perspective"`
	Reasoning   string `json:"reasoning"`
}

// Consult poses a question to up to ten collective minds concurrently and
// aggregates their votes. A single mind's failure is logged and excluded
// from the tally; it never aborts the consultation or cancels siblings.
func (s *CollectiveService) Consult(ctx context.Context, question string) (*model.DeliberationResult, error) {
	if n := utf8.RuneCountInString(question); n < 1 || n > questionMaxLen {
		return nil, fmt.Errorf("%w: question must be between 1 and %d characters", model.ErrValidation, questionMaxLen)
	}

	minds, err := s.store.Personas().ListCollective(ctx)
	if err != nil {
		return nil, err
	}
	if len(minds) == 0 {
		return &model.DeliberationResult{
			Answer:       emptyCollectiveAnswer,
			Perspectives: []model.Perspective{},
			Majority:     model.VoteNeutral,
		}, nil
	}

	if len(minds) > deliberationFanOut {
		minds = minds[:deliberationFanOut]
	}

	// One slot per mind keeps perspectives in processing order; failed
	// slots stay nil and are dropped after the wait.
	results := make([]*model.Perspective, len(minds))
	var g errgroup.Group
	g.SetLimit(deliberationFanOut)
	for i, mind := range minds {
		g.Go(func() error {
			p, err := s.consultOne(ctx, mind, question)
			if err != nil {
				s.logger.Warn().Err(err).
					Str("persona_id", mind.PersonaID).
					Msg("mind failed to produce a perspective")
				return nil
			}
			results[i] = p
			return nil
		})
	}
	_ = g.Wait()

	var votes model.VoteCounts
	perspectives := make([]model.Perspective, 0, len(results))
	for _, p := range results {
		if p == nil {
			continue
		}
		perspectives = append(perspectives, *p)
		switch p.Vote {
		case model.VoteFor:
			votes.For++
		case model.VoteAgainst:
			votes.Against++
		default:
			votes.Neutral++
		}
	}

	total := len(perspectives)
	var pct model.VotePercentages
	if total > 0 {
		pct.For = int(math.Round(float64(votes.For) / float64(total) * 100))
		pct.Against = int(math.Round(float64(votes.Against) / float64(total) * 100))
		pct.Neutral = 100 - pct.For - pct.Against
	}

	majority := model.VoteNeutral
	if votes.For > votes.Against && votes.For > votes.Neutral {
		majority = model.VoteFor
	} else if votes.Against > votes.For && votes.Against > votes.Neutral {
		majority = model.VoteAgainst
	}

	answer := fmt.Sprintf(
		"The Human Mind has deliberated. %d minds have been heard.\n\n**Democratic Vote:** %d%% For | %d%% Against | %d%% Neutral\n\n**The collective position: %s**\n\nBelow, each mind speaks for themselves.",
		total, pct.For, pct.Against, pct.Neutral, strings.ToUpper(majority))

	return &model.DeliberationResult{
		Answer:       answer,
		Votes:        votes,
		Percentages:  pct,
		Perspectives: perspectives,
		TotalMinds:   total,
		Majority:     majority,
	}, nil
}

func (s *CollectiveService) consultOne(ctx context.Context, mind *model.Persona, question string) (*model.Perspective, error) {
	identity := ""
	if mind.PersonalitySynthesis != nil && *mind.PersonalitySynthesis != "" {
		identity = *mind.PersonalitySynthesis
	} else if mind.EntityBio != nil {
		identity = *mind.EntityBio
	}
	prompt := fmt.Sprintf(votePromptTemplate, orFallback(mind.EntityName, "Anonymous"), identity, question)

	raw, err := s.llm.Complete(ctx, []llm.Message{{Role: model.RoleUser, Content: prompt}}, voteSystemPrompt)
	if err != nil {
		return nil, err
	}
	span, ok := llm.FirstJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in vote response")
	}
	var vote voteResponse
	if err := json.Unmarshal([]byte(span), &vote); err != nil {
		return nil, fmt.Errorf("parse vote response: %w", err)
	}

	// Anything the model invents outside the ballot counts as neutral.
	if vote.Vote != model.VoteFor && vote.Vote != model.VoteAgainst {
		vote.Vote = model.VoteNeutral
	}
	return &model.Perspective{
		MindName:    orFallback(mind.EntityName, "Anonymous"),
		Vote:        vote.Vote,
		Perspective: vote.Perspective,
		Reasoning:   vote.Reasoning,
	}, nil
}
