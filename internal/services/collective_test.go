package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mindocean/mindocean/internal/llm"
	"github.com/mindocean/mindocean/internal/model"
)

// scriptedLLM answers per prompt content instead of call order, since the
// fan-out is concurrent.
type scriptedLLM struct {
	mu      sync.Mutex
	answers func(prompt string) (string, error)
	calls   int
}

func (s *scriptedLLM) Complete(ctx context.Context, messages []llm.Message, systemPrompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.answers(messages[0].Content)
}

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func seedCollectiveMinds(t *testing.T, st *fakeStore, n int) {
	t.Helper()
	active := model.PersonaActive
	yes := true
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Mind %d", i)
		_, err := st.Personas().Upsert(context.Background(), fmt.Sprintf("user-%d", i), model.PersonaUpdate{
			Status: &active, InCollective: &yes, EntityName: &name,
			PersonalitySynthesis: strp("A thoughtful mind."),
		})
		require.NoError(t, err)
	}
}

func voteJSON(vote string) string {
	return fmt.Sprintf(`{"vote": %q, "perspective": "my view", "reasoning": "because"}`, vote)
}

func TestConsultValidation(t *testing.T) {
	svc := NewCollectiveService(newFakeStore(), &fakeLLM{}, zerolog.Nop())

	_, err := svc.Consult(context.Background(), "")
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Consult(context.Background(), strings.Repeat("x", 1001))
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestConsultEmptyCollective(t *testing.T) {
	mock := &fakeLLM{}
	svc := NewCollectiveService(newFakeStore(), mock, zerolog.Nop())

	res, err := svc.Consult(context.Background(), "Should we?")
	require.NoError(t, err)
	require.Equal(t, 0, res.TotalMinds)
	require.Equal(t, model.VoteNeutral, res.Majority)
	require.Empty(t, res.Perspectives)
	require.Equal(t, model.VoteCounts{}, res.Votes)
	require.Equal(t, model.VotePercentages{}, res.Percentages)
	require.NotEmpty(t, res.Answer)
	require.Equal(t, 0, mock.callCount(), "no LLM calls for an empty collective")
}

func TestConsultTallyAndMajority(t *testing.T) {
	st := newFakeStore()
	seedCollectiveMinds(t, st, 3)

	mock := &scriptedLLM{answers: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Mind 0"):
			return voteJSON("for"), nil
		case strings.Contains(prompt, "Mind 1"):
			return voteJSON("for"), nil
		default:
			return voteJSON("against"), nil
		}
	}}
	svc := NewCollectiveService(st, mock, zerolog.Nop())

	res, err := svc.Consult(context.Background(), "Should we sail?")
	require.NoError(t, err)
	require.Equal(t, 3, res.TotalMinds)
	require.Equal(t, model.VoteCounts{For: 2, Against: 1}, res.Votes)
	require.Equal(t, model.VoteFor, res.Majority)
	require.Equal(t, 67, res.Percentages.For)
	require.Equal(t, 33, res.Percentages.Against)
	require.Equal(t, 0, res.Percentages.Neutral)
	require.Equal(t, 100, res.Percentages.For+res.Percentages.Against+res.Percentages.Neutral)
	require.Len(t, res.Perspectives, 3)
	require.Contains(t, res.Answer, "3 minds have been heard")
	require.Contains(t, res.Answer, "FOR")
}

func TestConsultUnrecognizedVoteIsNeutral(t *testing.T) {
	st := newFakeStore()
	seedCollectiveMinds(t, st, 1)

	mock := &scriptedLLM{answers: func(string) (string, error) {
		return voteJSON("abstain"), nil
	}}
	svc := NewCollectiveService(st, mock, zerolog.Nop())

	res, err := svc.Consult(context.Background(), "Well?")
	require.NoError(t, err)
	require.Equal(t, model.VoteCounts{Neutral: 1}, res.Votes)
	require.Equal(t, model.VoteNeutral, res.Perspectives[0].Vote)
}

func TestConsultTieResolvesNeutral(t *testing.T) {
	st := newFakeStore()
	seedCollectiveMinds(t, st, 2)

	mock := &scriptedLLM{answers: func(prompt string) (string, error) {
		if strings.Contains(prompt, "Mind 0") {
			return voteJSON("for"), nil
		}
		return voteJSON("against"), nil
	}}
	svc := NewCollectiveService(st, mock, zerolog.Nop())

	res, err := svc.Consult(context.Background(), "Split decision?")
	require.NoError(t, err)
	require.Equal(t, model.VoteNeutral, res.Majority)
}

func TestConsultFanOutCap(t *testing.T) {
	st := newFakeStore()
	seedCollectiveMinds(t, st, 15)

	mock := &scriptedLLM{answers: func(string) (string, error) {
		return voteJSON("for"), nil
	}}
	svc := NewCollectiveService(st, mock, zerolog.Nop())

	res, err := svc.Consult(context.Background(), "Everyone in?")
	require.NoError(t, err)
	require.Equal(t, 10, mock.callCount(), "fan-out must stop at ten minds")
	require.Equal(t, 10, res.TotalMinds)
}

func TestConsultPartialFailureIsolation(t *testing.T) {
	st := newFakeStore()
	seedCollectiveMinds(t, st, 4)

	mock := &scriptedLLM{answers: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Mind 1"):
			return "", errors.New("provider timeout")
		case strings.Contains(prompt, "Mind 2"):
			return "no json here", nil
		default:
			return voteJSON("for"), nil
		}
	}}
	svc := NewCollectiveService(st, mock, zerolog.Nop())

	res, err := svc.Consult(context.Background(), "Carry on despite losses?")
	require.NoError(t, err)
	require.Equal(t, 2, res.TotalMinds, "failed minds are excluded, not fatal")
	require.Len(t, res.Perspectives, 2)
	require.Equal(t, model.VoteCounts{For: 2}, res.Votes)
	require.Equal(t, model.VotePercentages{For: 100}, res.Percentages)
	require.Equal(t, model.VoteFor, res.Majority)
}

func TestConsultAllFail(t *testing.T) {
	st := newFakeStore()
	seedCollectiveMinds(t, st, 2)

	mock := &scriptedLLM{answers: func(string) (string, error) {
		return "", errors.New("provider down")
	}}
	svc := NewCollectiveService(st, mock, zerolog.Nop())

	res, err := svc.Consult(context.Background(), "Anyone home?")
	require.NoError(t, err)
	require.Equal(t, 0, res.TotalMinds)
	require.Equal(t, model.VotePercentages{}, res.Percentages)
	require.Equal(t, model.VoteNeutral, res.Majority)
}
