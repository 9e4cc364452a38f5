// Package completeness scores how much of a user's data is present, on a
// 0-100 scale used to gate persona synthesis.
package completeness

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mindocean/mindocean/internal/model"
)

// SynthesisThreshold is the minimum score required before synthesis may run.
const SynthesisThreshold = 20

// scoredTypes are the assessment types that contribute to the score.
// Values and emotional assessments exist but do not count here.
var scoredTypes = []model.AssessmentType{
	model.AssessmentBigFive,
	model.AssessmentCognitive,
	model.AssessmentCompetency,
}

// checklist returns the 11 profile fields that count toward the profile
// portion of the score. Humor style, legacy message and estate wishes are
// deliberately excluded.
func checklist(p *model.Profile) []*string {
	birthYear := (*string)(nil)
	if p.BirthYear != nil {
		s := strconv.Itoa(*p.BirthYear)
		birthYear = &s
	}
	return []*string{
		p.DisplayName,
		birthYear,
		p.Location,
		p.Occupation,
		p.LifeStory,
		p.CoreValues,
		p.Beliefs,
		p.LikesAndJoys,
		p.DislikesAndFears,
		p.CommunicationStyle,
		p.ImportantPeople,
	}
}

func filled(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

// Score computes the completeness score from a profile, memory count and the
// set of completed assessment types. A nil profile scores 0 unconditionally.
func Score(profile *model.Profile, memoryCount int, assessmentTypes []model.AssessmentType) int {
	if profile == nil {
		return 0
	}

	fields := checklist(profile)
	n := 0
	for _, f := range fields {
		if filled(f) {
			n++
		}
	}
	score := int(math.Round(float64(n) / float64(len(fields)) * 50))

	// Memories: 4 points each, capped at 20.
	m := memoryCount * 4
	if m > 20 {
		m = 20
	}
	score += m

	// Assessments: 10 points per distinct scored type, repeats ignored.
	seen := map[model.AssessmentType]bool{}
	for _, t := range assessmentTypes {
		seen[t] = true
	}
	for _, t := range scoredTypes {
		if seen[t] {
			score += 10
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Tips builds an ordered list of missing-data hints, truncated to 5.
func Tips(profile *model.Profile, memoryCount int, assessmentTypes []model.AssessmentType) []string {
	tips := []string{}
	if profile == nil {
		tips = append(tips, "Start your profile with your name and life story")
	} else {
		if !filled(profile.DisplayName) {
			tips = append(tips, "Add your display name")
		}
		if !filled(profile.LifeStory) {
			tips = append(tips, "Write your life story")
		}
		if !filled(profile.CoreValues) {
			tips = append(tips, "Share your core values")
		}
		if !filled(profile.CommunicationStyle) {
			tips = append(tips, "Describe your communication style")
		}
		if !filled(profile.ImportantPeople) {
			tips = append(tips, "List the important people in your life")
		}
		if !filled(profile.LegacyMessage) {
			tips = append(tips, "Leave a legacy message for loved ones")
		}
	}
	if memoryCount < 5 {
		tips = append(tips, fmt.Sprintf("Add %d more memories (you have %d)", 5-memoryCount, memoryCount))
	}
	seen := map[model.AssessmentType]bool{}
	for _, t := range assessmentTypes {
		seen[t] = true
	}
	if !seen[model.AssessmentBigFive] {
		tips = append(tips, "Complete the Big Five personality assessment")
	}
	if !seen[model.AssessmentCognitive] {
		tips = append(tips, "Complete the cognitive style assessment")
	}
	if len(tips) > 5 {
		tips = tips[:5]
	}
	return tips
}
