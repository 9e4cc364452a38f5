package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/mindocean/mindocean/internal/llm"
	"github.com/mindocean/mindocean/internal/model"
	"github.com/mindocean/mindocean/internal/store"
)

const (
	importTextMin = 10
	importTextMax = 50000
	importItemCap = 20
)

const extractionSystemPrompt = "You are an expert memory archivist. Extract structured memories from personal text. Respond only with a valid JSON array."

const extractionPromptTemplate = `You are an expert at extracting personal memories and life stories from text.

Analyze the following text and extract distinct memories, stories, or experiences. For each memory:
- Give it a concise title
- Preserve the original voice and emotional content
- Assign the most fitting category
- Estimate the emotional tone (e.g., "joyful", "bittersweet", "proud", "melancholic", "grateful")
- Estimate the approximate year if mentioned or inferable
- Rate importance from 1-10 based on emotional weight and significance

TEXT TO ANALYZE:
%s

Return a JSON array of memory objects. Each object must have:
{
  "title": "short descriptive title",
  "content": "the memory text, preserving the person's voice",
  "category": one of: "childhood"|"family"|"career"|"relationship"|"achievement"|"challenge"|"lesson"|"tradition"|"travel"|"friendship"|"loss"|"joy"|"other",
  "emotionalTone": "descriptive emotional tone",
  "yearApprox": number or null,
  "importance": number 1-10
}

Extract between 1 and 20 memories. Return ONLY the JSON array, no other text.`

// reflectionPrompts is the fixed bank backing the weekly memory nudge.
var reflectionPrompts = []string{
	"What's a childhood memory involving food or a family meal?",
	"Describe a moment when you felt truly proud of yourself.",
	"What's a place that holds special meaning to you, and why?",
	"Tell the story of how you met someone important in your life.",
	"What's a challenge you overcame that shaped who you are?",
	"Describe a tradition or ritual that was important to your family.",
	"What's a piece of advice you'd give your younger self?",
	"Tell a story about a time you laughed until it hurt.",
	"What's a moment of unexpected kindness you experienced?",
	"Describe the home you grew up in - what do you remember most?",
}

// MemoryService handles direct memory CRUD plus bulk extraction from
// free-form text via the LLM.
type MemoryService struct {
	store store.Store
	llm   llm.Client
}

func NewMemoryService(s store.Store, c llm.Client) *MemoryService {
	return &MemoryService{store: s, llm: c}
}

func (s *MemoryService) List(ctx context.Context, userID string) ([]*model.Memory, error) {
	return s.store.Memories().List(ctx, userID)
}

func (s *MemoryService) Search(ctx context.Context, userID, query, category string) ([]*model.Memory, error) {
	if category != "" && !model.ValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", model.ErrValidation, category)
	}
	return s.store.Memories().Search(ctx, userID, query, category)
}

func (s *MemoryService) Add(ctx context.Context, m *model.Memory) (*model.Memory, error) {
	if strings.TrimSpace(m.Content) == "" {
		return nil, fmt.Errorf("%w: memory content is required", model.ErrValidation)
	}
	if m.Category != "" && !model.ValidCategory(m.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", model.ErrValidation, m.Category)
	}
	if m.Importance != 0 && (m.Importance < 1 || m.Importance > 10) {
		return nil, fmt.Errorf("%w: importance must be between 1 and 10", model.ErrValidation)
	}
	return s.store.Memories().Add(ctx, m)
}

func (s *MemoryService) Delete(ctx context.Context, userID, memoryID string) error {
	return s.store.Memories().Delete(ctx, userID, memoryID)
}

// ImportResult reports how many extracted memories were actually persisted.
type ImportResult struct {
	Imported int             `json:"imported"`
	Memories []*model.Memory `json:"memories"`
}

// ImportFromText asks the LLM to extract structured memories from text and
// persists every usable item. Items without string content are skipped
// silently, so Imported may be lower than the model's claimed count and may
// legitimately be zero.
func (s *MemoryService) ImportFromText(ctx context.Context, userID, text string) (*ImportResult, error) {
	if n := utf8.RuneCountInString(text); n < importTextMin || n > importTextMax {
		return nil, fmt.Errorf("%w: text must be between %d and %d characters", model.ErrValidation, importTextMin, importTextMax)
	}

	raw, err := s.llm.Complete(ctx,
		[]llm.Message{{Role: model.RoleUser, Content: fmt.Sprintf(extractionPromptTemplate, text)}},
		extractionSystemPrompt)
	if err != nil {
		return nil, err
	}

	span, ok := llm.FirstJSONArray(raw)
	if !ok {
		return nil, model.ErrExtractionParse
	}
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(span), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrExtractionParse, err)
	}
	if len(entries) == 0 {
		return nil, model.ErrNoMemoriesExtracted
	}

	if len(entries) > importItemCap {
		entries = entries[:importItemCap]
	}
	result := &ImportResult{Memories: []*model.Memory{}}
	for _, entry := range entries {
		// Non-object entries are skipped like any other unusable item.
		var item map[string]any
		if err := json.Unmarshal(entry, &item); err != nil {
			continue
		}
		m, ok := coerceExtractedMemory(userID, item)
		if !ok {
			continue
		}
		saved, err := s.store.Memories().Add(ctx, m)
		if err != nil {
			return nil, err
		}
		result.Memories = append(result.Memories, saved)
	}
	result.Imported = len(result.Memories)
	return result, nil
}

// coerceExtractedMemory normalizes one model-produced item. Content must be
// a non-empty string; every other field tolerates junk.
func coerceExtractedMemory(userID string, item map[string]any) (*model.Memory, bool) {
	content, ok := item["content"].(string)
	if !ok || content == "" {
		return nil, false
	}

	m := &model.Memory{UserID: userID, Content: content, Category: model.CategoryOther, Importance: 5}
	if cat, ok := item["category"].(string); ok && model.ValidCategory(cat) {
		m.Category = cat
	}
	if title, ok := item["title"].(string); ok && title != "" {
		m.Title = &title
	}
	if tone, ok := item["emotionalTone"].(string); ok && tone != "" {
		m.EmotionalTone = &tone
	}
	if year, ok := item["yearApprox"].(float64); ok {
		y := int(year)
		m.YearApprox = &y
	}
	if imp, ok := item["importance"].(float64); ok {
		v := int(imp + 0.5)
		if v < 1 {
			v = 1
		} else if v > 10 {
			v = 10
		}
		m.Importance = v
	}
	return m, true
}

// WeeklyPrompt is the payload for the periodic "add a memory" nudge.
type WeeklyPrompt struct {
	Prompt      string `json:"prompt"`
	MemoryCount int    `json:"memoryCount"`
	Message     string `json:"message"`
}

// Prompt picks one reflection prompt at random and wraps it in a greeting
// addressed to the profile's display name. Delivery is the caller's concern.
func (s *MemoryService) Prompt(ctx context.Context, userID string) (*WeeklyPrompt, error) {
	mems, err := s.store.Memories().List(ctx, userID)
	if err != nil {
		return nil, err
	}
	name := "there"
	if profile, err := s.store.Profiles().Get(ctx, userID); err == nil && profile.DisplayName != nil && *profile.DisplayName != "" {
		name = *profile.DisplayName
	}

	prompt := reflectionPrompts[rand.IntN(len(reflectionPrompts))]
	msg := fmt.Sprintf("Hi %s! You have %d memories recorded. Here's a prompt to inspire your next one:\n\n%q\n\nVisit your Memories page to record it.", name, len(mems), prompt)
	return &WeeklyPrompt{Prompt: prompt, MemoryCount: len(mems), Message: msg}, nil
}
