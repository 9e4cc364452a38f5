package model

import (
	"encoding/json"
	"time"
)

// Profile holds a user's self-described narrative and identity fields.
// One per user; saves overwrite fields in place.
type Profile struct {
	UserID             string    `json:"userId"`
	DisplayName        *string   `json:"displayName,omitempty"`
	BirthYear          *int      `json:"birthYear,omitempty"`
	Location           *string   `json:"location,omitempty"`
	Occupation         *string   `json:"occupation,omitempty"`
	LifeStory          *string   `json:"lifeStory,omitempty"`
	CoreValues         *string   `json:"coreValues,omitempty"`
	Beliefs            *string   `json:"beliefs,omitempty"`
	LikesAndJoys       *string   `json:"likesAndJoys,omitempty"`
	DislikesAndFears   *string   `json:"dislikesAndFears,omitempty"`
	CommunicationStyle *string   `json:"communicationStyle,omitempty"`
	HumorStyle         *string   `json:"humorStyle,omitempty"`
	ImportantPeople    *string   `json:"importantPeople,omitempty"`
	LegacyMessage      *string   `json:"legacyMessage,omitempty"`
	EstateWishes       *string   `json:"estateWishes,omitempty"`
	CreationTime       time.Time `json:"creationTime"`
	UpdateTime         time.Time `json:"updateTime"`
}

// Memory categories form a closed enumeration; anything unrecognized is
// coerced to CategoryOther before persistence.
const (
	CategoryChildhood    = "childhood"
	CategoryFamily       = "family"
	CategoryCareer       = "career"
	CategoryRelationship = "relationship"
	CategoryAchievement  = "achievement"
	CategoryChallenge    = "challenge"
	CategoryLesson       = "lesson"
	CategoryTradition    = "tradition"
	CategoryTravel       = "travel"
	CategoryFriendship   = "friendship"
	CategoryLoss         = "loss"
	CategoryJoy          = "joy"
	CategoryOther        = "other"
)

// MemoryCategories lists every valid category value.
var MemoryCategories = []string{
	CategoryChildhood, CategoryFamily, CategoryCareer, CategoryRelationship,
	CategoryAchievement, CategoryChallenge, CategoryLesson, CategoryTradition,
	CategoryTravel, CategoryFriendship, CategoryLoss, CategoryJoy, CategoryOther,
}

// ValidCategory reports whether v is one of the known memory categories.
func ValidCategory(v string) bool {
	for _, c := range MemoryCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Memory is an immutable recollection owned by a user. Memories are created
// by direct entry or bulk extraction and may only be deleted afterwards.
type Memory struct {
	MemoryID      string    `json:"memoryId"`
	UserID        string    `json:"userId"`
	Title         *string   `json:"title,omitempty"`
	Content       string    `json:"content"`
	Category      string    `json:"category"`
	EmotionalTone *string   `json:"emotionalTone,omitempty"`
	YearApprox    *int      `json:"yearApprox,omitempty"`
	Importance    int       `json:"importance"`
	CreationTime  time.Time `json:"creationTime"`
}

// AssessmentType tags a completed psychometric test.
type AssessmentType string

const (
	AssessmentBigFive    AssessmentType = "big_five"
	AssessmentCognitive  AssessmentType = "cognitive"
	AssessmentCompetency AssessmentType = "competency"
	AssessmentValues     AssessmentType = "values"
	AssessmentEmotional  AssessmentType = "emotional"
)

// ValidAssessmentType reports whether t is a known assessment type.
func ValidAssessmentType(t AssessmentType) bool {
	switch t {
	case AssessmentBigFive, AssessmentCognitive, AssessmentCompetency, AssessmentValues, AssessmentEmotional:
		return true
	}
	return false
}

// Assessment stores one completed test with its opaque result payload.
// Repeated completions of the same type accumulate.
type Assessment struct {
	AssessmentID string          `json:"assessmentId"`
	UserID       string          `json:"userId"`
	Type         AssessmentType  `json:"assessmentType"`
	Results      json.RawMessage `json:"results"`
	CompletedAt  time.Time       `json:"completedAt"`
}

// Persona lifecycle states.
const (
	PersonaBuilding = "building"
	PersonaActive   = "active"
	PersonaArchived = "archived"
)

// Persona is the synthesized mind entity derived from a user's profile,
// memories and assessments. At most one per user.
type Persona struct {
	PersonaID            string     `json:"personaId"`
	UserID               string     `json:"userId"`
	Status               string     `json:"status"`
	IsPublic             bool       `json:"isPublic"`
	InCollective         bool       `json:"inCollective"`
	EntityName           *string    `json:"entityName,omitempty"`
	EntityBio            *string    `json:"entityBio,omitempty"`
	PersonalitySynthesis *string    `json:"personalitySynthesis,omitempty"`
	SystemPrompt         *string    `json:"systemPrompt,omitempty"`
	Slug                 *string    `json:"slug,omitempty"`
	ShareToken           *string    `json:"shareToken,omitempty"`
	TotalConversations   int        `json:"totalConversations"`
	LastContactedAt      *time.Time `json:"lastContactedAt,omitempty"`
	JoinedCollectiveAt   *time.Time `json:"joinedCollectiveAt,omitempty"`
	CollectiveJoinReason *string    `json:"collectiveJoinReason,omitempty"`
	CreationTime         time.Time  `json:"creationTime"`
}

// PersonaUpdate carries a partial persona mutation; nil fields are untouched.
type PersonaUpdate struct {
	Status               *string
	IsPublic             *bool
	InCollective         *bool
	EntityName           *string
	EntityBio            *string
	PersonalitySynthesis *string
	SystemPrompt         *string
	Slug                 *string
	ShareToken           *string
	JoinedCollectiveAt   *time.Time
	CollectiveJoinReason *string
}

// Conversation modes select the system-prompt framing for a chat session.
const (
	ModeComfort = "comfort"
	ModeAdvice  = "advice"
	ModeEstate  = "estate"
	ModeGeneral = "general"
)

// ValidMode reports whether m is a known conversation mode.
func ValidMode(m string) bool {
	switch m {
	case ModeComfort, ModeAdvice, ModeEstate, ModeGeneral:
		return true
	}
	return false
}

// Conversation ties a visitor to a persona for one chat session.
// Sessions are never resumed; a new row is created each time.
type Conversation struct {
	ConversationID string    `json:"conversationId"`
	PersonaID      string    `json:"personaId"`
	VisitorUserID  *string   `json:"visitorUserId,omitempty"`
	VisitorName    *string   `json:"visitorName,omitempty"`
	Mode           string    `json:"mode"`
	CreationTime   time.Time `json:"creationTime"`
}

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one immutable turn in a conversation, ordered by creation time.
type ChatMessage struct {
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreationTime   time.Time `json:"creationTime"`
}

// CompletenessReport pairs the 0-100 score with ordered missing-data hints.
type CompletenessReport struct {
	Score int      `json:"completeness"`
	Tips  []string `json:"tips"`
}

// ProfileStats is the dashboard aggregate over a user's data and persona.
type ProfileStats struct {
	MemoryCount        int     `json:"memoryCount"`
	AssessmentCount    int     `json:"assessmentCount"`
	EntityStatus       *string `json:"entityStatus"`
	EntityName         *string `json:"entityName"`
	EntitySlug         *string `json:"entitySlug"`
	Completeness       int     `json:"completeness"`
	IsPublic           bool    `json:"isPublic"`
	InCollective       bool    `json:"inCollective"`
	TotalConversations int     `json:"totalConversations"`
}

// ShareLink exposes a persona's stable public identifiers and their URLs.
type ShareLink struct {
	Slug       string `json:"slug"`
	ShareToken string `json:"shareToken"`
	SlugURL    string `json:"slugUrl"`
	TokenURL   string `json:"tokenUrl"`
}

// PublicPersona is the projection safe to return for slug/token lookups.
type PublicPersona struct {
	PersonaID          string    `json:"id"`
	EntityName         *string   `json:"entityName"`
	EntityBio          *string   `json:"entityBio"`
	Status             string    `json:"status"`
	IsPublic           bool      `json:"isPublic"`
	InCollective       bool      `json:"inCollective"`
	Slug               *string   `json:"slug,omitempty"`
	ShareToken         *string   `json:"shareToken,omitempty"`
	TotalConversations int       `json:"totalConversations"`
	CreationTime       time.Time `json:"createdAt"`
}

// Vote values cast during collective deliberation.
const (
	VoteFor     = "for"
	VoteAgainst = "against"
	VoteNeutral = "neutral"
)

// VoteCounts tallies raw votes per value.
type VoteCounts struct {
	For     int `json:"for"`
	Against int `json:"against"`
	Neutral int `json:"neutral"`
}

// VotePercentages holds integer percentages that sum to exactly 100 whenever
// any perspective was collected; neutral is derived by subtraction.
type VotePercentages struct {
	For     int `json:"for"`
	Against int `json:"against"`
	Neutral int `json:"neutral"`
}

// Perspective is one persona's contribution to a deliberation.
type Perspective struct {
	MindName    string `json:"mindName"`
	Vote        string `json:"vote"`
	Perspective string `json:"perspective"`
	Reasoning   string `json:"reasoning"`
}

// DeliberationResult is the aggregate outcome of a collective consultation.
type DeliberationResult struct {
	Answer       string          `json:"answer"`
	Votes        VoteCounts      `json:"votes"`
	Percentages  VotePercentages `json:"percentages"`
	Perspectives []Perspective   `json:"perspectives"`
	TotalMinds   int             `json:"totalMinds"`
	Majority     string          `json:"majority"`
}

// OceanMind is the browse projection of a public persona.
type OceanMind struct {
	PersonaID     string  `json:"id"`
	Name          *string `json:"name"`
	Bio           *string `json:"bio"`
	InCollective  bool    `json:"inCollective"`
	Conversations int     `json:"conversations"`
	Slug          *string `json:"slug,omitempty"`
}

// OceanView is the public browse result.
type OceanView struct {
	SwimmingMinds   []OceanMind `json:"swimmingMinds"`
	CollectiveCount int         `json:"collectiveCount"`
}
