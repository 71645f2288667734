package models

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Persona is a synthetic customer profile produced by the generation
// pipeline. List-valued fields are always non-nil after creation.
type Persona struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Avatar            string         `json:"avatar"`
	Demographics      Demographics   `json:"demographics"`
	Psychographics    Psychographics `json:"psychographics"`
	Traits            []string       `json:"traits"`
	PainPoints        []string       `json:"painPoints"`
	Motivations       []string       `json:"motivations"`
	Goals             []string       `json:"goals"`
	MessagingTone     string         `json:"messagingTone"`
	PreferredChannels []string       `json:"preferredChannels"`
	Campaigns         []string       `json:"campaigns"`
	BuyingBehavior    BuyingBehavior `json:"buyingBehavior"`
	Quotes            []string       `json:"quotes"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

type Demographics struct {
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	Location   string `json:"location"`
	Occupation string `json:"occupation"`
	Income     string `json:"income"`
}

type Psychographics struct {
	Personality []string `json:"personality"`
	Values      []string `json:"values"`
	Interests   []string `json:"interests"`
	Lifestyle   string   `json:"lifestyle"`
}

type BuyingBehavior struct {
	DecisionFactors   []string `json:"decisionFactors"`
	PurchaseFrequency string   `json:"purchaseFrequency"`
	BudgetRange       string   `json:"budgetRange"`
	ResearchHabits    []string `json:"researchHabits"`
}

// Normalize replaces nil list fields with empty slices so stored and
// serialized personas never carry absent lists.
func (p *Persona) Normalize() {
	if p.Traits == nil {
		p.Traits = []string{}
	}
	if p.PainPoints == nil {
		p.PainPoints = []string{}
	}
	if p.Motivations == nil {
		p.Motivations = []string{}
	}
	if p.Goals == nil {
		p.Goals = []string{}
	}
	if p.PreferredChannels == nil {
		p.PreferredChannels = []string{}
	}
	if p.Campaigns == nil {
		p.Campaigns = []string{}
	}
	if p.Quotes == nil {
		p.Quotes = []string{}
	}
	if p.Psychographics.Personality == nil {
		p.Psychographics.Personality = []string{}
	}
	if p.Psychographics.Values == nil {
		p.Psychographics.Values = []string{}
	}
	if p.Psychographics.Interests == nil {
		p.Psychographics.Interests = []string{}
	}
	if p.BuyingBehavior.DecisionFactors == nil {
		p.BuyingBehavior.DecisionFactors = []string{}
	}
	if p.BuyingBehavior.ResearchHabits == nil {
		p.BuyingBehavior.ResearchHabits = []string{}
	}
}

// ConversationTurn is one entry in a persona's chat log.
type ConversationTurn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ShareableLink references a set of persona IDs, not snapshots: the
// resolved personas reflect store state at access time.
type ShareableLink struct {
	ID           string     `json:"id"`
	PersonaIDs   []string   `json:"personaIds"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	IsPublic     bool       `json:"isPublic"`
	Password     string     `json:"-"`
	AccessCount  int        `json:"accessCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAccessed *time.Time `json:"lastAccessed,omitempty"`
}

// UploadedFile holds transient upload state for one request.
type UploadedFile struct {
	Filename      string        `json:"filename"`
	Content       string        `json:"-"`
	Type          string        `json:"type"` // csv, json, txt
	ProcessedData ProcessedData `json:"processedData"`
}

// ProcessedData is the type-specific summary of an uploaded file.
// Only the fields matching Type are populated.
type ProcessedData struct {
	Type    string   `json:"type"`
	Headers []string `json:"headers,omitempty"`

	// csv
	TotalRows  int                 `json:"totalRows,omitempty"`
	Columns    int                 `json:"columns,omitempty"`
	SampleRows []map[string]string `json:"sampleRows,omitempty"`

	// json
	Keys        []string `json:"keys,omitempty"`
	DataType    string   `json:"dataType,omitempty"`
	ItemCount   int      `json:"itemCount,omitempty"`
	SampleItems []any    `json:"sampleItems,omitempty"`

	// text
	LineCount   int      `json:"lineCount,omitempty"`
	WordCount   int      `json:"wordCount,omitempty"`
	CharCount   int      `json:"charCount,omitempty"`
	SampleLines []string `json:"sampleLines,omitempty"`
	ContentKind string   `json:"contentKind,omitempty"`
}

// NewPersonaID returns a fresh persona identifier.
func NewPersonaID() string {
	return "persona_" + uuid.NewString()
}

// NewShareID returns a fresh share identifier.
func NewShareID() string {
	return "share_" + uuid.NewString()
}

// NewSessionID correlates the personas of one generation call.
func NewSessionID() string {
	return "session_" + uuid.NewString()
}

// NewFileID returns a fresh upload identifier.
func NewFileID() string {
	return "file_" + uuid.NewString()
}

// AvatarURL derives a deterministic dicebear avatar from the persona name.
func AvatarURL(name string) string {
	return fmt.Sprintf(
		"https://api.dicebear.com/7.x/avataaars/svg?seed=%s&backgroundColor=b6e3f4,c0aede,d1d4f9,ffd5dc,ffdfbf&radius=50",
		url.QueryEscape(name),
	)
}
