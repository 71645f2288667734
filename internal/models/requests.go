package models

import "time"

// GenerateRequest carries the market context for one generation call.
// Binding tags mirror the upstream validation rules: four required
// fields, survey/review text optional and size-capped.
type GenerateRequest struct {
	ProductPositioning string `json:"productPositioning" form:"productPositioning" binding:"required,min=10,max=1000"`
	Industry           string `json:"industry" form:"industry" binding:"required"`
	TargetRegion       string `json:"targetRegion" form:"targetRegion" binding:"required"`
	ProductCategory    string `json:"productCategory" form:"productCategory" binding:"required"`
	SurveyData         string `json:"surveyData" form:"surveyData" binding:"omitempty,max=10000"`
	ReviewData         string `json:"reviewData" form:"reviewData" binding:"omitempty,max=10000"`
}

// Refinements are the five dials a refinement call adjusts.
type Refinements struct {
	BudgetLevel                  int    `json:"budgetLevel" binding:"min=0,max=100"`
	CustomerFocus                int    `json:"customerFocus" binding:"min=0,max=100"`
	Tone                         string `json:"tone" binding:"required,oneof=formal friendly humorous authoritative empathetic"`
	IncludeDemographicVariations bool   `json:"includeDemographicVariations"`
	GenerateCampaignSuggestions  bool   `json:"generateCampaignSuggestions"`
	IncludePainPointAnalysis     bool   `json:"includePainPointAnalysis"`
}

type RefineRequest struct {
	PersonaIDs      []string        `json:"personaIds" binding:"required,min=1"`
	Refinements     Refinements     `json:"refinements" binding:"required"`
	OriginalContext GenerateRequest `json:"originalContext"`
}

type ChatRequest struct {
	PersonaID string             `json:"personaId" binding:"required"`
	Message   string             `json:"message" binding:"required,min=1,max=1000"`
	History   []ConversationTurn `json:"conversationHistory"`
}

type ShareSettings struct {
	PublicAccess bool      `json:"publicAccess"`
	ExpiresIn    int       `json:"expiresIn"`           // hours; 0 means the server default
	ExpiresAt    time.Time `json:"expiresAt,omitempty"` // absolute; wins over ExpiresIn when set
	Password     string    `json:"password"`
}

type ShareRequest struct {
	PersonaIDs []string      `json:"personaIds" binding:"required,min=1"`
	Settings   ShareSettings `json:"settings"`
}

type ExportRequest struct {
	PersonaIDs []string `json:"personaIds" binding:"required,min=1"`
	Format     string   `json:"format" binding:"required,oneof=json csv pdf"`
}
