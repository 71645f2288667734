// Package prompt builds the instruction strings sent to the model.
// Everything here is pure string construction.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/perzonai/persona-engine/internal/models"
)

// personaSchema is the JSON shape the model is told to return. Parsing
// depends on the "personas" wrapper key.
const personaSchema = `{
  "personas": [
    {
      "name": "string",
      "demographics": {
        "age": number,
        "gender": "string",
        "location": "string",
        "occupation": "string",
        "income": "string"
      },
      "psychographics": {
        "personality": ["string"],
        "values": ["string"],
        "interests": ["string"],
        "lifestyle": "string"
      },
      "traits": ["string"],
      "painPoints": ["string"],
      "motivations": ["string"],
      "goals": ["string"],
      "messagingTone": "string",
      "preferredChannels": ["string"],
      "campaigns": ["string"],
      "buyingBehavior": {
        "decisionFactors": ["string"],
        "purchaseFrequency": "string",
        "budgetRange": "string",
        "researchHabits": ["string"]
      },
      "quotes": ["string"]
    }
  ]
}`

// chatHistoryWindow bounds how many prior turns seed the chat prompt.
const chatHistoryWindow = 5

// Generation builds the persona-generation instruction. The four
// required fields always appear; survey/review blocks only when set.
func Generation(req models.GenerateRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are an expert marketing strategist and consumer psychologist. Generate 3 detailed customer personas based on the following information:

Product Positioning: %s
Industry: %s
Target Region: %s
Product Category: %s
`, req.ProductPositioning, req.Industry, req.TargetRegion, req.ProductCategory)

	if req.SurveyData != "" {
		fmt.Fprintf(&b, "Survey Data: %s\n", req.SurveyData)
	}
	if req.ReviewData != "" {
		fmt.Fprintf(&b, "Review Data: %s\n", req.ReviewData)
	}

	fmt.Fprintf(&b, `
For each persona, provide:
1. Realistic name and complete demographics (age, gender, location, occupation, income level)
2. Detailed psychographic profile (personality traits, values, interests, lifestyle)
3. Key behavioral traits and characteristics
4. Specific pain points and challenges they face
5. Core motivations and goals
6. Preferred messaging tone and communication style
7. Preferred marketing channels and platforms
8. Specific campaign recommendations and messaging angles
9. Detailed buying behavior patterns and decision factors
10. 2-3 realistic quotes they might say

Make each persona distinct, realistic, and based on actual market research patterns for the %s industry in %s. Ensure diversity in demographics and psychographics.

Return the response as valid JSON with this exact structure:
%s`, req.Industry, req.TargetRegion, personaSchema)

	return b.String()
}

// Refinement embeds the current personas verbatim plus the five dials
// and instructs the model to return the same schema and cardinality.
func Refinement(personas []models.Persona, r models.Refinements, original models.GenerateRequest) string {
	personasJSON, _ := json.MarshalIndent(personas, "", "  ")
	originalJSON, _ := json.MarshalIndent(original, "", "  ")

	return fmt.Sprintf(`You are refining existing customer personas based on new parameters. Here are the original personas:

%s

Original Context:
%s

New Refinement Parameters:
- Budget Level: %d%%  (0%% = very budget-conscious, 100%% = premium/luxury focused)
- Customer Focus: %d%% (0%% = broad market appeal, 100%% = highly niche/specialized)
- Messaging Tone: %s
- Include Demographic Variations: %t
- Generate Campaign Suggestions: %t
- Include Pain Point Analysis: %t

Refine the personas to reflect these new parameters while maintaining their core identity. Adjust:
1. Budget-related traits and buying behavior
2. Specificity of needs and preferences based on customer focus level
3. Communication style and messaging preferences
4. Add demographic variations if requested
5. Update campaign suggestions if requested
6. Enhance pain point analysis if requested

Return the same number of personas as valid JSON with this exact structure:
%s`,
		personasJSON, originalJSON,
		r.BudgetLevel, r.CustomerFocus, r.Tone,
		r.IncludeDemographicVariations, r.GenerateCampaignSuggestions, r.IncludePainPointAnalysis,
		personaSchema)
}

// Chat builds the in-character roleplay instruction from the persona's
// identity and the most recent turns of the conversation.
func Chat(p models.Persona, message string, history []models.ConversationTurn) string {
	if len(history) > chatHistoryWindow {
		history = history[len(history)-chatHistoryWindow:]
	}
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Content))
	}

	return fmt.Sprintf(`You are %s, a %d-year-old %s from %s.

Your personality traits: %s
Your main concerns: %s
Your goals: %s
Your communication style: %s
Your typical quotes: %s

Recent conversation:
%s

User just said: %s

Respond as %s would, staying completely in character. Use your specific personality, concerns, and communication style. Keep the response conversational, authentic, and under 150 words. Reference your specific background and experiences when relevant. Do not break character or mention that you are an AI.`,
		p.Name, p.Demographics.Age, p.Demographics.Occupation, p.Demographics.Location,
		strings.Join(p.Traits, ", "),
		strings.Join(p.PainPoints, ", "),
		strings.Join(p.Goals, ", "),
		p.MessagingTone,
		strings.Join(p.Quotes, " | "),
		strings.Join(lines, "\n"),
		message,
		p.Name)
}
