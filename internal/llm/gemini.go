// Package llm wraps the Gemini text-generation API and supplies the
// deterministic offline fallback used when no credential is configured
// or a call fails.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/perzonai/persona-engine/internal/models"
	"github.com/perzonai/persona-engine/internal/prompt"
)

// Sampling temperatures per call site: creative first drafts, more
// conservative edits, loose in-character chat.
const (
	tempGeneration float32 = 0.7
	tempRefinement float32 = 0.6
	tempChat       float32 = 0.8

	maxTokensPersonas int32 = 4096
	maxTokensChat     int32 = 200
)

// Gateway invokes Gemini and normalizes its output to plain text. A
// Gateway with no client (missing GEMINI_API_KEY) serves fallback data
// for every call.
type Gateway struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// New builds a Gateway. An empty apiKey yields an offline gateway
// rather than an error; generation then runs entirely on mock data.
func New(ctx context.Context, apiKey, model string, timeout time.Duration, log *zap.Logger) (*Gateway, error) {
	g := &Gateway{model: model, timeout: timeout, log: log}
	if apiKey == "" {
		log.Warn("GEMINI_API_KEY not set, serving mock responses")
		return g, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Close releases the underlying client, if any.
func (g *Gateway) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

// Online reports whether a credential is configured.
func (g *Gateway) Online() bool {
	return g.client != nil
}

// complete runs one bounded completion call and returns the raw text.
func (g *Gateway) complete(ctx context.Context, promptText string, temperature float32, maxTokens int32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(temperature)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(maxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(promptText))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// GeneratePersonas produces exactly three personas for the request.
// Call or parse failure falls back to the fixed example set; degraded
// reports when that happened. The error path never reaches the caller.
func (g *Gateway) GeneratePersonas(ctx context.Context, req models.GenerateRequest) (personas []models.Persona, degraded bool) {
	if g.client != nil {
		text, err := g.complete(ctx, prompt.Generation(req), tempGeneration, maxTokensPersonas)
		if err == nil {
			if parsed := ExtractPersonas(text); len(parsed) > 0 {
				return finalize(parsed), false
			}
			g.log.Error("generation response yielded no personas", zap.Int("responseLen", len(text)))
		} else {
			g.log.Error("persona generation call failed", zap.Error(err))
		}
	}
	return mockPersonas(), true
}

// RefinePersonas adjusts existing personas along the refinement dials.
// Fallback applies mechanical field substitutions to the inputs.
func (g *Gateway) RefinePersonas(ctx context.Context, personas []models.Persona, r models.Refinements, original models.GenerateRequest) (refined []models.Persona, degraded bool) {
	if g.client != nil {
		text, err := g.complete(ctx, prompt.Refinement(personas, r, original), tempRefinement, maxTokensPersonas)
		if err == nil {
			if parsed := ExtractPersonas(text); len(parsed) == len(personas) {
				return mergeRefined(personas, parsed), false
			}
			g.log.Error("refinement response cardinality mismatch", zap.Int("want", len(personas)))
		} else {
			g.log.Error("persona refinement call failed", zap.Error(err))
		}
	}
	return refineMock(personas, r), true
}

// ChatReply answers a message in the persona's voice. Fallback picks a
// canned line from the persona-keyed response table.
func (g *Gateway) ChatReply(ctx context.Context, p models.Persona, message string, history []models.ConversationTurn) (reply string, degraded bool) {
	if g.client != nil {
		text, err := g.complete(ctx, prompt.Chat(p, message, history), tempChat, maxTokensChat)
		switch {
		case err != nil:
			g.log.Error("chat call failed", zap.String("persona", p.Name), zap.Error(err))
		case text == "":
			g.log.Error("chat reply empty", zap.String("persona", p.Name))
		default:
			return trimReply(text), false
		}
	}
	return mockChatReply(p), true
}

// finalize assigns identity and timestamps to freshly parsed personas.
func finalize(personas []models.Persona) []models.Persona {
	now := time.Now().UTC()
	for i := range personas {
		personas[i].ID = models.NewPersonaID()
		personas[i].Avatar = models.AvatarURL(personas[i].Name)
		personas[i].CreatedAt = now
		personas[i].UpdatedAt = now
		personas[i].Normalize()
	}
	return personas
}

// mergeRefined keeps each existing persona's identity while taking the
// model's adjusted fields, index-aligned with the input.
func mergeRefined(existing, parsed []models.Persona) []models.Persona {
	now := time.Now().UTC()
	out := make([]models.Persona, len(existing))
	for i := range existing {
		p := parsed[i]
		p.ID = existing[i].ID
		p.Avatar = existing[i].Avatar
		p.CreatedAt = existing[i].CreatedAt
		p.UpdatedAt = now
		if p.Name == "" {
			p.Name = existing[i].Name
		}
		p.Normalize()
		out[i] = p
	}
	return out
}
