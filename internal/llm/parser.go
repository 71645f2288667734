package llm

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/perzonai/persona-engine/internal/models"
)

// personaEnvelope is the wrapper shape the prompts ask the model for.
type personaEnvelope struct {
	Personas []models.Persona `json:"personas"`
}

// ExtractPersonas recovers a persona list from free-form model output.
// It locates the first balanced {...} span, repairs malformed JSON if
// needed, and decodes. A bare persona object is wrapped as a
// single-element list. Every failure state collapses to an empty list;
// nothing propagates.
func ExtractPersonas(text string) []models.Persona {
	span := balancedObject(text)
	if span == "" {
		return nil
	}

	if personas := decodePersonas(span); personas != nil {
		return personas
	}

	// The model frequently truncates or mis-quotes its JSON; repair
	// before giving up.
	repaired, err := jsonrepair.JSONRepair(span)
	if err != nil {
		return nil
	}
	return decodePersonas(repaired)
}

func decodePersonas(s string) []models.Persona {
	var env personaEnvelope
	if err := json.Unmarshal([]byte(s), &env); err == nil && len(env.Personas) > 0 {
		return env.Personas
	}

	var single models.Persona
	if err := json.Unmarshal([]byte(s), &single); err == nil && single.Name != "" {
		return []models.Persona{single}
	}
	return nil
}

// balancedObject returns the first brace-balanced object span in text,
// skipping braces inside JSON strings. An unterminated object is
// returned as-is from its opening brace so the repair pass can close it.
func balancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return text[start:]
}

// trimReply strips whitespace and any markdown fencing around a chat
// reply.
func trimReply(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
