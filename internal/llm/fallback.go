package llm

import (
	"math/rand"
	"regexp"
	"time"

	"github.com/perzonai/persona-engine/internal/models"
)

// mockPersonas returns the hand-authored example set served whenever
// the model is unreachable. Names and demographics are fixed; only
// identity and timestamps vary per call.
func mockPersonas() []models.Persona {
	now := time.Now().UTC()
	personas := []models.Persona{
		{
			Name: "Sarah Chen",
			Demographics: models.Demographics{
				Age: 28, Gender: "Female", Location: "San Francisco, CA",
				Occupation: "UX Designer", Income: "$85,000",
			},
			Psychographics: models.Psychographics{
				Personality: []string{"Analytical", "Creative", "Detail-oriented", "Collaborative"},
				Values:      []string{"Innovation", "Quality", "Work-life balance", "Continuous learning"},
				Interests:   []string{"Design trends", "Technology", "Sustainability", "Travel"},
				Lifestyle:   "Urban professional with active social life",
			},
			Traits: []string{"Tech-savvy", "Quality-focused", "Time-conscious", "Collaborative"},
			PainPoints: []string{
				"Overwhelmed by too many tool options",
				"Needs seamless team collaboration",
				"Values intuitive user interfaces",
			},
			Motivations:       []string{"Career advancement", "Creative fulfillment", "Work efficiency"},
			Goals:             []string{"Streamline workflow", "Improve team productivity", "Stay current with trends"},
			MessagingTone:     "Professional yet approachable",
			PreferredChannels: []string{"LinkedIn", "Design blogs", "Slack communities", "Instagram"},
			Campaigns: []string{
				"Focus on simplicity and ease of use",
				"Highlight collaboration features",
				"Use clean, modern visuals",
			},
			BuyingBehavior: models.BuyingBehavior{
				DecisionFactors:   []string{"User experience", "Integration capabilities", "Team features"},
				PurchaseFrequency: "Quarterly",
				BudgetRange:       "$50-200/month",
				ResearchHabits:    []string{"Reads reviews", "Tries free trials", "Asks colleagues"},
			},
			Quotes: []string{
				"If it takes more than 5 minutes to figure out, I'm not using it.",
				"I need tools that help my team work together, not create more silos.",
			},
		},
		{
			Name: "Mike Rodriguez",
			Demographics: models.Demographics{
				Age: 35, Gender: "Male", Location: "Austin, TX",
				Occupation: "Small Business Owner", Income: "$65,000",
			},
			Psychographics: models.Psychographics{
				Personality: []string{"Pragmatic", "Results-driven", "Independent", "Resourceful"},
				Values:      []string{"Efficiency", "Value for money", "Family", "Growth"},
				Interests:   []string{"Business development", "Local community", "Sports", "Technology"},
				Lifestyle:   "Busy entrepreneur balancing work and family",
			},
			Traits:            []string{"Budget-conscious", "Results-driven", "Practical", "Independent"},
			PainPoints:        []string{"Limited budget for tools", "Needs clear ROI demonstration", "Prefers simple solutions"},
			Motivations:       []string{"Business growth", "Cost efficiency", "Time savings"},
			Goals:             []string{"Increase revenue", "Reduce operational costs", "Scale business"},
			MessagingTone:     "Direct and value-focused",
			PreferredChannels: []string{"Google search", "Business forums", "Email", "YouTube"},
			Campaigns: []string{
				"Emphasize cost-effectiveness",
				"Show clear ROI metrics",
				"Use testimonials from similar businesses",
			},
			BuyingBehavior: models.BuyingBehavior{
				DecisionFactors:   []string{"Price", "ROI", "Ease of use", "Customer support"},
				PurchaseFrequency: "Annually",
				BudgetRange:       "$20-100/month",
				ResearchHabits:    []string{"Compares prices", "Reads case studies", "Seeks recommendations"},
			},
			Quotes: []string{
				"Show me the numbers - how will this make me money?",
				"I don't have time for complicated setups.",
			},
		},
		{
			Name: "Emma Thompson",
			Demographics: models.Demographics{
				Age: 42, Gender: "Female", Location: "New York, NY",
				Occupation: "Marketing Director", Income: "$120,000",
			},
			Psychographics: models.Psychographics{
				Personality: []string{"Strategic", "Ambitious", "Analytical", "Leadership-oriented"},
				Values:      []string{"Excellence", "Innovation", "Professional growth", "Results"},
				Interests:   []string{"Marketing trends", "Data analytics", "Leadership", "Networking"},
				Lifestyle:   "High-achieving executive with demanding schedule",
			},
			Traits:            []string{"Strategic", "Quality-focused", "Brand-conscious", "Innovation-seeking"},
			PainPoints:        []string{"Needs advanced features", "Requires integration capabilities", "Values premium support"},
			Motivations:       []string{"Professional excellence", "Brand building", "Market leadership"},
			Goals:             []string{"Drive brand awareness", "Optimize campaigns", "Lead innovation"},
			MessagingTone:     "Sophisticated and detailed",
			PreferredChannels: []string{"Industry publications", "Conferences", "LinkedIn", "Webinars"},
			Campaigns: []string{
				"Highlight premium features",
				"Focus on customization options",
				"Emphasize expert support",
			},
			BuyingBehavior: models.BuyingBehavior{
				DecisionFactors:   []string{"Features", "Scalability", "Support quality", "Brand reputation"},
				PurchaseFrequency: "Bi-annually",
				BudgetRange:       "$200-1000/month",
				ResearchHabits:    []string{"Industry research", "Vendor demos", "Peer consultations"},
			},
			Quotes: []string{
				"We need enterprise-grade solutions that can scale with our growth.",
				"Premium support isn't optional - it's essential for our operations.",
			},
		},
	}

	for i := range personas {
		personas[i].ID = models.NewPersonaID()
		personas[i].Avatar = models.AvatarURL(personas[i].Name)
		personas[i].CreatedAt = now
		personas[i].UpdatedAt = now
		personas[i].Normalize()
	}
	return personas
}

var budgetRangePattern = regexp.MustCompile(`\$\d+-\d+`)

// refineMock applies mechanical substitutions to existing personas so
// the refinement dials still have a visible effect offline. Trait
// substitution is idempotent: markers are stripped before the target
// marker is appended, so reapplying with the same dials is a no-op.
func refineMock(personas []models.Persona, r models.Refinements) []models.Persona {
	now := time.Now().UTC()
	out := make([]models.Persona, len(personas))
	for i, p := range personas {
		refined := p
		refined.Traits = append([]string(nil), p.Traits...)

		switch {
		case r.BudgetLevel > 70:
			// ReplaceAllLiteralString: "$5" in the replacement would
			// otherwise be read as a capture-group reference.
			refined.BuyingBehavior.BudgetRange = budgetRangePattern.ReplaceAllLiteralString(refined.BuyingBehavior.BudgetRange, "$500-2000")
			refined.Traits = append(withoutBudgetMarkers(refined.Traits), "Premium-focused")
		case r.BudgetLevel < 30:
			refined.BuyingBehavior.BudgetRange = budgetRangePattern.ReplaceAllLiteralString(refined.BuyingBehavior.BudgetRange, "$10-50")
			refined.Traits = append(withoutBudgetMarkers(refined.Traits), "Budget-conscious")
		}

		switch r.Tone {
		case "formal":
			refined.MessagingTone = "Professional and formal"
		case "humorous":
			refined.MessagingTone = "Casual and humorous"
		case "empathetic":
			refined.MessagingTone = "Warm and understanding"
		}

		refined.UpdatedAt = now
		refined.Normalize()
		out[i] = refined
	}
	return out
}

func withoutBudgetMarkers(traits []string) []string {
	kept := traits[:0]
	for _, t := range traits {
		if t != "Budget-conscious" && t != "Premium-focused" {
			kept = append(kept, t)
		}
	}
	return kept
}

// cannedReplies maps the fixed fallback personas to in-character lines.
var cannedReplies = map[string][]string{
	"Sarah Chen": {
		"That's a great question! As a UX designer, I always think about how users will interact with features like that.",
		"I really value tools that don't require a steep learning curve. Time is so precious in our industry.",
		"Collaboration features are huge for me. I work with developers and PMs daily, so seamless integration is key.",
		"I'm willing to invest in quality tools, but they need to prove their worth quickly.",
		"Clean, intuitive design isn't just nice to have - it's essential for my workflow.",
	},
	"Mike Rodriguez": {
		"I need to see clear ROI before I invest in any new tool. Show me the numbers!",
		"As a small business owner, every dollar counts. I can't afford tools that don't deliver value.",
		"I prefer straightforward solutions. If it takes more than 10 minutes to set up, it's too complex.",
		"Customer support is crucial. When something breaks, I need it fixed fast.",
		"I trust recommendations from other small business owners more than fancy marketing.",
	},
	"Emma Thompson": {
		"We need enterprise-grade solutions that can handle our scale and complexity.",
		"Integration capabilities are non-negotiable. Any new tool must work with our existing stack.",
		"I value premium support and dedicated account management. White-glove service is expected.",
		"Brand reputation and security are paramount. We can't risk our data with unknown vendors.",
		"Advanced features and customization options are essential for our sophisticated campaigns.",
	},
}

var genericReplies = []string{
	"That's an interesting perspective! Let me think about that from my point of view.",
	"I appreciate you asking. Based on my experience, I'd say it depends on what you're optimizing for.",
	"That resonates with me. In my situation, I usually consider the tradeoffs first.",
}

// mockChatReply picks one canned line for the persona, or a generic
// filler when the persona is not in the table.
func mockChatReply(p models.Persona) string {
	replies, ok := cannedReplies[p.Name]
	if !ok {
		replies = genericReplies
	}
	return replies[rand.Intn(len(replies))]
}
