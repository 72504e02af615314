package recommend

import (
	"fmt"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// personaPrompts map each persona to the framing the model should take.
// The tone rules mirror the guardrail checks so compliant output is the
// default, not the exception.
var personaPrompts = map[string]string{
	domain.PersonaHighUtilization: `The user is carrying high credit utilization or interest charges. Focus on reducing utilization, avoiding interest, and payment strategies beyond the minimum. Cite their actual utilization figures and card details from the context.`,

	domain.PersonaVariableIncome: `The user has irregular income with a thin cash-flow buffer. Focus on smoothing cash flow, percentage-based budgeting for uneven pay, and building a buffer between pay cycles. Cite their pay gap and buffer figures from the context.`,

	domain.PersonaSubscriptionHeavy: `The user has many recurring subscriptions making up a notable share of spend. Focus on auditing subscriptions, spotting forgotten renewals, and redirecting freed-up money. Cite their recurring merchant count and monthly recurring spend from the context.`,

	domain.PersonaSavingsBuilder: `The user is actively saving. Focus on strengthening the habit: emergency fund targets, higher-yield options, and automating contributions. Cite their savings inflow and emergency fund figures from the context.`,

	domain.PersonaWealthBuilder: `The user has strong income, savings, and an investment account. Focus on optimization: tax-advantaged space, asset allocation basics, and putting idle cash to work. Cite their income and savings figures from the context.`,

	domain.PersonaGeneralWellness: `No single financial pattern dominates for this user. Focus on broadly useful foundations: tracking spending, building an emergency fund, and reviewing account fees. Ground suggestions in whatever context values stand out.`,
}

const promptInstructions = `You are a financial education assistant. Using the user context below, write educational recommendations.

Rules:
- Output STRICT JSON only (no comments, no markdown fences, no extra text).
- Output a JSON object: {"recommendations": [...]} with 2 to 3 items.
- Each item must have: "title" (short headline), "content" (2-4 sentences of educational guidance citing the user's actual numbers), "rationale" (one sentence explaining why this applies to this user's data).
- Tone must be empowering and non-judgmental. Use phrases like "you can", "consider", "opportunity". Never use shaming language such as "you're overspending", "bad habit", "irresponsible", or "you need to".
- Educational framing only: explain options, never give direct financial advice.`

// BuildPrompt assembles the generation prompt: shared instructions, the
// persona framing, and the JSON user context.
func BuildPrompt(personaType, contextJSON string) string {
	framing, ok := personaPrompts[personaType]
	if !ok {
		framing = personaPrompts[domain.PersonaGeneralWellness]
	}
	return fmt.Sprintf("%s\n\nPersona focus: %s\n\nUser context:\n%s", promptInstructions, framing, contextJSON)
}
