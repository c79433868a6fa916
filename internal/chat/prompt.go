package chat

import (
	"fmt"
	"strings"
)

// FinanceSnapshot is the aggregation engine's current read of the user's
// month, folded into the system prompt so the companion can ground its
// answers without ever seeing raw records.
type FinanceSnapshot struct {
	Budget        float64
	TotalSpent    float64
	Remaining     float64
	PercentUsed   float64
	SpendingLevel string
}

const personaPrompt = `You are a calm, grounded reflection companion inside a financial wellness app.

Your role:
- Help the user make clearer, calmer decisions around spending
- Reduce stress and mental load
- Be practical, human, and emotionally aware

Rules:
- Be brief and direct
- No moral judgment
- No lectures
- No financial advice language
- Focus on awareness and relief, not optimization
- Speak like a calm, smart friend

You may use multiple short sentences if helpful.
Avoid filler. Avoid therapy clichés.`

const urlDirective = `The user shared a shopping link.

Action:
- Assume they are considering a purchase
- Do NOT ask if they want help
- Immediately suggest 2-3 alternative options that are:
  - Lower cost
  - Good quality
  - Less financially stressful

Frame suggestions as easing pressure, not saving money.

Tone examples:
- "This looks nice. If price is adding pressure, these options tend to be calmer choices."
- "Here are a few alternatives people often choose when they want something similar with less stress."

Do not push buying. Do not rank aggressively. Keep it grounded.`

const boughtDirective = `The user decided to buy.

Respond by:
- Acknowledging the decision without praise or regret
- Asking one grounded question about how it feels now

Example tone:
- "Got it. How does it feel now that the decision is made?"`

const skippedDirective = `The user decided not to buy.

Respond by:
- Acknowledging the pause
- Asking what helped them step back

Example tone:
- "You paused. What helped you make that call?"`

// BuildSystemPrompt assembles the system instruction for one send: the fixed
// persona block, the financial context when a budget is set, and any
// situational directives triggered by the message text.
func BuildSystemPrompt(snapshot FinanceSnapshot, text string) string {
	var b strings.Builder
	b.WriteString(personaPrompt)

	if snapshot.Budget > 0 {
		b.WriteString("\n\n")
		b.WriteString(financialContext(snapshot))
	}
	if HasShoppingLink(text) {
		b.WriteString("\n\n")
		b.WriteString(urlDirective)
	}
	switch DetectPurchaseIntent(text) {
	case IntentBought:
		b.WriteString("\n\n")
		b.WriteString(boughtDirective)
	case IntentSkipped:
		b.WriteString("\n\n")
		b.WriteString(skippedDirective)
	}
	return b.String()
}

func financialContext(s FinanceSnapshot) string {
	return fmt.Sprintf(`Current financial context (MAD):
- Monthly budget: %.0f
- Spent this month: %.0f
- Remaining: %.0f
- Budget used: %.0f%%
- Recent spending level: %s
- The budget feels %s right now.

Use this quietly. Mention numbers only when it genuinely helps the user.`,
		s.Budget, s.TotalSpent, s.Remaining, s.PercentUsed, s.SpendingLevel, tightness(s.PercentUsed))
}

func tightness(percentUsed float64) string {
	switch {
	case percentUsed > 90:
		return "tight"
	case percentUsed > 70:
		return "tightening"
	default:
		return "roomy"
	}
}
