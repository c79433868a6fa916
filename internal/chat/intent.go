package chat

import "regexp"

// Intent is the closed classification of a user message.
type Intent string

const (
	IntentNone    Intent = "none"
	IntentBuyURL  Intent = "buyUrl"
	IntentBought  Intent = "bought"
	IntentSkipped Intent = "skipped"
)

var (
	urlPattern      = regexp.MustCompile(`https?://\S+`)
	buyPattern      = regexp.MustCompile(`(?i)\b(bought|buy|purchase|ordered|got|getting)\b`)
	negationPattern = regexp.MustCompile(`(?i)\b(didn't|did not|won't|will not|decided not|skipped|passed)\b`)
)

// HasShoppingLink reports whether the message contains an http(s) URL.
func HasShoppingLink(text string) bool {
	return urlPattern.MatchString(text)
}

// DetectPurchaseIntent classifies a message as a purchase decision.
// Negation keywords take precedence over buy keywords, so "I decided not to
// buy it" is skipped even though it contains "buy".
func DetectPurchaseIntent(text string) Intent {
	if negationPattern.MatchString(text) {
		return IntentSkipped
	}
	if buyPattern.MatchString(text) {
		return IntentBought
	}
	return IntentNone
}

// DetectIntent collapses both detections into a single classification, with
// purchase decisions winning over a bare shopping link.
func DetectIntent(text string) Intent {
	if intent := DetectPurchaseIntent(text); intent != IntentNone {
		return intent
	}
	if HasShoppingLink(text) {
		return IntentBuyURL
	}
	return IntentNone
}
