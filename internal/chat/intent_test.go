package chat

import "testing"

func TestDetectPurchaseIntent(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"I bought a new jacket", IntentBought},
		{"thinking about buying shoes, I will purchase them tomorrow", IntentBought},
		{"ordered the lamp", IntentBought},
		{"I decided not to buy it", IntentSkipped},
		{"didn't get it after all", IntentSkipped},
		{"I skipped the sale", IntentSkipped},
		{"won't buy the headphones", IntentSkipped},
		{"just feeling stressed about money", IntentNone},
		{"", IntentNone},
	}
	for _, c := range cases {
		if got := DetectPurchaseIntent(c.text); got != c.want {
			t.Fatalf("DetectPurchaseIntent(%q) = %s, want %s", c.text, got, c.want)
		}
	}
}

func TestHasShoppingLink(t *testing.T) {
	if !HasShoppingLink("look at https://shop.example/item/42") {
		t.Fatalf("expected https link to match")
	}
	if !HasShoppingLink("http://example.com") {
		t.Fatalf("expected http link to match")
	}
	if HasShoppingLink("no links here") {
		t.Fatalf("expected plain text not to match")
	}
}

func TestDetectIntentPrecedence(t *testing.T) {
	if got := DetectIntent("I bought it: https://shop.example/item"); got != IntentBought {
		t.Fatalf("purchase decision should win over link, got %s", got)
	}
	if got := DetectIntent("https://shop.example/item"); got != IntentBuyURL {
		t.Fatalf("bare link should classify as buyUrl, got %s", got)
	}
	if got := DetectIntent("hello"); got != IntentNone {
		t.Fatalf("expected none, got %s", got)
	}
}
