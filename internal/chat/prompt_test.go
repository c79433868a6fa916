package chat

import (
	"strings"
	"testing"
)

func TestBuildSystemPromptBaseOnly(t *testing.T) {
	prompt := BuildSystemPrompt(FinanceSnapshot{}, "how are you")
	if !strings.Contains(prompt, "reflection companion") {
		t.Fatalf("expected persona block, got: %s", prompt)
	}
	if strings.Contains(prompt, "financial context") {
		t.Fatalf("no financial block without a budget")
	}
	if strings.Contains(prompt, "shopping link") || strings.Contains(prompt, "decided to buy") {
		t.Fatalf("no situational blocks for a plain message")
	}
}

func TestBuildSystemPromptFinancialContext(t *testing.T) {
	snapshot := FinanceSnapshot{
		Budget:        2000,
		TotalSpent:    1900,
		Remaining:     100,
		PercentUsed:   95,
		SpendingLevel: "heavy",
	}
	prompt := BuildSystemPrompt(snapshot, "hello")
	for _, want := range []string{"Monthly budget: 2000", "Spent this month: 1900", "Remaining: 100", "Budget used: 95%", "heavy", "feels tight"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected %q in prompt, got: %s", want, prompt)
		}
	}

	snapshot.PercentUsed = 75
	if !strings.Contains(BuildSystemPrompt(snapshot, "hello"), "feels tightening") {
		t.Fatalf("expected tightening note at 75%%")
	}
	snapshot.PercentUsed = 20
	if !strings.Contains(BuildSystemPrompt(snapshot, "hello"), "feels roomy") {
		t.Fatalf("expected roomy note at 20%%")
	}
}

func TestBuildSystemPromptSituationalBlocks(t *testing.T) {
	prompt := BuildSystemPrompt(FinanceSnapshot{}, "I bought this https://shop.example/a")
	if !strings.Contains(prompt, "shopping link") {
		t.Fatalf("expected url directive")
	}
	if !strings.Contains(prompt, "decided to buy") {
		t.Fatalf("expected bought directive alongside url directive")
	}

	prompt = BuildSystemPrompt(FinanceSnapshot{}, "I decided not to buy it")
	if !strings.Contains(prompt, "decided not to buy") {
		t.Fatalf("expected skipped directive")
	}
	if strings.Contains(prompt, "decided to buy.\n") && strings.Contains(prompt, "Acknowledging the decision") {
		t.Fatalf("bought directive must not appear for a negated message")
	}
}
