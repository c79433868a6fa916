package pause

import (
	"testing"
	"time"

	"zenspend/pkg/domain"
)

func advanceToDecision(t *testing.T, f *Flow, item string, price float64) {
	t.Helper()
	if err := f.SetPrice(item, price); err != nil {
		t.Fatalf("set price: %v", err)
	}
	if err := f.Answer("Want"); err != nil {
		t.Fatalf("answer need question: %v", err)
	}
	if err := f.Answer("Stress"); err != nil {
		t.Fatalf("answer emotion question: %v", err)
	}
	if got := f.State(); got != StateBreathing {
		t.Fatalf("expected breathing state, got %s", got)
	}
	if err := f.SkipBreathing(); err != nil {
		t.Fatalf("skip breathing: %v", err)
	}
	if got := f.State(); got != StateDecision {
		t.Fatalf("expected decision state, got %s", got)
	}
}

func TestFlowBoughtProducesReflectionAndLinkedExpense(t *testing.T) {
	f := NewFlow()
	advanceToDecision(t, f, "Shoes", 45.50)

	outcome, err := f.Decide(domain.DecisionBought)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	defer f.Reset()

	r := outcome.Reflection
	if r.Decision != domain.DecisionBought || r.Item != "Shoes" || r.Price != 45.50 {
		t.Fatalf("unexpected reflection: %+v", r)
	}
	if r.Answers["need"] != "Want" || r.Answers["emotion"] != "Stress" {
		t.Fatalf("unexpected answers: %v", r.Answers)
	}
	if r.ID == "" || r.Date.IsZero() {
		t.Fatalf("reflection missing generated id/timestamp: %+v", r)
	}
	if outcome.Expense == nil {
		t.Fatalf("expected linked expense")
	}
	if outcome.Expense.Amount != 45.50 || !outcome.Expense.FromReflection {
		t.Fatalf("unexpected expense: %+v", outcome.Expense)
	}
	if outcome.Expense.Description != "Shoes" {
		t.Fatalf("expected expense description from item, got %q", outcome.Expense.Description)
	}

	if got := f.State(); got != StateConfirmed {
		t.Fatalf("expected confirmed state, got %s", got)
	}
	c, ok := f.Confirmation()
	if !ok || c.Title != "Noted" || c.Subtext != "You made a choice." {
		t.Fatalf("unexpected confirmation: %+v ok=%v", c, ok)
	}
}

func TestFlowSkippedProducesOnlyReflection(t *testing.T) {
	f := NewFlow()
	advanceToDecision(t, f, "Jacket", 300)

	outcome, err := f.Decide(domain.DecisionSkipped)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	defer f.Reset()

	if outcome.Expense != nil {
		t.Fatalf("skipped decision must not produce an expense, got %+v", outcome.Expense)
	}
	if outcome.Reflection.Decision != domain.DecisionSkipped {
		t.Fatalf("unexpected decision: %s", outcome.Reflection.Decision)
	}
	c, ok := f.Confirmation()
	if !ok || c.Title != "Well done" {
		t.Fatalf("unexpected confirmation: %+v ok=%v", c, ok)
	}
}

func TestFlowGuardsOrderAndInput(t *testing.T) {
	f := NewFlow()

	if err := f.Answer("Want"); err != ErrWrongState {
		t.Fatalf("expected wrong-state error before price, got %v", err)
	}
	if _, err := f.Decide(domain.DecisionBought); err != ErrWrongState {
		t.Fatalf("expected wrong-state error before decision step, got %v", err)
	}
	if err := f.SetPrice("Thing", 0); err != ErrPriceRequired {
		t.Fatalf("expected price-required error, got %v", err)
	}
	if err := f.SetPrice("Thing", -5); err != ErrPriceNegative {
		t.Fatalf("expected negative-price error, got %v", err)
	}
	if err := f.SetPrice("", 20); err != nil {
		t.Fatalf("item name is optional: %v", err)
	}
	if err := f.Answer("Maybe"); err != ErrUnknownOption {
		t.Fatalf("expected unknown-option error, got %v", err)
	}

	q, ok := f.CurrentQuestion()
	if !ok || q.ID != "need" {
		t.Fatalf("expected need question, got %+v ok=%v", q, ok)
	}
}

func TestFlowManualResetDiscardsProgress(t *testing.T) {
	f := NewFlow()
	if err := f.SetPrice("Lamp", 120); err != nil {
		t.Fatalf("set price: %v", err)
	}
	if err := f.Answer("Need"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	f.Reset()
	if got := f.State(); got != StatePriceInput {
		t.Fatalf("expected reset to price input, got %s", got)
	}
	// A fresh pass must not see stale answers.
	advanceToDecision(t, f, "Lamp", 120)
	outcome, err := f.Decide(domain.DecisionSkipped)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	defer f.Reset()
	if len(outcome.Reflection.Answers) != 2 {
		t.Fatalf("expected exactly the two fresh answers, got %v", outcome.Reflection.Answers)
	}
}

func TestGuidePhases(t *testing.T) {
	short := NewShortGuide()
	if short.Duration() != 10*time.Second {
		t.Fatalf("unexpected short duration %s", short.Duration())
	}
	if short.PhaseAt(0) != PhaseInhale || short.PhaseAt(3*time.Second) != PhaseExhale || short.PhaseAt(6*time.Second) != PhaseInhale {
		t.Fatalf("unexpected short cycle")
	}

	full := NewFullGuide()
	if full.Duration() != 45*time.Second {
		t.Fatalf("unexpected full duration %s", full.Duration())
	}
	if full.PhaseAt(0) != PhaseInhale || full.PhaseAt(4*time.Second) != PhaseHold || full.PhaseAt(8*time.Second) != PhaseExhale {
		t.Fatalf("unexpected full cycle")
	}
}

func TestGuideCompletionFiresOnce(t *testing.T) {
	g := NewShortGuide()
	fired := 0
	g.Start(func() { fired++ })
	g.Skip()
	g.Skip()
	if fired != 1 {
		t.Fatalf("expected completion to fire once, fired %d times", fired)
	}
	if g.Remaining() != 0 {
		t.Fatalf("expected no remaining time after skip")
	}
}

func TestGuideStopSuppressesCompletion(t *testing.T) {
	g := NewShortGuide()
	fired := 0
	g.Start(func() { fired++ })
	g.Stop()
	g.Skip()
	if fired != 0 {
		t.Fatalf("expected no completion after stop, fired %d times", fired)
	}
}
