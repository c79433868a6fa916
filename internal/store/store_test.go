package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"zenspend/pkg/domain"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	fileStore, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
	}
}

func TestStoreUserLifecycle(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			u := domain.User{ID: "u1", Email: "a@example.com", PasswordHash: "hash", CreatedAt: time.Now().UTC()}
			if err := s.SaveUser(u); err != nil {
				t.Fatalf("save user: %v", err)
			}
			ok, err := s.HasUserEmail("a@example.com")
			if err != nil || !ok {
				t.Fatalf("expected email to exist, ok=%v err=%v", ok, err)
			}
			got, found, err := s.GetUserByEmail("a@example.com")
			if err != nil || !found || got.ID != "u1" || got.PasswordHash != "hash" {
				t.Fatalf("get by email: %+v found=%v err=%v", got, found, err)
			}
			got, found, err = s.GetUserByID("u1")
			if err != nil || !found || got.Email != "a@example.com" {
				t.Fatalf("get by id: %+v found=%v err=%v", got, found, err)
			}
			if _, found, _ := s.GetUserByEmail("missing@example.com"); found {
				t.Fatalf("unexpected user for unknown email")
			}
		})
	}
}

func TestStoreExpenses(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			now := time.Now().UTC()
			_ = s.AppendExpense("u1", domain.Expense{ID: "e1", Description: "Coffee", Amount: 25, Date: now})
			_ = s.AppendExpense("u1", domain.Expense{ID: "e2", Description: "Lunch", Amount: 60, Date: now})
			_ = s.AppendExpense("u2", domain.Expense{ID: "e3", Description: "Other user", Amount: 10, Date: now})

			list, err := s.ListExpenses("u1")
			if err != nil || len(list) != 2 {
				t.Fatalf("expected 2 expenses, got %d err=%v", len(list), err)
			}
			if list[0].ID != "e1" || list[1].ID != "e2" {
				t.Fatalf("expected insertion order, got %+v", list)
			}

			if err := s.DeleteExpense("u1", "e1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := s.DeleteExpense("u1", "e1"); err != ErrNotFound {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}
			list, _ = s.ListExpenses("u1")
			if len(list) != 1 || list[0].ID != "e2" {
				t.Fatalf("expected only e2 left, got %+v", list)
			}
			other, _ := s.ListExpenses("u2")
			if len(other) != 1 {
				t.Fatalf("other user's data must be untouched, got %+v", other)
			}
		})
	}
}

func TestStoreFixedExpenses(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.AppendFixedExpense("u1", domain.FixedExpense{ID: "f1", Name: "Rent", Amount: 3000})
			if err := s.UpdateFixedExpense("u1", "f1", "Rent", 3200); err != nil {
				t.Fatalf("update: %v", err)
			}
			list, _ := s.ListFixedExpenses("u1")
			if len(list) != 1 || list[0].Amount != 3200 {
				t.Fatalf("expected updated amount, got %+v", list)
			}
			if err := s.UpdateFixedExpense("u1", "missing", "X", 1); err != ErrNotFound {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := s.DeleteFixedExpense("u1", "f1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			list, _ = s.ListFixedExpenses("u1")
			if len(list) != 0 {
				t.Fatalf("expected empty list, got %+v", list)
			}
		})
	}
}

func TestStoreBudgetAndSettings(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			b, err := s.MonthlyBudget("u1")
			if err != nil || b != 0 {
				t.Fatalf("expected zero budget when unset, got %v err=%v", b, err)
			}
			if err := s.SetMonthlyBudget("u1", 4000); err != nil {
				t.Fatalf("set budget: %v", err)
			}
			b, _ = s.MonthlyBudget("u1")
			if b != 4000 {
				t.Fatalf("expected 4000, got %v", b)
			}

			if err := s.PutSetting("u1", "theme", "dark"); err != nil {
				t.Fatalf("put setting: %v", err)
			}
			settings, _ := s.Settings("u1")
			if settings["theme"] != "dark" {
				t.Fatalf("expected setting persisted, got %+v", settings)
			}
		})
	}
}

func TestStoreReflectionOutcome(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			now := time.Now().UTC()
			bought := domain.Reflection{
				ID: "r1", Item: "Shoes", Price: 450,
				Answers:  map[string]string{"need": "Want", "emotion": "Stress"},
				Decision: domain.DecisionBought, Date: now,
			}
			linked := &domain.Expense{ID: "e1", Description: "Shoes", Amount: 450, Date: now, FromReflection: true}
			if err := s.SaveReflectionOutcome("u1", bought, linked); err != nil {
				t.Fatalf("save outcome: %v", err)
			}
			skipped := domain.Reflection{ID: "r2", Item: "Watch", Decision: domain.DecisionSkipped, Date: now}
			if err := s.SaveReflectionOutcome("u1", skipped, nil); err != nil {
				t.Fatalf("save outcome: %v", err)
			}

			reflections, _ := s.ListReflections("u1")
			if len(reflections) != 2 {
				t.Fatalf("expected 2 reflections, got %+v", reflections)
			}
			if reflections[0].Answers["need"] != "Want" {
				t.Fatalf("answers must round-trip, got %+v", reflections[0].Answers)
			}
			expenses, _ := s.ListExpenses("u1")
			if len(expenses) != 1 || !expenses[0].FromReflection {
				t.Fatalf("bought outcome must add one linked expense, got %+v", expenses)
			}
		})
	}
}

func TestStoreChatHistory(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			now := time.Now().UTC()
			_ = s.AppendChatMessage("u1", domain.ChatMessage{ID: "m1", Role: "user", Content: "hi", Timestamp: now})
			_ = s.AppendChatMessage("u1", domain.ChatMessage{ID: "m2", Role: "assistant", Content: "hello", Timestamp: now})
			history, _ := s.ListChatMessages("u1")
			if len(history) != 2 || history[0].Role != "user" {
				t.Fatalf("expected ordered history, got %+v", history)
			}
			if err := s.ClearChatMessages("u1"); err != nil {
				t.Fatalf("clear: %v", err)
			}
			history, _ = s.ListChatMessages("u1")
			if len(history) != 0 {
				t.Fatalf("expected empty history after clear, got %+v", history)
			}
		})
	}
}

func TestFileStoreSurvivesCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "u1.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	list, err := s.ListExpenses("u1")
	if err != nil || len(list) != 0 {
		t.Fatalf("corrupt document must read as empty record, got %v err=%v", list, err)
	}
	// And the next write replaces it cleanly.
	if err := s.AppendExpense("u1", domain.Expense{ID: "e1", Description: "Tea", Amount: 10, Date: time.Now().UTC()}); err != nil {
		t.Fatalf("append after corruption: %v", err)
	}
	list, _ = s.ListExpenses("u1")
	if len(list) != 1 {
		t.Fatalf("expected 1 expense, got %+v", list)
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s1, _ := NewFileStore(dir)
	_ = s1.SaveUser(domain.User{ID: "u1", Email: "a@example.com", PasswordHash: "h", CreatedAt: time.Now().UTC()})
	_ = s1.SetMonthlyBudget("u1", 2500)

	s2, _ := NewFileStore(dir)
	_, found, err := s2.GetUserByEmail("a@example.com")
	if err != nil || !found {
		t.Fatalf("expected user after reopen, found=%v err=%v", found, err)
	}
	b, _ := s2.MonthlyBudget("u1")
	if b != 2500 {
		t.Fatalf("expected budget 2500 after reopen, got %v", b)
	}
}
