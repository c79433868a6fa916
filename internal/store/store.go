package store

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"zenspend/pkg/domain"
)

// ErrNotFound is returned when an update or delete targets a missing record.
var ErrNotFound = errors.New("record not found")

// Store defines persistence for users and their per-user collections.
// Every collection is exclusively owned by one user; callers always pass the
// owning user's ID.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// variable expenses
	ListExpenses(userID string) ([]domain.Expense, error)
	AppendExpense(userID string, e domain.Expense) error
	DeleteExpense(userID, id string) error

	// fixed expenses
	ListFixedExpenses(userID string) ([]domain.FixedExpense, error)
	AppendFixedExpense(userID string, f domain.FixedExpense) error
	UpdateFixedExpense(userID, id, name string, amount float64) error
	DeleteFixedExpense(userID, id string) error

	// monthly budget (scalar; zero means unset)
	MonthlyBudget(userID string) (float64, error)
	SetMonthlyBudget(userID string, amount float64) error

	// check-ins
	ListCheckIns(userID string) ([]domain.CheckIn, error)
	AppendCheckIn(userID string, c domain.CheckIn) error

	// reflections; SaveReflectionOutcome writes the reflection and, when the
	// user bought, the linked expense in a single operation.
	ListReflections(userID string) ([]domain.Reflection, error)
	SaveReflectionOutcome(userID string, r domain.Reflection, e *domain.Expense) error

	// chat history
	ListChatMessages(userID string) ([]domain.ChatMessage, error)
	AppendChatMessage(userID string, msg domain.ChatMessage) error
	ClearChatMessages(userID string) error

	// free-form settings
	Settings(userID string) (map[string]string, error)
	PutSetting(userID, key, value string) error
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}

// NewID returns a random hex string suitable as a session token.
func NewID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "id-unknown"
	}
	return hex.EncodeToString(b[:])
}
