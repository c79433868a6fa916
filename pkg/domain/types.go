package domain

import "time"

// Decision is the terminal outcome of a pause reflection.
type Decision string

const (
	DecisionBought  Decision = "bought"
	DecisionSkipped Decision = "skipped"
)

// Valid reports whether d is one of the two terminal decisions.
func (d Decision) Valid() bool {
	return d == DecisionBought || d == DecisionSkipped
}

// Mood is a check-in label from the fixed set shown on the home page.
type Mood string

const (
	MoodCalm     Mood = "Calm"
	MoodGood     Mood = "Good"
	MoodNeutral  Mood = "Neutral"
	MoodWorried  Mood = "Worried"
	MoodStressed Mood = "Stressed"
)

// Moods lists the selectable check-in moods in display order.
var Moods = []Mood{MoodCalm, MoodGood, MoodNeutral, MoodWorried, MoodStressed}

// Valid reports whether m belongs to the fixed mood set.
func (m Mood) Valid() bool {
	for _, known := range Moods {
		if m == known {
			return true
		}
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Expense is a one-off spend entry dated at creation time.
type Expense struct {
	ID             string    `json:"id"`
	Description    string    `json:"description"`
	Amount         float64   `json:"amount"`
	Date           time.Time `json:"date"`
	FromReflection bool      `json:"fromReflection,omitempty"`
}

// FixedExpense is a recurring monthly cost counted every month without re-entry.
type FixedExpense struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// CheckIn is a lightweight mood self-report, independent of spending.
type CheckIn struct {
	ID   string    `json:"id"`
	Mood Mood      `json:"mood"`
	Date time.Time `json:"date"`
}

// Reflection is the record produced by completing the pause flow.
type Reflection struct {
	ID       string            `json:"id"`
	Item     string            `json:"item"`
	Price    float64           `json:"price,omitempty"`
	Answers  map[string]string `json:"answers"`
	Decision Decision          `json:"decision"`
	Date     time.Time         `json:"date"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UserData is the full per-user record as persisted by the file store.
// It mirrors the storage layout of the original client: every mutation
// loads the whole record, changes it in memory, and writes it back.
type UserData struct {
	Expenses      []Expense         `json:"expenses"`
	FixedExpenses []FixedExpense    `json:"fixedExpenses"`
	CheckIns      []CheckIn         `json:"checkIns"`
	Reflections   []Reflection      `json:"reflections"`
	ChatHistory   []ChatMessage     `json:"chatHistory"`
	Settings      map[string]string `json:"settings"`
	MonthlyBudget float64           `json:"monthlyBudget"`
}

// NewUserData returns an empty record with initialized collections.
func NewUserData() *UserData {
	return &UserData{
		Expenses:      []Expense{},
		FixedExpenses: []FixedExpense{},
		CheckIns:      []CheckIn{},
		Reflections:   []Reflection{},
		ChatHistory:   []ChatMessage{},
		Settings:      map[string]string{},
	}
}
