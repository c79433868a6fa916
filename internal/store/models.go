package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type ExpenseModel struct {
	ID             string    `gorm:"primaryKey"`
	UserID         string    `gorm:"not null;index"`
	Description    string    `gorm:"not null"`
	Amount         float64   `gorm:"not null"`
	Date           time.Time `gorm:"not null;index"`
	FromReflection bool      `gorm:"not null"`
}

type FixedExpenseModel struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index"`
	Name      string    `gorm:"not null"`
	Amount    float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type CheckInModel struct {
	ID     string    `gorm:"primaryKey"`
	UserID string    `gorm:"not null;index"`
	Mood   string    `gorm:"not null"`
	Date   time.Time `gorm:"not null;index"`
}

type ReflectionModel struct {
	ID       string         `gorm:"primaryKey"`
	UserID   string         `gorm:"not null;index"`
	Item     string         `gorm:"not null"`
	Price    float64        `gorm:"not null"`
	Answers  datatypes.JSON `gorm:"not null"`
	Decision string         `gorm:"not null"`
	Date     time.Time      `gorm:"not null;index"`
}

type ChatMessageModel struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index"`
	Role      string    `gorm:"not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// UserSettingsModel holds the per-user scalars: the monthly budget and the
// free-form settings bag.
type UserSettingsModel struct {
	UserID        string         `gorm:"primaryKey"`
	MonthlyBudget float64        `gorm:"not null"`
	Settings      datatypes.JSON `gorm:"not null"`
}
