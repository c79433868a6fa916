package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zenspend/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{},
		&ExpenseModel{},
		&FixedExpenseModel{},
		&CheckInModel{},
		&ReflectionModel{},
		&ChatMessageModel{},
		&UserSettingsModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// ListExpenses returns the user's expenses oldest first.
func (s *GormStore) ListExpenses(userID string) ([]domain.Expense, error) {
	var models []ExpenseModel
	if err := s.db.Where("user_id = ?", userID).Order("date ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Expense, 0, len(models))
	for _, m := range models {
		res = append(res, expenseFromModel(m))
	}
	return res, nil
}

// AppendExpense records an expense.
func (s *GormStore) AppendExpense(userID string, e domain.Expense) error {
	model := expenseToModel(userID, e)
	return s.db.Create(&model).Error
}

// DeleteExpense removes an expense by id.
func (s *GormStore) DeleteExpense(userID, id string) error {
	res := s.db.Delete(&ExpenseModel{}, "user_id = ? AND id = ?", userID, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFixedExpenses returns the user's fixed expenses in creation order.
func (s *GormStore) ListFixedExpenses(userID string) ([]domain.FixedExpense, error) {
	var models []FixedExpenseModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.FixedExpense, 0, len(models))
	for _, m := range models {
		res = append(res, domain.FixedExpense{ID: m.ID, Name: m.Name, Amount: m.Amount})
	}
	return res, nil
}

// AppendFixedExpense records a fixed expense.
func (s *GormStore) AppendFixedExpense(userID string, f domain.FixedExpense) error {
	model := FixedExpenseModel{
		ID:        f.ID,
		UserID:    userID,
		Name:      f.Name,
		Amount:    f.Amount,
		CreatedAt: time.Now().UTC(),
	}
	return s.db.Create(&model).Error
}

// UpdateFixedExpense overwrites name and amount of a fixed expense.
func (s *GormStore) UpdateFixedExpense(userID, id, name string, amount float64) error {
	res := s.db.Model(&FixedExpenseModel{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]any{"name": name, "amount": amount})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFixedExpense removes a fixed expense by id.
func (s *GormStore) DeleteFixedExpense(userID, id string) error {
	res := s.db.Delete(&FixedExpenseModel{}, "user_id = ? AND id = ?", userID, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MonthlyBudget returns the user's budget, zero when unset.
func (s *GormStore) MonthlyBudget(userID string) (float64, error) {
	var model UserSettingsModel
	if err := s.db.First(&model, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return model.MonthlyBudget, nil
}

// SetMonthlyBudget overwrites the budget scalar.
func (s *GormStore) SetMonthlyBudget(userID string, amount float64) error {
	model := UserSettingsModel{
		UserID:        userID,
		MonthlyBudget: amount,
		Settings:      datatypes.JSON([]byte("{}")),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"monthly_budget"}),
	}).Create(&model).Error
}

// ListCheckIns returns mood check-ins oldest first.
func (s *GormStore) ListCheckIns(userID string) ([]domain.CheckIn, error) {
	var models []CheckInModel
	if err := s.db.Where("user_id = ?", userID).Order("date ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.CheckIn, 0, len(models))
	for _, m := range models {
		res = append(res, domain.CheckIn{ID: m.ID, Mood: domain.Mood(m.Mood), Date: m.Date})
	}
	return res, nil
}

// AppendCheckIn records a mood check-in.
func (s *GormStore) AppendCheckIn(userID string, c domain.CheckIn) error {
	model := CheckInModel{ID: c.ID, UserID: userID, Mood: string(c.Mood), Date: c.Date}
	return s.db.Create(&model).Error
}

// ListReflections returns reflections oldest first.
func (s *GormStore) ListReflections(userID string) ([]domain.Reflection, error) {
	var models []ReflectionModel
	if err := s.db.Where("user_id = ?", userID).Order("date ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Reflection, 0, len(models))
	for _, m := range models {
		r, err := reflectionFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}

// SaveReflectionOutcome writes the reflection and any linked expense in one
// transaction so a bought decision never yields a half-recorded outcome.
func (s *GormStore) SaveReflectionOutcome(userID string, r domain.Reflection, e *domain.Expense) error {
	model, err := reflectionToModel(userID, r)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		if e != nil {
			expense := expenseToModel(userID, *e)
			if err := tx.Create(&expense).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListChatMessages returns chat history in insertion order.
func (s *GormStore) ListChatMessages(userID string) ([]domain.ChatMessage, error) {
	var models []ChatMessageModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ChatMessage, 0, len(models))
	for _, m := range models {
		res = append(res, domain.ChatMessage{ID: m.ID, Role: m.Role, Content: m.Content, Timestamp: m.CreatedAt})
	}
	return res, nil
}

// AppendChatMessage records a message.
func (s *GormStore) AppendChatMessage(userID string, msg domain.ChatMessage) error {
	model := ChatMessageModel{
		ID:        msg.ID,
		UserID:    userID,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.Timestamp,
	}
	return s.db.Create(&model).Error
}

// ClearChatMessages bulk-deletes the user's chat history.
func (s *GormStore) ClearChatMessages(userID string) error {
	return s.db.Delete(&ChatMessageModel{}, "user_id = ?", userID).Error
}

// Settings returns the free-form settings bag.
func (s *GormStore) Settings(userID string) (map[string]string, error) {
	var model UserSettingsModel
	if err := s.db.First(&model, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return map[string]string{}, nil
		}
		return nil, err
	}
	settings := map[string]string{}
	if len(model.Settings) > 0 {
		if err := json.Unmarshal(model.Settings, &settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
	}
	return settings, nil
}

// PutSetting stores one settings key.
func (s *GormStore) PutSetting(userID, key, value string) error {
	settings, err := s.Settings(userID)
	if err != nil {
		return err
	}
	settings[key] = value
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	model := UserSettingsModel{
		UserID:   userID,
		Settings: datatypes.JSON(raw),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"settings"}),
	}).Create(&model).Error
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func expenseToModel(userID string, e domain.Expense) ExpenseModel {
	return ExpenseModel{
		ID:             e.ID,
		UserID:         userID,
		Description:    e.Description,
		Amount:         e.Amount,
		Date:           e.Date,
		FromReflection: e.FromReflection,
	}
}

func expenseFromModel(m ExpenseModel) domain.Expense {
	return domain.Expense{
		ID:             m.ID,
		Description:    m.Description,
		Amount:         m.Amount,
		Date:           m.Date,
		FromReflection: m.FromReflection,
	}
}

func reflectionToModel(userID string, r domain.Reflection) (ReflectionModel, error) {
	answers, err := json.Marshal(r.Answers)
	if err != nil {
		return ReflectionModel{}, fmt.Errorf("encode answers: %w", err)
	}
	return ReflectionModel{
		ID:       r.ID,
		UserID:   userID,
		Item:     r.Item,
		Price:    r.Price,
		Answers:  datatypes.JSON(answers),
		Decision: string(r.Decision),
		Date:     r.Date,
	}, nil
}

func reflectionFromModel(m ReflectionModel) (domain.Reflection, error) {
	answers := map[string]string{}
	if len(m.Answers) > 0 {
		if err := json.Unmarshal(m.Answers, &answers); err != nil {
			return domain.Reflection{}, fmt.Errorf("decode answers: %w", err)
		}
	}
	return domain.Reflection{
		ID:       m.ID,
		Item:     m.Item,
		Price:    m.Price,
		Answers:  answers,
		Decision: domain.Decision(m.Decision),
		Date:     m.Date,
	}, nil
}
