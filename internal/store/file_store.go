package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"zenspend/pkg/domain"
)

// FileStore persists everything as JSON files under a data directory:
// users.json holds the account index, and each user's collections live in
// one document at <userID>.json. Every mutation loads the whole document,
// changes it, and writes it back; last write wins.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) usersPath() string {
	return filepath.Join(s.dir, "users.json")
}

func (s *FileStore) dataPath(userID string) string {
	return filepath.Join(s.dir, userID+".json")
}

// loadData reads a user's document; missing or corrupt files yield a fresh
// empty record so one bad document never locks the user out.
func (s *FileStore) loadData(userID string) *domain.UserData {
	raw, err := os.ReadFile(s.dataPath(userID))
	if err != nil {
		return domain.NewUserData()
	}
	d := domain.NewUserData()
	if err := json.Unmarshal(raw, d); err != nil {
		return domain.NewUserData()
	}
	if d.Settings == nil {
		d.Settings = map[string]string{}
	}
	return d
}

func (s *FileStore) saveData(userID string, d *domain.UserData) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.dataPath(userID), raw, 0o644)
}

// userRecord is the serialized form of the account index; the password hash
// has to round-trip here even though the API type hides it.
type userRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toUserRecord(u domain.User) userRecord {
	return userRecord{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash, CreatedAt: u.CreatedAt}
}

func fromUserRecord(r userRecord) domain.User {
	return domain.User{ID: r.ID, Email: r.Email, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

func (s *FileStore) SaveUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.loadUserRecords()
	replaced := false
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = toUserRecord(u)
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, toUserRecord(u))
	}
	return s.saveUserRecords(users)
}

func (s *FileStore) HasUserEmail(email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.loadUserRecords() {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *FileStore) GetUserByEmail(email string) (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.loadUserRecords() {
		if u.Email == email {
			return fromUserRecord(u), true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *FileStore) GetUserByID(id string) (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.loadUserRecords() {
		if u.ID == id {
			return fromUserRecord(u), true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *FileStore) ListExpenses(userID string) ([]domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadData(userID).Expenses, nil
}

func (s *FileStore) AppendExpense(userID string, e domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.loadData(userID)
	d.Expenses = append(d.Expenses, e)
	return s.saveData(userID, d)
}

func (s *FileStore) DeleteExpense(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.loadData(userID)
	for i, e := range d.Expenses {
		if e.ID == id {
			d.Expenses = append(d.Expenses[:i], d.Expenses[i+1:]...)
			return s.saveData(userID, d)
		}
	}
	return ErrNotFound
}

func (s *FileStore) ListFixedExpenses(userID string) ([]domain.FixedExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadData(userID).FixedExpenses, nil
}

func (s *FileStore) AppendFixedExpense(userID string, f domain.FixedExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.loadData(userID)
	d.FixedExpenses = append(d.FixedExpenses, f)
	return s.saveData(userID, d)
}

func (s *FileStore) UpdateFixedExpense(userID, id, name string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.loadData(userID)
	for i := range d.FixedExpenses {
		if d.FixedExpenses[i].ID == id {
			d.FixedExpenses[i].Name = name
			d.FixedExpenses[i].Amount = amount
			return s.saveData(userID, d)
		}
	}
	return ErrNotFound
}

func (s *FileStore) DeleteFixedExpense(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.loadData(userID)
	for i, f := range d.FixedExpenses {
		if f.ID == id {
			d.FixedExpenses = append(d.FixedExpenses[:i], d.FixedExpenses[i+1:]...)
			return s.saveData(userID, d)
		}
	}
	return ErrNotFound
}

func (s *FileStore) MonthlyBudget(userID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadData(userID).MonthlyBudget, nil
}

func (s *FileStore) SetMonthlyBudget(userID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.loadData(userID)
	d.MonthlyBudget = amount
	return s.saveData(userID, d)
}

func (s *FileStore) ListCheckIns(userID string) ([]domain.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadData(userID).CheckIns, nil
}

func (s *FileStore) AppendCheckIn(userID string, c domain.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.loadData(userID)
	d.CheckIns = append(d.CheckIns, c)
	return s.saveData(userID, d)
}

func (s *FileStore) ListReflections(userID string) ([]domain.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadData(userID).Reflections, nil
}

func (s *FileStore) SaveReflectionOutcome(userID string, r domain.Reflection, e *domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.loadData(userID)
	d.Reflections = append(d.Reflections, r)
	if e != nil {
		d.Expenses = append(d.Expenses, *e)
	}
	return s.saveData(userID, d)
}

func (s *FileStore) ListChatMessages(userID string) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadData(userID).ChatHistory, nil
}

func (s *FileStore) AppendChatMessage(userID string, msg domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.loadData(userID)
	d.ChatHistory = append(d.ChatHistory, msg)
	return s.saveData(userID, d)
}

func (s *FileStore) ClearChatMessages(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.loadData(userID)
	d.ChatHistory = []domain.ChatMessage{}
	return s.saveData(userID, d)
}

func (s *FileStore) Settings(userID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadData(userID).Settings, nil
}

func (s *FileStore) PutSetting(userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.loadData(userID)
	d.Settings[key] = value
	return s.saveData(userID, d)
}

func (s *FileStore) loadUserRecords() []userRecord {
	raw, err := os.ReadFile(s.usersPath())
	if err != nil {
		return nil
	}
	var users []userRecord
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil
	}
	return users
}

func (s *FileStore) saveUserRecords(users []userRecord) error {
	raw, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.usersPath(), raw, 0o644)
}
