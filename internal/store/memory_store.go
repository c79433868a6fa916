package store

import (
	"sync"

	"zenspend/pkg/domain"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]domain.User // by ID
	byEmail map[string]string      // email -> ID
	data    map[string]*domain.UserData
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
		data:    make(map[string]*domain.UserData),
	}
}

// record returns the user's data record, creating it on first touch.
// Callers must hold the write lock.
func (s *MemoryStore) record(userID string) *domain.UserData {
	d, ok := s.data[userID]
	if !ok {
		d = domain.NewUserData()
		s.data[userID] = d
	}
	return d
}

func (s *MemoryStore) SaveUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.users[u.ID]; ok && old.Email != u.Email {
		delete(s.byEmail, old.Email)
	}
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryStore) HasUserEmail(email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) ListExpenses(userID string) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[userID]
	if !ok {
		return []domain.Expense{}, nil
	}
	return append([]domain.Expense{}, d.Expenses...), nil
}

func (s *MemoryStore) AppendExpense(userID string, e domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.record(userID)
	d.Expenses = append(d.Expenses, e)
	return nil
}

func (s *MemoryStore) DeleteExpense(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.record(userID)
	for i, e := range d.Expenses {
		if e.ID == id {
			d.Expenses = append(d.Expenses[:i], d.Expenses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListFixedExpenses(userID string) ([]domain.FixedExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[userID]
	if !ok {
		return []domain.FixedExpense{}, nil
	}
	return append([]domain.FixedExpense{}, d.FixedExpenses...), nil
}

func (s *MemoryStore) AppendFixedExpense(userID string, f domain.FixedExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.record(userID)
	d.FixedExpenses = append(d.FixedExpenses, f)
	return nil
}

func (s *MemoryStore) UpdateFixedExpense(userID, id, name string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.record(userID)
	for i := range d.FixedExpenses {
		if d.FixedExpenses[i].ID == id {
			d.FixedExpenses[i].Name = name
			d.FixedExpenses[i].Amount = amount
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteFixedExpense(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.record(userID)
	for i, f := range d.FixedExpenses {
		if f.ID == id {
			d.FixedExpenses = append(d.FixedExpenses[:i], d.FixedExpenses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) MonthlyBudget(userID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[userID]
	if !ok {
		return 0, nil
	}
	return d.MonthlyBudget, nil
}

func (s *MemoryStore) SetMonthlyBudget(userID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(userID).MonthlyBudget = amount
	return nil
}

func (s *MemoryStore) ListCheckIns(userID string) ([]domain.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[userID]
	if !ok {
		return []domain.CheckIn{}, nil
	}
	return append([]domain.CheckIn{}, d.CheckIns...), nil
}

func (s *MemoryStore) AppendCheckIn(userID string, c domain.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.record(userID)
	d.CheckIns = append(d.CheckIns, c)
	return nil
}

func (s *MemoryStore) ListReflections(userID string) ([]domain.Reflection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[userID]
	if !ok {
		return []domain.Reflection{}, nil
	}
	return append([]domain.Reflection{}, d.Reflections...), nil
}

func (s *MemoryStore) SaveReflectionOutcome(userID string, r domain.Reflection, e *domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.record(userID)
	d.Reflections = append(d.Reflections, r)
	if e != nil {
		d.Expenses = append(d.Expenses, *e)
	}
	return nil
}

func (s *MemoryStore) ListChatMessages(userID string) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[userID]
	if !ok {
		return []domain.ChatMessage{}, nil
	}
	return append([]domain.ChatMessage{}, d.ChatHistory...), nil
}

func (s *MemoryStore) AppendChatMessage(userID string, msg domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.record(userID)
	d.ChatHistory = append(d.ChatHistory, msg)
	return nil
}

func (s *MemoryStore) ClearChatMessages(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(userID).ChatHistory = []domain.ChatMessage{}
	return nil
}

func (s *MemoryStore) Settings(userID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]string{}
	if d, ok := s.data[userID]; ok {
		for k, v := range d.Settings {
			out[k] = v
		}
	}
	return out, nil
}

func (s *MemoryStore) PutSetting(userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.record(userID)
	if d.Settings == nil {
		d.Settings = map[string]string{}
	}
	d.Settings[key] = value
	return nil
}
