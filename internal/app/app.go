package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"zenspend/internal/chat"
	"zenspend/internal/insights"
	"zenspend/internal/pause"
	"zenspend/internal/store"
	"zenspend/pkg/ai"
	"zenspend/pkg/auth"
	"zenspend/pkg/domain"
	"zenspend/pkg/money"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL   string
	DataDir       string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	JWTSecret     string
	HistoryLimit  int

	// Pre-built dependencies override the wiring above; tests use these.
	Store     store.Store
	Sessions  store.SessionStore
	Completer ai.Completer
}

// App wires storage, sessions, the pause flow, and the chat forwarder into
// one service facade the HTTP layer calls into.
type App struct {
	store    store.Store
	sessions store.SessionStore
	chat     *chat.Forwarder

	mu    sync.Mutex
	flows map[string]*pause.Flow

	now func() time.Time
}

// New selects a storage backend from the configuration: Postgres when a
// database URL is set, the file store when a data directory is set, and the
// in-memory store otherwise.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = chat.DefaultHistoryLimit
	}

	dataStore := cfg.Store
	if dataStore == nil {
		var err error
		switch {
		case cfg.DatabaseURL != "":
			dataStore, err = store.NewGormStore(cfg.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("init postgres store: %w", err)
			}
		case cfg.DataDir != "":
			dataStore, err = store.NewFileStore(cfg.DataDir)
			if err != nil {
				return nil, fmt.Errorf("init file store: %w", err)
			}
		default:
			dataStore = store.NewMemoryStore()
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch {
		case cfg.JWTSecret != "":
			var revoker store.Revoker
			if cfg.RedisAddr != "" {
				revoker = store.NewRedisRevoker(redis.NewClient(&redis.Options{
					Addr:     cfg.RedisAddr,
					Password: cfg.RedisPassword,
				}))
			}
			sessionStore = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL, revoker)
		case cfg.RedisAddr != "":
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		default:
			sessionStore = store.NewMemorySessionStore()
		}
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
		chat:     chat.NewForwarder(dataStore, cfg.Completer, cfg.HistoryLimit),
		flows:    make(map[string]*pause.Flow),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// SignUp registers a new user and signs them in.
func (a *App) SignUp(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.User{}, "", ErrEmailRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    a.now(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// SignIn validates credentials and issues a session token. All failures
// surface as ErrInvalidCredentials.
func (a *App) SignIn(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// SignOut removes the session token.
func (a *App) SignOut(token string) error {
	return a.sessions.DeleteSession(token)
}

// ListExpenses returns all of the user's one-off expenses.
func (a *App) ListExpenses(userID string) ([]domain.Expense, error) {
	return a.store.ListExpenses(userID)
}

// AddExpense records a one-off expense dated now.
func (a *App) AddExpense(userID, description string, amount float64) (domain.Expense, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.Expense{}, ErrDescriptionRequired
	}
	if amount <= 0 {
		return domain.Expense{}, ErrAmountNotPositive
	}
	e := domain.Expense{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      amount,
		Date:        a.now(),
	}
	if err := a.store.AppendExpense(userID, e); err != nil {
		return domain.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	return e, nil
}

// DeleteExpense removes an expense by id.
func (a *App) DeleteExpense(userID, id string) error {
	return a.store.DeleteExpense(userID, id)
}

// FixedExpensePresets are the suggested recurring costs offered during setup.
var FixedExpensePresets = []string{"Rent", "Electricity", "Water", "Internet", "Transportation"}

// ListFixedExpenses returns the user's recurring monthly costs.
func (a *App) ListFixedExpenses(userID string) ([]domain.FixedExpense, error) {
	return a.store.ListFixedExpenses(userID)
}

// AddFixedExpense records a recurring cost. Adding a name that already
// exists is a no-op returning the existing entry.
func (a *App) AddFixedExpense(userID, name string, amount float64) (domain.FixedExpense, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.FixedExpense{}, ErrNameRequired
	}
	if amount <= 0 {
		return domain.FixedExpense{}, ErrAmountNotPositive
	}
	existing, err := a.store.ListFixedExpenses(userID)
	if err != nil {
		return domain.FixedExpense{}, fmt.Errorf("list fixed expenses: %w", err)
	}
	for _, f := range existing {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	f := domain.FixedExpense{ID: uuid.NewString(), Name: name, Amount: amount}
	if err := a.store.AppendFixedExpense(userID, f); err != nil {
		return domain.FixedExpense{}, fmt.Errorf("save fixed expense: %w", err)
	}
	return f, nil
}

// UpdateFixedExpense overwrites a recurring cost's name and amount.
func (a *App) UpdateFixedExpense(userID, id, name string, amount float64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if amount <= 0 {
		return ErrAmountNotPositive
	}
	return a.store.UpdateFixedExpense(userID, id, name, amount)
}

// DeleteFixedExpense removes a recurring cost by id.
func (a *App) DeleteFixedExpense(userID, id string) error {
	return a.store.DeleteFixedExpense(userID, id)
}

// MonthlyBudget returns the user's budget; zero means unset.
func (a *App) MonthlyBudget(userID string) (float64, error) {
	return a.store.MonthlyBudget(userID)
}

// SetMonthlyBudget overwrites the budget. Zero clears it.
func (a *App) SetMonthlyBudget(userID string, amount float64) error {
	if amount < 0 {
		return ErrNegativeBudget
	}
	return a.store.SetMonthlyBudget(userID, amount)
}

// ListCheckIns returns the user's mood check-ins.
func (a *App) ListCheckIns(userID string) ([]domain.CheckIn, error) {
	return a.store.ListCheckIns(userID)
}

// AddCheckIn records a mood check-in dated now.
func (a *App) AddCheckIn(userID string, mood domain.Mood) (domain.CheckIn, error) {
	if !mood.Valid() {
		return domain.CheckIn{}, ErrUnknownMood
	}
	c := domain.CheckIn{ID: uuid.NewString(), Mood: mood, Date: a.now()}
	if err := a.store.AppendCheckIn(userID, c); err != nil {
		return domain.CheckIn{}, fmt.Errorf("save check-in: %w", err)
	}
	return c, nil
}

// ListReflections returns the user's completed pause reflections.
func (a *App) ListReflections(userID string) ([]domain.Reflection, error) {
	return a.store.ListReflections(userID)
}

// PauseFlow returns the user's pause flow, creating it on first use. Each
// user has exactly one flow; its state machine serializes concurrent access.
func (a *App) PauseFlow(userID string) *pause.Flow {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.flows[userID]
	if !ok {
		f = pause.NewFlow()
		a.flows[userID] = f
	}
	return f
}

// DecidePause completes the user's pause flow and persists the outcome: the
// reflection always, the linked expense only on a bought decision.
func (a *App) DecidePause(userID string, decision domain.Decision) (pause.Outcome, error) {
	flow := a.PauseFlow(userID)
	outcome, err := flow.Decide(decision)
	if err != nil {
		return pause.Outcome{}, err
	}
	if err := a.store.SaveReflectionOutcome(userID, outcome.Reflection, outcome.Expense); err != nil {
		return pause.Outcome{}, fmt.Errorf("save reflection: %w", err)
	}
	return outcome, nil
}

// SendChat forwards a message to the assistant with the user's current
// financial picture attached, persisting both sides of the exchange.
func (a *App) SendChat(ctx context.Context, userID, text string) (domain.ChatMessage, error) {
	snapshot, err := a.financeSnapshot(userID)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return a.chat.Send(ctx, userID, snapshot, text)
}

// ChatHistory returns the user's full conversation.
func (a *App) ChatHistory(userID string) ([]domain.ChatMessage, error) {
	return a.store.ListChatMessages(userID)
}

// ClearChat deletes the user's conversation.
func (a *App) ClearChat(userID string) error {
	return a.store.ClearChatMessages(userID)
}

// OverviewDisplay carries the pre-formatted MAD strings the dashboard shows.
type OverviewDisplay struct {
	Budget     string `json:"budget"`
	TotalSpent string `json:"totalSpent"`
	Remaining  string `json:"remaining"`
}

// Overview is the dashboard payload: this month's totals plus the derived
// wellbeing signals.
type Overview struct {
	Totals        insights.Totals      `json:"totals"`
	Display       OverviewDisplay      `json:"display"`
	Daily         []insights.DayTotal  `json:"daily"`
	Weekly        []insights.WeekTotal `json:"weekly"`
	SpendingLevel insights.Level       `json:"spendingLevel"`
	Wellbeing     insights.Wellbeing   `json:"wellbeing"`
	Reflective    string               `json:"reflectiveMessage"`
	Unusual       *insights.Notice     `json:"unusualSpending,omitempty"`
	RecentMood    domain.Mood          `json:"recentMood,omitempty"`
	PauseInsight  insights.Notice      `json:"pauseInsight"`
}

// GetOverview assembles the dashboard from stored data.
func (a *App) GetOverview(userID string) (Overview, error) {
	now := a.now()
	expenses, err := a.store.ListExpenses(userID)
	if err != nil {
		return Overview{}, fmt.Errorf("list expenses: %w", err)
	}
	fixed, err := a.store.ListFixedExpenses(userID)
	if err != nil {
		return Overview{}, fmt.Errorf("list fixed expenses: %w", err)
	}
	budget, err := a.store.MonthlyBudget(userID)
	if err != nil {
		return Overview{}, fmt.Errorf("budget: %w", err)
	}
	checkIns, err := a.store.ListCheckIns(userID)
	if err != nil {
		return Overview{}, fmt.Errorf("list check-ins: %w", err)
	}
	reflections, err := a.store.ListReflections(userID)
	if err != nil {
		return Overview{}, fmt.Errorf("list reflections: %w", err)
	}

	monthly := insights.CurrentMonthExpenses(expenses, now)
	totals := insights.ComputeTotals(budget, fixed, monthly)
	daily := insights.DailySeries(expenses, 7, now)
	weekly := insights.WeeklySeriesForMonth(expenses, now)

	return Overview{
		Totals:        totals,
		Daily:         daily,
		Weekly:        weekly,
		SpendingLevel: insights.RecentSpendingLevel(daily),
		Wellbeing:     insights.WellbeingState(totals.PercentUsed, daily),
		Reflective:    insights.ReflectiveMessage(budget, totals.PercentUsed),
		Unusual:       insights.UnusualSpending(expenses, daily, weekly),
		RecentMood:    insights.RecentMood(checkIns),
		PauseInsight:  insights.PauseInsight(reflections),
		Display: OverviewDisplay{
			Budget:     money.Format(budget, false),
			TotalSpent: money.Format(totals.TotalSpent, false),
			Remaining:  money.Format(totals.Remaining, false),
		},
	}, nil
}

// financeSnapshot condenses this month's numbers for the chat prompt.
func (a *App) financeSnapshot(userID string) (chat.FinanceSnapshot, error) {
	now := a.now()
	expenses, err := a.store.ListExpenses(userID)
	if err != nil {
		return chat.FinanceSnapshot{}, fmt.Errorf("list expenses: %w", err)
	}
	fixed, err := a.store.ListFixedExpenses(userID)
	if err != nil {
		return chat.FinanceSnapshot{}, fmt.Errorf("list fixed expenses: %w", err)
	}
	budget, err := a.store.MonthlyBudget(userID)
	if err != nil {
		return chat.FinanceSnapshot{}, fmt.Errorf("budget: %w", err)
	}

	monthly := insights.CurrentMonthExpenses(expenses, now)
	totals := insights.ComputeTotals(budget, fixed, monthly)
	daily := insights.DailySeries(expenses, 7, now)
	return chat.FinanceSnapshot{
		Budget:        budget,
		TotalSpent:    totals.TotalSpent,
		Remaining:     totals.Remaining,
		PercentUsed:   totals.PercentUsed,
		SpendingLevel: string(insights.RecentSpendingLevel(daily)),
	}, nil
}
