package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"zenspend/internal/app"
	"zenspend/internal/chat"
	"zenspend/internal/pause"
	"zenspend/internal/ratelimit"
	"zenspend/internal/store"
	"zenspend/internal/util"
	"zenspend/pkg/auth"
	"zenspend/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                      *app.App
	RedisAddr                string
	RedisPassword            string
	SignupRateLimitPerMinute int
	LoginRateLimitPerMinute  int
}

// Server exposes the HTTP API.
type Server struct {
	app           *app.App
	mux           *http.ServeMux
	signupLimiter *ratelimit.FixedWindowLimiter
	loginLimiter  *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured. Rate limiting is active
// only when a Redis address is configured.
func New(cfg Config) (*Server, error) {
	s := &Server{
		app: cfg.App,
		mux: http.NewServeMux(),
	}
	if cfg.RedisAddr != "" {
		signupLimit := cfg.SignupRateLimitPerMinute
		if signupLimit <= 0 {
			signupLimit = 5
		}
		loginLimit := cfg.LoginRateLimitPerMinute
		if loginLimit <= 0 {
			loginLimit = 10
		}
		newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
			prefix := "zenspend:ratelimit:" + name
			limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, time.Minute)
			if err != nil {
				return nil, fmt.Errorf("init %s limiter: %w", name, err)
			}
			return limiter, nil
		}
		var err error
		if s.signupLimiter, err = newLimiter("signup", signupLimit); err != nil {
			return nil, err
		}
		if s.loginLimiter, err = newLimiter("login", loginLimit); err != nil {
			return nil, err
		}
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with the shared middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog("zenspend", s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// navigation
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/signin", s.handleSignInPage)
	s.mux.HandleFunc("/dashboard", s.handleDashboardPage)

	// auth
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))

	// finances
	s.mux.Handle("/api/expenses", s.authenticated(s.handleExpenses))
	s.mux.Handle("/api/expenses/", s.authenticated(s.handleExpenseByID))
	s.mux.Handle("/api/fixed-expenses", s.authenticated(s.handleFixedExpenses))
	s.mux.Handle("/api/fixed-expenses/", s.authenticated(s.handleFixedExpenseByID))
	s.mux.Handle("/api/budget", s.authenticated(s.handleBudget))

	// wellbeing
	s.mux.Handle("/api/checkins", s.authenticated(s.handleCheckIns))
	s.mux.Handle("/api/reflections", s.authenticated(s.handleReflections))
	s.mux.Handle("/api/insights", s.authenticated(s.handleInsights))

	// pause flow
	s.mux.Handle("/api/pause", s.authenticated(s.handlePause))
	s.mux.Handle("/api/pause/answer", s.authenticated(s.handlePauseAnswer))
	s.mux.Handle("/api/pause/skip", s.authenticated(s.handlePauseSkip))
	s.mux.Handle("/api/pause/decide", s.authenticated(s.handlePauseDecide))
	s.mux.Handle("/api/pause/reset", s.authenticated(s.handlePauseReset))

	// chat
	s.mux.Handle("/api/chat", s.authenticated(s.handleChat))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRoot routes the landing path: signed-in users go to the dashboard,
// everyone else to sign-in. Unknown paths bounce back to the root.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if _, ok := s.authorize(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/signin", http.StatusFound)
}

func (s *Server) handleSignInPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"page": "signin"})
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(r); !ok {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"page": "dashboard"})
}

type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	return s.app.UserFromToken(token)
}

// auth handlers
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.signupLimiter, "too many signup attempts") {
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.SignUp(req.Email, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	slog.Info("signup", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.SignIn(req.Email, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.app.SignOut(token); err != nil {
		writeError(w, http.StatusInternalServerError, "sign out failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// /api/expenses
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		expenses, err := s.app.ListExpenses(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list expenses failed")
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Items: expenses, Count: len(expenses)})
	case http.MethodPost:
		var req expenseRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		e, err := s.app.AddExpense(user.ID, req.Description, req.Amount)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	default:
		methodNotAllowed(w)
	}
}

// /api/expenses/{id}
func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.app.DeleteExpense(user.ID, id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// /api/fixed-expenses
func (s *Server) handleFixedExpenses(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		fixed, err := s.app.ListFixedExpenses(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list fixed expenses failed")
			return
		}
		writeJSON(w, http.StatusOK, fixedExpensesResponse{
			Items:   fixed,
			Count:   len(fixed),
			Presets: app.FixedExpensePresets,
		})
	case http.MethodPost:
		var req fixedExpenseRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		f, err := s.app.AddFixedExpense(user.ID, req.Name, req.Amount)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, f)
	default:
		methodNotAllowed(w)
	}
}

// /api/fixed-expenses/{id}
func (s *Server) handleFixedExpenseByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.TrimPrefix(r.URL.Path, "/api/fixed-expenses/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req fixedExpenseRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.app.UpdateFixedExpense(user.ID, id, req.Name, req.Amount); err != nil {
			writeAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := s.app.DeleteFixedExpense(user.ID, id); err != nil {
			writeAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

// /api/budget
func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		budget, err := s.app.MonthlyBudget(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "budget lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, budgetPayload{Amount: budget})
	case http.MethodPut:
		var req budgetPayload
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.app.SetMonthlyBudget(user.ID, req.Amount); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, budgetPayload{Amount: req.Amount})
	default:
		methodNotAllowed(w)
	}
}

// /api/checkins
func (s *Server) handleCheckIns(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		checkIns, err := s.app.ListCheckIns(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list check-ins failed")
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Items: checkIns, Count: len(checkIns)})
	case http.MethodPost:
		var req checkInRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		c, err := s.app.AddCheckIn(user.ID, domain.Mood(req.Mood))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	default:
		methodNotAllowed(w)
	}
}

// /api/reflections
func (s *Server) handleReflections(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	reflections, err := s.app.ListReflections(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list reflections failed")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: reflections, Count: len(reflections)})
}

// /api/insights
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	overview, err := s.app.GetOverview(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "insights failed")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// /api/pause — GET returns state, POST starts with item and price.
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request, user domain.User) {
	flow := s.app.PauseFlow(user.ID)
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, pauseStatePayload(flow))
	case http.MethodPost:
		var req pauseStartRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := flow.SetPrice(req.Item, req.Price); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pauseStatePayload(flow))
	default:
		methodNotAllowed(w)
	}
}

// /api/pause/answer
func (s *Server) handlePauseAnswer(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req pauseAnswerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	flow := s.app.PauseFlow(user.ID)
	if err := flow.Answer(req.Option); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pauseStatePayload(flow))
}

// /api/pause/skip — skips the breathing exercise.
func (s *Server) handlePauseSkip(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	flow := s.app.PauseFlow(user.ID)
	if err := flow.SkipBreathing(); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pauseStatePayload(flow))
}

// /api/pause/decide
func (s *Server) handlePauseDecide(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req pauseDecideRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	decision := domain.Decision(req.Decision)
	if !decision.Valid() {
		writeError(w, http.StatusBadRequest, "decision must be bought or skipped")
		return
	}
	outcome, err := s.app.DecidePause(user.ID, decision)
	if err != nil {
		writeAppError(w, err)
		return
	}
	flow := s.app.PauseFlow(user.ID)
	confirmation, _ := flow.Confirmation()
	writeJSON(w, http.StatusOK, pauseDecideResponse{
		State:        string(flow.State()),
		Confirmation: confirmation,
		Reflection:   outcome.Reflection,
		Expense:      outcome.Expense,
	})
}

// /api/pause/reset
func (s *Server) handlePauseReset(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	flow := s.app.PauseFlow(user.ID)
	flow.Reset()
	writeJSON(w, http.StatusOK, pauseStatePayload(flow))
}

// /api/chat
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		history, err := s.app.ChatHistory(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "chat history failed")
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Items: history, Count: len(history)})
	case http.MethodPost:
		var req chatRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		reply, err := s.app.SendChat(r.Context(), user.ID, req.Message)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	case http.MethodDelete:
		if err := s.app.ClearChat(user.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "clear chat failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// request/response payloads
type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type expenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type fixedExpenseRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type fixedExpensesResponse struct {
	Items   []domain.FixedExpense `json:"items"`
	Count   int                   `json:"count"`
	Presets []string              `json:"presets"`
}

type budgetPayload struct {
	Amount float64 `json:"amount"`
}

type checkInRequest struct {
	Mood string `json:"mood"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type listResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

type pauseStartRequest struct {
	Item  string  `json:"item"`
	Price float64 `json:"price"`
}

type pauseAnswerRequest struct {
	Option string `json:"option"`
}

type pauseDecideRequest struct {
	Decision string `json:"decision"`
}

type pauseStateResponse struct {
	State    string          `json:"state"`
	Question *pause.Question `json:"question,omitempty"`
}

type pauseDecideResponse struct {
	State        string             `json:"state"`
	Confirmation pause.Confirmation `json:"confirmation"`
	Reflection   domain.Reflection  `json:"reflection"`
	Expense      *domain.Expense    `json:"expense,omitempty"`
}

func pauseStatePayload(flow *pause.Flow) pauseStateResponse {
	resp := pauseStateResponse{State: string(flow.State())}
	if q, ok := flow.CurrentQuestion(); ok {
		resp.Question = &q
	}
	return resp
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps domain failures to HTTP statuses; everything the user
// can fix is a 400-class response carrying the message verbatim.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrEmailRequired),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, app.ErrDescriptionRequired),
		errors.Is(err, app.ErrAmountNotPositive),
		errors.Is(err, app.ErrNegativeBudget),
		errors.Is(err, app.ErrUnknownMood),
		errors.Is(err, app.ErrNameRequired),
		errors.Is(err, pause.ErrPriceRequired),
		errors.Is(err, pause.ErrPriceNegative),
		errors.Is(err, pause.ErrUnknownOption),
		errors.Is(err, pause.ErrDecisionNeeded),
		errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrBusy):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, pause.ErrWrongState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	if limiter == nil {
		return true
	}
	key := r.URL.Path + "|" + util.ClientIP(r, nil)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}
