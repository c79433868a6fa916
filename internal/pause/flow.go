// Package pause implements the guided reflection-before-purchase wizard as an
// explicit state machine. Timed transitions (the breathing pause, the
// confirmation auto-reset) are scheduled with cancellable timer handles rather
// than left to the rendering layer.
package pause

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"zenspend/pkg/domain"
)

// State identifies a step of the wizard.
type State string

const (
	StatePriceInput  State = "PRICE_INPUT"
	StateReflection1 State = "REFLECTION_1"
	StateReflection2 State = "REFLECTION_2"
	StateBreathing   State = "BREATHING"
	StateDecision    State = "DECISION"
	StateConfirmed   State = "CONFIRMED"
)

// AnswerAdvanceDelay is the UI affordance between selecting an option and the
// next question appearing. The machine transition itself is immediate.
const AnswerAdvanceDelay = 300 * time.Millisecond

// ConfirmResetDelay is how long the confirmation screen stays up before the
// flow resets itself to the beginning.
const ConfirmResetDelay = 3 * time.Second

// Question is one fixed-choice reflection prompt.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Questions is the static ordered list of reflection prompts.
var Questions = []Question{
	{
		ID:      "need",
		Prompt:  "Is this a need or a want?",
		Options: []string{"Need", "Want", "Not sure"},
	},
	{
		ID:      "emotion",
		Prompt:  "What emotion is present?",
		Options: []string{"Joy", "Stress", "Fear", "Hope", "Pressure", "Calm"},
	},
}

// Confirmation is the acknowledgement copy keyed by decision.
type Confirmation struct {
	Title   string `json:"title"`
	Subtext string `json:"subtext"`
}

var confirmations = map[domain.Decision]Confirmation{
	domain.DecisionBought:  {Title: "Noted", Subtext: "You made a choice."},
	domain.DecisionSkipped: {Title: "Well done", Subtext: "You gave yourself space."},
}

// Outcome is what completing the flow produces: always a reflection, plus a
// linked expense when the decision was to buy.
type Outcome struct {
	Reflection domain.Reflection
	Expense    *domain.Expense
}

var (
	ErrWrongState     = errors.New("action not valid in current state")
	ErrPriceRequired  = errors.New("price is required")
	ErrUnknownOption  = errors.New("answer is not one of the offered options")
	ErrPriceNegative  = errors.New("price cannot be negative")
	ErrDecisionNeeded = errors.New("decision must be bought or skipped")
)

// Flow is one user's pass through the wizard. Safe for use from HTTP handlers.
type Flow struct {
	mu         sync.Mutex
	state      State
	item       string
	price      float64
	decision   domain.Decision
	answers    map[string]string
	guide      *Guide
	resetTimer *time.Timer
	now        func() time.Time
}

// NewFlow starts a fresh wizard at the price step.
func NewFlow() *Flow {
	return &Flow{
		state:   StatePriceInput,
		answers: make(map[string]string),
		now:     time.Now,
	}
}

// State returns the current step.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetPrice records the item under consideration and its price, then advances
// to the first reflection question. The price is required; the item is not.
func (f *Flow) SetPrice(item string, price float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePriceInput {
		return ErrWrongState
	}
	if price == 0 {
		return ErrPriceRequired
	}
	if price < 0 {
		return ErrPriceNegative
	}
	f.item = item
	f.price = price
	f.state = StateReflection1
	return nil
}

// CurrentQuestion returns the reflection prompt for the current step.
func (f *Flow) CurrentQuestion() (Question, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case StateReflection1:
		return Questions[0], true
	case StateReflection2:
		return Questions[1], true
	}
	return Question{}, false
}

// Answer records the selected option for the current question and advances.
// Leaving the second question enters the breathing pause, which schedules its
// own transition to the decision step.
func (f *Flow) Answer(option string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var q Question
	switch f.state {
	case StateReflection1:
		q = Questions[0]
	case StateReflection2:
		q = Questions[1]
	default:
		return ErrWrongState
	}
	if !containsOption(q.Options, option) {
		return ErrUnknownOption
	}
	f.answers[q.ID] = option
	if f.state == StateReflection1 {
		f.state = StateReflection2
		return nil
	}
	f.state = StateBreathing
	f.guide = NewShortGuide()
	f.guide.Start(f.breathingDone)
	return nil
}

// Breathing returns the active guide while in the breathing step.
func (f *Flow) Breathing() (*Guide, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateBreathing || f.guide == nil {
		return nil, false
	}
	return f.guide, true
}

// SkipBreathing ends the pause early and moves straight to the decision.
func (f *Flow) SkipBreathing() error {
	f.mu.Lock()
	if f.state != StateBreathing || f.guide == nil {
		f.mu.Unlock()
		return ErrWrongState
	}
	guide := f.guide
	f.mu.Unlock()
	guide.Skip()
	return nil
}

func (f *Flow) breathingDone() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateBreathing {
		f.state = StateDecision
		f.guide = nil
	}
}

// Decide records the terminal choice and produces the records to persist:
// the reflection, plus a linked expense when the user bought. The flow then
// shows the confirmation and schedules its own reset.
func (f *Flow) Decide(decision domain.Decision) (Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateDecision {
		return Outcome{}, ErrWrongState
	}
	if !decision.Valid() {
		return Outcome{}, ErrDecisionNeeded
	}

	now := f.now().UTC()
	answers := make(map[string]string, len(f.answers))
	for k, v := range f.answers {
		answers[k] = v
	}
	outcome := Outcome{
		Reflection: domain.Reflection{
			ID:       uuid.NewString(),
			Item:     f.item,
			Price:    f.price,
			Answers:  answers,
			Decision: decision,
			Date:     now,
		},
	}
	if decision == domain.DecisionBought {
		outcome.Expense = &domain.Expense{
			ID:             uuid.NewString(),
			Description:    f.item,
			Amount:         f.price,
			Date:           now,
			FromReflection: true,
		}
	}

	f.state = StateConfirmed
	f.decision = decision
	f.resetTimer = time.AfterFunc(ConfirmResetDelay, f.Reset)
	return outcome, nil
}

// Confirmation returns the acknowledgement copy while the flow is confirmed.
func (f *Flow) Confirmation() (Confirmation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateConfirmed {
		return Confirmation{}, false
	}
	return confirmations[f.decision], true
}

// Reset cancels any pending timers and returns the flow to the price step,
// discarding all in-progress answers without persisting anything.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
	if f.guide != nil {
		f.guide.Stop()
		f.guide = nil
	}
	f.state = StatePriceInput
	f.item = ""
	f.price = 0
	f.decision = ""
	f.answers = make(map[string]string)
}

func containsOption(options []string, option string) bool {
	for _, o := range options {
		if o == option {
			return true
		}
	}
	return false
}
