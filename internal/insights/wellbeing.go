package insights

import (
	"math"
	"strconv"

	"zenspend/pkg/domain"
)

// Level is the coarse classification of the trailing 7-day daily average spend.
type Level string

const (
	LevelLight    Level = "light"
	LevelModerate Level = "moderate"
	LevelHeavy    Level = "heavy"
)

// RecentSpendingLevel classifies the daily average of a 7-day series.
// Thresholds are in currency units: under 20 light, under 50 moderate.
func RecentSpendingLevel(daily []DayTotal) Level {
	var total float64
	for _, d := range daily {
		total += d.Amount
	}
	avg := total / 7
	switch {
	case avg < 20:
		return LevelLight
	case avg < 50:
		return LevelModerate
	default:
		return LevelHeavy
	}
}

// Wellbeing is the qualitative read of how spending feels right now.
type Wellbeing struct {
	State   string `json:"state"`
	Message string `json:"message"`
	Subtext string `json:"subtext"`
}

// WellbeingState derives the indicator from budget pressure and the 7-day
// series. A spike is the last two days averaging more than twice the full
// week's average. Precedence: spike or >90% used, then >70%, then calm.
func WellbeingState(percentUsed float64, daily []DayTotal) Wellbeing {
	var weekTotal float64
	for _, d := range daily {
		weekTotal += d.Amount
	}
	weekAvg := weekTotal / 7
	var lastTwo float64
	if n := len(daily); n >= 2 {
		lastTwo = (daily[n-1].Amount + daily[n-2].Amount) / 2
	}
	hasSpike := lastTwo > weekAvg*2

	switch {
	case percentUsed > 90 || hasSpike:
		return Wellbeing{
			State:   "Heavy",
			Message: "Money feels light this week.",
			Subtext: "Would you like to pause and reflect?",
		}
	case percentUsed > 70:
		return Wellbeing{
			State:   "A bit tense",
			Message: "Things are getting a bit tight.",
			Subtext: "That's okay. You're noticing.",
		}
	default:
		return Wellbeing{
			State:   "Calm",
			Message: "Money feels light right now.",
			Subtext: "There's space to breathe.",
		}
	}
}

// ReflectiveMessage is the tiered budget-progress copy shown on the home page.
func ReflectiveMessage(budget, percentUsed float64) string {
	rounded := int(math.Round(percentUsed))
	switch {
	case budget == 0:
		return "Set up your monthly flow to see your progress"
	case percentUsed < 25:
		return "Most of your budget is still untouched"
	case percentUsed < 50:
		return "You've used " + strconv.Itoa(rounded) + "% of what you planned for this month"
	case percentUsed < 75:
		return "This month is halfway through financially"
	case percentUsed < 100:
		return "You've used " + strconv.Itoa(rounded) + "% of your monthly flow"
	default:
		return "You've reached your planned amount for this month"
	}
}

// Notice is a gentle observation with supporting copy.
type Notice struct {
	Message string `json:"message"`
	Subtext string `json:"subtext"`
}

// UnusualSpending flags the current week when it runs more than 1.5x the
// average of the month's earlier weeks and exceeds 50. It stays quiet until
// there is enough history to compare against.
func UnusualSpending(expenses []domain.Expense, daily []DayTotal, weekly []WeekTotal) *Notice {
	if len(expenses) < 14 || len(weekly) < 2 {
		return nil
	}
	var thisWeek float64
	for _, d := range daily {
		thisWeek += d.Amount
	}
	prior := weekly[:len(weekly)-1]
	if len(prior) > 3 {
		prior = prior[:3]
	}
	var avgPrior float64
	for _, w := range prior {
		avgPrior += w.Amount
	}
	avgPrior /= float64(len(prior))

	if thisWeek > avgPrior*1.5 && thisWeek > 50 {
		return &Notice{
			Message: "You've spent a bit more than usual this week.",
			Subtext: "No judgment. Just noticing the pattern.",
		}
	}
	return nil
}

// RecentMood returns the most common mood among the last 7 check-ins,
// or empty when there are none.
func RecentMood(checkIns []domain.CheckIn) domain.Mood {
	if len(checkIns) == 0 {
		return ""
	}
	recent := checkIns
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}
	counts := make(map[domain.Mood]int)
	for _, c := range recent {
		counts[c.Mood]++
	}
	var best domain.Mood
	for _, c := range recent {
		if best == "" || counts[c.Mood] > counts[best] {
			best = c.Mood
		}
	}
	return best
}

// PauseInsight summarizes the last 10 reflections as supportive copy.
func PauseInsight(reflections []domain.Reflection) Notice {
	recent := reflections
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	var bought, skipped int
	for _, r := range recent {
		switch r.Decision {
		case domain.DecisionBought:
			bought++
		case domain.DecisionSkipped:
			skipped++
		}
	}
	switch {
	case skipped > bought:
		return Notice{
			Message: "You've been giving yourself space to pause.",
			Subtext: "That takes courage.",
		}
	case bought > 0:
		return Notice{
			Message: "You've been making mindful choices.",
			Subtext: "Each decision is yours to make.",
		}
	default:
		return Notice{
			Message: "Take your time with decisions.",
			Subtext: "There's no rush.",
		}
	}
}
