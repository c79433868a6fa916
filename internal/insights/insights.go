// Package insights derives display values from raw expense data.
// Every function is pure: identical input yields identical output
// regardless of call order.
package insights

import (
	"fmt"
	"time"

	"zenspend/pkg/domain"
)

// Totals summarizes the current month against the monthly budget.
type Totals struct {
	TotalFixed  float64 `json:"totalFixed"`
	TotalSpent  float64 `json:"totalSpent"`
	Remaining   float64 `json:"remaining"`
	PercentUsed float64 `json:"percentUsed"`
}

// DayTotal is one entry of a daily spending series.
type DayTotal struct {
	Date   time.Time `json:"date"`
	Label  string    `json:"label"`
	Amount float64   `json:"amount"`
}

// WeekTotal is one entry of a monthly weekly series.
type WeekTotal struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// CurrentMonthExpenses filters expenses dated in now's calendar month and year.
func CurrentMonthExpenses(expenses []domain.Expense, now time.Time) []domain.Expense {
	out := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		d := e.Date.In(now.Location())
		if d.Month() == now.Month() && d.Year() == now.Year() {
			out = append(out, e)
		}
	}
	return out
}

// ComputeTotals derives spend totals from fixed expenses and the current
// month's variable expenses. PercentUsed is 0 when no budget is set.
func ComputeTotals(budget float64, fixed []domain.FixedExpense, variableForMonth []domain.Expense) Totals {
	var totalFixed float64
	for _, f := range fixed {
		totalFixed += f.Amount
	}
	totalSpent := totalFixed
	for _, e := range variableForMonth {
		totalSpent += e.Amount
	}
	t := Totals{
		TotalFixed: totalFixed,
		TotalSpent: totalSpent,
		Remaining:  budget - totalSpent,
	}
	if budget > 0 {
		t.PercentUsed = totalSpent / budget * 100
	}
	return t
}

// DailySeries sums expenses per calendar day for the last days days ending at
// anchor, oldest first. Days with no expenses contribute a zero entry.
func DailySeries(expenses []domain.Expense, days int, anchor time.Time) []DayTotal {
	if days <= 0 {
		days = 7
	}
	loc := anchor.Location()
	anchorDay := truncateDay(anchor, loc)
	series := make([]DayTotal, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := anchorDay.AddDate(0, 0, -i)
		var total float64
		for _, e := range expenses {
			if truncateDay(e.Date.In(loc), loc).Equal(day) {
				total += e.Amount
			}
		}
		series = append(series, DayTotal{
			Date:   day,
			Label:  day.Format("Mon"),
			Amount: total,
		})
	}
	return series
}

// WeeklySeriesForMonth partitions month into calendar weeks starting Sunday
// and sums the expenses falling both inside each week window and inside the
// month. A week spanning a month boundary only counts the days inside month.
func WeeklySeriesForMonth(expenses []domain.Expense, month time.Time) []WeekTotal {
	loc := month.Location()
	year, m := month.Year(), month.Month()
	firstDay := time.Date(year, m, 1, 0, 0, 0, 0, loc)
	daysInMonth := firstDay.AddDate(0, 1, -1).Day()
	firstWeekday := int(firstDay.Weekday()) // 0 = Sunday
	weekCount := (daysInMonth + firstWeekday + 6) / 7

	weeks := make([]WeekTotal, 0, weekCount)
	for weekNum := 0; weekNum < weekCount; weekNum++ {
		weekStart := time.Date(year, m, 1-firstWeekday+weekNum*7, 0, 0, 0, 0, loc)
		weekEnd := weekStart.AddDate(0, 0, 7)
		var total float64
		for _, e := range expenses {
			d := e.Date.In(loc)
			if d.Month() != m || d.Year() != year {
				continue
			}
			if !d.Before(weekStart) && d.Before(weekEnd) {
				total += e.Amount
			}
		}
		weeks = append(weeks, WeekTotal{
			Label:  fmt.Sprintf("Week %d", weekNum+1),
			Amount: total,
		})
	}
	return weeks
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
