package utils

import (
	"fmt"
	"time"
)

// WeekdayNames are indexed by time.Weekday.
var WeekdayNames = [7]string{
	"Domingo",
	"Segunda-feira",
	"Terça-feira",
	"Quarta-feira",
	"Quinta-feira",
	"Sexta-feira",
	"Sábado",
}

// MonthNames are indexed by time.Month - 1.
var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// Period is a labeled half-open interval [Start, End).
type Period struct {
	Label string
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Sunday that opens t's week, at midnight.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// WeekPeriods returns one period per day, Sunday to Saturday, of now's week.
func WeekPeriods(now time.Time) []Period {
	start := StartOfWeek(now)
	periods := make([]Period, 0, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		periods = append(periods, Period{
			Label: WeekdayNames[day.Weekday()],
			Start: day,
			End:   day.AddDate(0, 0, 1),
		})
	}
	return periods
}

// MonthWeekPeriods returns one period per Sunday-aligned week that touches
// now's month, labeled "Semana 1", "Semana 2", ... Each period is the seven
// days from its week start clipped to the month.
func MonthWeekPeriods(now time.Time) []Period {
	monthStart := StartOfMonth(now)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var periods []Period
	for weekStart, n := StartOfWeek(monthStart), 1; weekStart.Before(monthEnd); weekStart, n = weekStart.AddDate(0, 0, 7), n+1 {
		start, end := weekStart, weekStart.AddDate(0, 0, 7)
		if start.Before(monthStart) {
			start = monthStart
		}
		if end.After(monthEnd) {
			end = monthEnd
		}
		periods = append(periods, Period{
			Label: fmt.Sprintf("Semana %d", n),
			Start: start,
			End:   end,
		})
	}
	return periods
}

// YearPeriods returns the twelve calendar months of now's year.
func YearPeriods(now time.Time) []Period {
	yearStart := StartOfYear(now)
	periods := make([]Period, 0, 12)
	for i := 0; i < 12; i++ {
		start := yearStart.AddDate(0, i, 0)
		periods = append(periods, Period{
			Label: MonthNames[i],
			Start: start,
			End:   start.AddDate(0, 1, 0),
		})
	}
	return periods
}
