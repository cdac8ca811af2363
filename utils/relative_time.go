package utils

import (
	"fmt"
	"math"
	"time"
)

const (
	minutesInDay      = 1440
	minutesInMonth    = 43200
	minutesInTwoMonth = 86400
)

// FormatDistance renders the distance between t and now in Portuguese with a
// "há"/"em" suffix, e.g. "há 3 dias" or "há cerca de 2 horas". Thresholds
// follow the date-fns formatDistance table the mobile app uses, so server and
// client labels agree.
func FormatDistance(t, now time.Time) string {
	future := t.After(now)
	from, to := t, now
	if future {
		from, to = now, t
	}
	text := distanceText(from, to)
	if future {
		return "em " + text
	}
	return "há " + text
}

func distanceText(from, to time.Time) string {
	seconds := to.Sub(from).Seconds()
	minutes := int(math.Round(seconds / 60))

	switch {
	case minutes < 2:
		if minutes == 0 {
			return "menos de um minuto"
		}
		return "1 minuto"
	case minutes < 45:
		return fmt.Sprintf("%d minutos", minutes)
	case minutes < 90:
		return "cerca de 1 hora"
	case minutes < minutesInDay:
		return plural(int(math.Round(float64(minutes)/60)), "cerca de 1 hora", "cerca de %d horas")
	case minutes < 2520:
		return "1 dia"
	case minutes < minutesInMonth:
		return plural(int(math.Round(float64(minutes)/minutesInDay)), "1 dia", "%d dias")
	case minutes < minutesInTwoMonth:
		return plural(int(math.Round(float64(minutes)/minutesInMonth)), "cerca de 1 mês", "cerca de %d meses")
	}

	months := monthsBetween(from, to)
	if months < 12 {
		return plural(int(math.Round(float64(minutes)/minutesInMonth)), "1 mês", "%d meses")
	}

	years := months / 12
	switch rest := months % 12; {
	case rest < 3:
		return plural(years, "cerca de 1 ano", "cerca de %d anos")
	case rest < 9:
		return plural(years, "mais de 1 ano", "mais de %d anos")
	default:
		return plural(years+1, "quase 1 ano", "quase %d anos")
	}
}

// monthsBetween counts whole calendar months from from to to.
func monthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	anchor := from.AddDate(0, months, 0)
	if anchor.After(to) {
		months--
	}
	return months
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return fmt.Sprintf(many, n)
}
