package calculator

import (
	"github.com/dustin/go-humanize"
)

// FormatMXN renders a price the way the dashboard shows it: "$1,250.00".
func FormatMXN(amount float64) string {
	if amount < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -amount)
	}
	return "$" + humanize.FormatFloat("#,###.##", amount)
}

// Greeting returns the salutation for an hour of the day (0-23).
//
//	05:00-11:59 Buenos días
//	12:00-19:59 Buenas tardes
//	otherwise   Buenas noches
func Greeting(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Buenos días"
	case hour >= 12 && hour < 20:
		return "Buenas tardes"
	default:
		return "Buenas noches"
	}
}
