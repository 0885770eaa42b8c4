package calculator

import (
	"fmt"
	"strings"
	"time"
)

// Age is a dog's age in whole years and remaining months.
type Age struct {
	Years  int `json:"years"`
	Months int `json:"months"`
}

// AgeAt computes the age of something born at birth, as of now.
// Negative results are clamped to zero.
func AgeAt(birth, now time.Time) Age {
	years := now.Year() - birth.Year()
	months := int(now.Month()) - int(birth.Month())
	if months < 0 {
		years--
		months += 12
	}

	// The day of the month has not been reached yet.
	if now.Day() < birth.Day() {
		months--
		if months < 0 {
			years--
			months += 12
		}
	}

	return Age{Years: max(0, years), Months: max(0, months)}
}

// ParseBirthDate accepts the date formats the backend and the forms use:
// RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birth date %q: %w", s, err)
	}
	return t, nil
}

// FormatAge renders a birth date as "2a 3m", "2a", "6m" or "< 1m".
// Missing or unparseable dates render as "S/D" (sin datos).
func FormatAge(birthDate string, now time.Time) string {
	if strings.TrimSpace(birthDate) == "" {
		return "S/D"
	}
	birth, err := ParseBirthDate(birthDate)
	if err != nil {
		return "S/D"
	}

	age := AgeAt(birth, now)
	switch {
	case age.Years > 0 && age.Months > 0:
		return fmt.Sprintf("%da %dm", age.Years, age.Months)
	case age.Years > 0:
		return fmt.Sprintf("%da", age.Years)
	case age.Months > 0:
		return fmt.Sprintf("%dm", age.Months)
	default:
		return "< 1m"
	}
}
