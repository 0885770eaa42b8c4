package wizard

import (
	"regexp"
	"strings"
)

// Rule validates a field value. It returns the error message to show next to
// the field, or "" when the value is acceptable.
type Rule func(v any, s State) string

// Required fails on the unset value of the field's kind: an empty or blank
// string, an empty list, a zero date, an incomplete range, false.
func Required(msg string) Rule {
	return func(v any, _ State) string {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return msg
		}
		if isEmpty(v) {
			return msg
		}
		return ""
	}
}

// Pattern fails when a non-empty text value does not match re.
// Empty values pass; combine with Required to reject them.
func Pattern(re *regexp.Regexp, msg string) Rule {
	return func(v any, _ State) string {
		s, _ := v.(string)
		if s == "" || re.MatchString(s) {
			return ""
		}
		return msg
	}
}

// Check wraps a custom predicate. fn returns the message or "".
func Check(fn func(v any, s State) string) Rule {
	return Rule(fn)
}

// RangeOrdered fails when a complete date range ends before it starts.
func RangeOrdered(msg string) Rule {
	return func(v any, _ State) string {
		r, _ := v.(DateRange)
		if r.Complete() && r.To.Before(r.From) {
			return msg
		}
		return ""
	}
}

// OneOf requires a text field to hold one of the allowed values.
// Empty values pass.
func OneOf(msg string, allowed ...string) Rule {
	return func(v any, _ State) string {
		s, _ := v.(string)
		if s == "" {
			return ""
		}
		for _, a := range allowed {
			if s == a {
				return ""
			}
		}
		return msg
	}
}
