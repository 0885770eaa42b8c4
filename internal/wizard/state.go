package wizard

import (
	"slices"
	"time"
)

// State is a read-only view of a form's values. Rules, conditions, options
// and derived computations receive a State, never the controller itself.
type State struct {
	values map[string]any
}

func (s State) get(name string) any {
	return s.values[name]
}

// Text returns a text field's value, or "" when the field is not text.
func (s State) Text(name string) string {
	v, _ := s.values[name].(string)
	return v
}

// Choices returns a copy of a choices field's value.
func (s State) Choices(name string) []string {
	v, _ := s.values[name].([]string)
	return slices.Clone(v)
}

// Has reports whether a choices field contains id.
func (s State) Has(name, id string) bool {
	v, _ := s.values[name].([]string)
	return slices.Contains(v, id)
}

// Date returns a date field's value.
func (s State) Date(name string) time.Time {
	v, _ := s.values[name].(time.Time)
	return v
}

// Range returns a date range field's value.
func (s State) Range(name string) DateRange {
	v, _ := s.values[name].(DateRange)
	return v
}

// Bool returns a bool field's value.
func (s State) Bool(name string) bool {
	v, _ := s.values[name].(bool)
	return v
}

// Number returns a number field's value.
func (s State) Number(name string) float64 {
	v, _ := s.values[name].(float64)
	return v
}

// Values returns a copy of every value keyed by field name.
func (s State) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	if ss, ok := v.([]string); ok {
		return slices.Clone(ss)
	}
	return v
}

// isEmpty reports whether v is the unset value of its kind.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case time.Time:
		return t.IsZero()
	case DateRange:
		return !t.Complete()
	case bool:
		return !t
	}
	return false
}

// equalValue compares two values of the same kind.
func equalValue(a, b any) bool {
	switch at := a.(type) {
	case []string:
		bt, ok := b.([]string)
		return ok && slices.Equal(at, bt)
	case time.Time:
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	case DateRange:
		bt, ok := b.(DateRange)
		return ok && at.From.Equal(bt.From) && at.To.Equal(bt.To)
	}
	return a == b
}
