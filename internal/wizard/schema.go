// Package wizard implements multi-step form controllers.
//
// A form is declared once as a Schema: its fields (name, kind, step, default,
// rules), its steps and the values derived from the fields. The schema is
// checked when a Controller is built, so a typo in a field name or a default
// of the wrong type is a construction error instead of a silent runtime miss.
//
// A Controller owns one FormState. All mutation goes through SetField, Advance,
// Back, Submit and Reset; readers get immutable Views.
package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrInvalidSchema is wrapped by every schema construction error.
var ErrInvalidSchema = errors.New("invalid form schema")

// Kind is the value type of a field.
type Kind int

const (
	// KindText holds a string.
	KindText Kind = iota + 1
	// KindChoices holds a []string, e.g. toggled add-ons.
	KindChoices
	// KindDate holds a time.Time; the zero time means unset.
	KindDate
	// KindDateRange holds a DateRange.
	KindDateRange
	// KindBool holds a bool.
	KindBool
	// KindNumber holds a float64.
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindChoices:
		return "choices"
	case KindDate:
		return "date"
	case KindDateRange:
		return "date range"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) valid() bool {
	return k >= KindText && k <= KindNumber
}

// zero returns the unset value of the kind.
func (k Kind) zero() any {
	switch k {
	case KindText:
		return ""
	case KindChoices:
		return []string{}
	case KindDate:
		return time.Time{}
	case KindDateRange:
		return DateRange{}
	case KindBool:
		return false
	case KindNumber:
		return float64(0)
	}
	return nil
}

// accepts reports whether v has the Go type the kind stores.
func (k Kind) accepts(v any) bool {
	switch v.(type) {
	case string:
		return k == KindText
	case []string:
		return k == KindChoices
	case time.Time:
		return k == KindDate
	case DateRange:
		return k == KindDateRange
	case bool:
		return k == KindBool
	case float64:
		return k == KindNumber
	}
	return false
}

// Decode converts a JSON value sent by the frontend into the kind's Go type.
// Dates accept YYYY-MM-DD and RFC 3339; null decodes to the zero value.
func (k Kind) Decode(raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return k.zero(), nil
	}
	switch k {
	case KindText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expected a string: %w", err)
		}
		return s, nil
	case KindChoices:
		var ss []string
		if err := json.Unmarshal(raw, &ss); err != nil {
			return nil, fmt.Errorf("expected a list of strings: %w", err)
		}
		if ss == nil {
			ss = []string{}
		}
		return ss, nil
	case KindDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expected a date string: %w", err)
		}
		return parseDate(s)
	case KindDateRange:
		var r struct {
			From string `json:"from"`
			To   string `json:"to"`
		}
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("expected a date range: %w", err)
		}
		from, err := parseDate(r.From)
		if err != nil {
			return nil, err
		}
		to, err := parseDate(r.To)
		if err != nil {
			return nil, err
		}
		return DateRange{From: from, To: to}, nil
	case KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("expected a boolean: %w", err)
		}
		return b, nil
	case KindNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("expected a number: %w", err)
		}
		return n, nil
	}
	return nil, fmt.Errorf("cannot decode %s", k)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// DateRange is a stay: check-in and check-out days.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Complete reports whether both ends are set.
func (r DateRange) Complete() bool {
	return !r.From.IsZero() && !r.To.IsZero()
}

// Nights is the number of nights between From and To, or 0 when incomplete.
func (r DateRange) Nights() int {
	if !r.Complete() || r.To.Before(r.From) {
		return 0
	}
	return int(r.To.Sub(r.From).Hours() / 24)
}

// Field declares one form field.
type Field struct {
	// Name identifies the field; unique within the schema.
	Name string

	// Kind is the value type. SetField rejects values of any other type.
	Kind Kind

	// Step is the index of the step that shows and validates the field.
	Step int

	// Default is the initial value. Nil means the kind's zero value.
	Default any

	// Rules run in order; the first failing rule's message is the field error.
	Rules []Rule

	// When governs conditional fields. When it returns false the field is
	// not validated and its error is cleared. Nil means always active.
	When func(State) bool

	// Clears lists fields reset to their defaults whenever this field is set
	// to a different value, e.g. the chosen service when the category changes.
	Clears []string
}

// AutoSelect fills a text field on Advance when exactly one option is
// eligible and the field is still empty.
type AutoSelect struct {
	Field   string
	Options func(State) []string
}

// Step declares one page of the wizard.
type Step struct {
	Name       string
	AutoSelect []AutoSelect
}

// Derived declares a value computed from the form state.
type Derived struct {
	Name      string
	DependsOn []string
	// Compute must be a pure function of the state.
	Compute func(State) any
}

// Schema is the static declaration of a form.
type Schema struct {
	Name    string
	Fields  []Field
	Steps   []Step
	Derived []Derived
}

// compiled is a checked schema with lookup tables.
type compiled struct {
	Schema
	byName     map[string]*Field
	dependents map[string][]int // field name -> indexes into Derived
}

func compile(s Schema) (*compiled, error) {
	fail := func(format string, args ...any) (*compiled, error) {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidSchema, s.Name, fmt.Sprintf(format, args...))
	}

	if len(s.Steps) == 0 {
		return fail("at least one step is required")
	}

	c := &compiled{
		Schema:     s,
		byName:     make(map[string]*Field, len(s.Fields)),
		dependents: make(map[string][]int),
	}
	c.Fields = slices.Clone(s.Fields)

	for i := range s.Fields {
		f := &c.Fields[i]
		if f.Name == "" {
			return fail("field %d has no name", i)
		}
		if _, dup := c.byName[f.Name]; dup {
			return fail("duplicate field %q", f.Name)
		}
		if !f.Kind.valid() {
			return fail("field %q has unknown kind %d", f.Name, int(f.Kind))
		}
		if f.Step < 0 || f.Step >= len(s.Steps) {
			return fail("field %q is on step %d, schema has %d steps", f.Name, f.Step, len(s.Steps))
		}
		if f.Default == nil {
			f.Default = f.Kind.zero()
		} else if !f.Kind.accepts(f.Default) {
			return fail("field %q default %T is not a %s", f.Name, f.Default, f.Kind)
		}
		c.byName[f.Name] = f
	}

	for _, f := range c.Fields {
		for _, name := range f.Clears {
			if _, ok := c.byName[name]; !ok {
				return fail("field %q clears unknown field %q", f.Name, name)
			}
		}
	}

	for i, step := range s.Steps {
		for _, auto := range step.AutoSelect {
			f, ok := c.byName[auto.Field]
			if !ok {
				return fail("step %d auto-selects unknown field %q", i, auto.Field)
			}
			if f.Kind != KindText {
				return fail("step %d auto-selects %s field %q", i, f.Kind, auto.Field)
			}
			if auto.Options == nil {
				return fail("step %d auto-select for %q has no options", i, auto.Field)
			}
		}
	}

	seen := make(map[string]bool, len(s.Derived))
	for i, d := range s.Derived {
		if d.Name == "" || d.Compute == nil {
			return fail("derived value %d needs a name and a compute function", i)
		}
		if seen[d.Name] {
			return fail("duplicate derived value %q", d.Name)
		}
		if _, clash := c.byName[d.Name]; clash {
			return fail("derived value %q shadows a field", d.Name)
		}
		seen[d.Name] = true
		for _, dep := range d.DependsOn {
			if _, ok := c.byName[dep]; !ok {
				return fail("derived value %q depends on unknown field %q", d.Name, dep)
			}
			c.dependents[dep] = append(c.dependents[dep], i)
		}
	}

	return c, nil
}
