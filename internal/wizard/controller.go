package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrUnknownField is returned when a field name is not in the schema.
	ErrUnknownField = errors.New("unknown field")
	// ErrWrongType is returned when a value does not match the field kind.
	ErrWrongType = errors.New("value does not match field kind")
	// ErrInvalid is returned by Submit when some field fails validation.
	ErrInvalid = errors.New("form has invalid fields")
	// ErrNotTerminalStep is returned by Submit before the last step.
	ErrNotTerminalStep = errors.New("submit is only allowed on the last step")
	// ErrSubmitInFlight is returned by Submit while another submission (or
	// an externally signalled remote call) is still outstanding.
	ErrSubmitInFlight = errors.New("submission already in progress")
	// ErrClosed is returned once the controller has been closed.
	ErrClosed = errors.New("form is closed")
	// ErrDiscarded is returned when a submission resolved after the form
	// was reset; its result was not applied.
	ErrDiscarded = errors.New("submission result discarded")
)

// SubmitFunc performs the remote side of a submission. It receives a
// snapshot of the form values and must not retain it.
type SubmitFunc func(ctx context.Context, s State) (any, error)

// Option configures a Controller.
type Option func(*Controller)

// WithBusy supplies an external loading flag. While busy returns true,
// Submit is refused as if a submission were in flight.
func WithBusy(busy func() bool) Option {
	return func(c *Controller) {
		c.busy = busy
	}
}

// WithDefaults overrides schema defaults, e.g. to edit an existing record.
// Values are type-checked like SetField.
func WithDefaults(values map[string]any) Option {
	return func(c *Controller) {
		c.overrides = values
	}
}

// WithRebaseOnSubmit makes a successful submission adopt the submitted
// values as the new defaults instead of clearing the form.
func WithRebaseOnSubmit() Option {
	return func(c *Controller) {
		c.rebase = true
	}
}

// Controller manages one form instance: values, errors, step and derived
// values. It is safe for concurrent use; no lock is held while a SubmitFunc
// runs.
type Controller struct {
	mu sync.Mutex

	schema    *compiled
	defaults  map[string]any
	overrides map[string]any
	rebase    bool
	busy      func() bool

	values  map[string]any
	errs    map[string]string
	derived map[string]any
	step    int

	inFlight bool
	closed   bool
	// gen changes on every reset so a late submission can tell that the
	// state it was started from is gone.
	gen uint64
}

// New checks the schema and returns a controller positioned on the first
// step with default values.
func New(schema Schema, opts ...Option) (*Controller, error) {
	compiled, err := compile(schema)
	if err != nil {
		return nil, err
	}

	c := &Controller{schema: compiled}
	for _, opt := range opts {
		opt(c)
	}

	c.defaults = make(map[string]any, len(compiled.Fields))
	for _, f := range compiled.Fields {
		c.defaults[f.Name] = copyValue(f.Default)
	}
	for name, v := range c.overrides {
		f, ok := compiled.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: default for %q", ErrUnknownField, name)
		}
		if !f.Kind.accepts(v) {
			return nil, fmt.Errorf("%w: default for %q is %T, want %s", ErrWrongType, name, v, f.Kind)
		}
		c.defaults[name] = copyValue(v)
	}
	c.overrides = nil

	c.resetLocked()
	return c, nil
}

// MustNew is New for schemas declared in code. A schema error is a wiring
// defect and panics.
func MustNew(schema Schema, opts ...Option) *Controller {
	c, err := New(schema, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the schema name.
func (c *Controller) Name() string {
	return c.schema.Name
}

func (c *Controller) state() State {
	return State{values: c.values}
}

// SetField updates one value, re-validates it, re-evaluates conditional
// fields and recomputes the derived values that depend on it.
func (c *Controller) SetField(name string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	return c.setLocked(name, value)
}

// SetFieldJSON decodes a JSON value according to the field kind and sets it.
func (c *Controller) SetFieldJSON(name string, raw json.RawMessage) error {
	f, ok := c.schema.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	v, err := f.Kind.Decode(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrongType, name, err)
	}
	return c.SetField(name, v)
}

// Toggle adds id to a choices field, or removes it if present.
func (c *Controller) Toggle(name, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	f, ok := c.schema.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if f.Kind != KindChoices {
		return fmt.Errorf("%w: %q is %s, toggle needs choices", ErrWrongType, name, f.Kind)
	}

	current, _ := c.values[name].([]string)
	next := make([]string, 0, len(current)+1)
	found := false
	for _, v := range current {
		if v == id {
			found = true
			continue
		}
		next = append(next, v)
	}
	if !found {
		next = append(next, id)
	}
	return c.setLocked(name, next)
}

func (c *Controller) setLocked(name string, value any) error {
	f, ok := c.schema.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if !f.Kind.accepts(value) {
		return fmt.Errorf("%w: %q is %s, got %T", ErrWrongType, name, f.Kind, value)
	}

	changed := !equalValue(c.values[name], value)
	c.values[name] = copyValue(value)

	touched := map[string]bool{name: true}
	if changed {
		for _, cleared := range f.Clears {
			c.values[cleared] = copyValue(c.defaults[cleared])
			delete(c.errs, cleared)
			touched[cleared] = true
		}
	}

	c.validateFieldLocked(f)
	c.refreshConditionalLocked()

	for field := range touched {
		for _, i := range c.schema.dependents[field] {
			d := c.schema.Derived[i]
			c.derived[d.Name] = d.Compute(c.state())
		}
	}
	return nil
}

// fieldError evaluates a field's rules against the current state.
// Inactive conditional fields never fail.
func (c *Controller) fieldError(f *Field) string {
	s := c.state()
	if f.When != nil && !f.When(s) {
		return ""
	}
	v := c.values[f.Name]
	for _, rule := range f.Rules {
		if msg := rule(v, s); msg != "" {
			return msg
		}
	}
	return ""
}

func (c *Controller) validateFieldLocked(f *Field) {
	if msg := c.fieldError(f); msg != "" {
		c.errs[f.Name] = msg
	} else {
		delete(c.errs, f.Name)
	}
}

// refreshConditionalLocked clears errors of fields whose condition no
// longer holds.
func (c *Controller) refreshConditionalLocked() {
	s := c.state()
	for i := range c.schema.Fields {
		f := &c.schema.Fields[i]
		if f.When != nil && !f.When(s) {
			delete(c.errs, f.Name)
		}
	}
}

// ValidateStep reports whether every active field of step is valid.
// It does not touch the visible errors.
func (c *Controller) ValidateStep(step int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepValidLocked(step)
}

func (c *Controller) stepValidLocked(step int) bool {
	for i := range c.schema.Fields {
		f := &c.schema.Fields[i]
		if f.Step != step {
			continue
		}
		if c.fieldError(f) != "" {
			return false
		}
	}
	return true
}

// showStepErrorsLocked records the error of every field on step.
func (c *Controller) showStepErrorsLocked(step int) {
	for i := range c.schema.Fields {
		f := &c.schema.Fields[i]
		if f.Step == step {
			c.validateFieldLocked(f)
		}
	}
}

// CheckStep is ValidateStep that also records the error of every failing
// field of step.
func (c *Controller) CheckStep(step int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stepValidLocked(step) {
		return true
	}
	c.showStepErrorsLocked(step)
	return false
}

// Validate checks every step and records the error of every failing field.
// It reports whether the whole form is valid.
func (c *Controller) Validate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateAllLocked()
}

func (c *Controller) validateAllLocked() bool {
	valid := true
	for step := range c.schema.Steps {
		if !c.stepValidLocked(step) {
			c.showStepErrorsLocked(step)
			valid = false
		}
	}
	return valid
}

// Advance moves to the next step when the current one is valid, running the
// step's auto-select hooks first. On an invalid step the field errors are
// populated and the step does not change. It reports whether it moved.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.step >= len(c.schema.Steps)-1 {
		return false
	}
	if !c.stepValidLocked(c.step) {
		c.showStepErrorsLocked(c.step)
		return false
	}

	for _, auto := range c.schema.Steps[c.step].AutoSelect {
		if c.values[auto.Field] != "" {
			continue
		}
		if opts := auto.Options(c.state()); len(opts) == 1 {
			// The field kind was checked at construction.
			_ = c.setLocked(auto.Field, opts[0])
		}
	}

	c.step++
	return true
}

// Back returns to the previous step keeping every value. It reports whether
// it moved.
func (c *Controller) Back() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.step == 0 {
		return false
	}
	c.step--
	return true
}

// GoTo jumps back to an earlier step, e.g. "Editar" on a summary page.
// Forward jumps are refused: they would skip validation.
func (c *Controller) GoTo(step int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || step < 0 || step >= c.step {
		return false
	}
	c.step = step
	return true
}

// Submit validates the whole form and runs fn with a snapshot of the values.
//
// It is refused on a non-terminal step, while a previous submission or an
// external busy flag is active, and when any field is invalid. On success the
// form is reset (or rebased, see WithRebaseOnSubmit) and fn's result is
// returned. On failure the values are left untouched so the user can retry.
// A result that arrives after Reset or Close is discarded.
func (c *Controller) Submit(ctx context.Context, fn SubmitFunc) (any, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.inFlight || (c.busy != nil && c.busy()) {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if c.step != len(c.schema.Steps)-1 {
		c.mu.Unlock()
		return nil, ErrNotTerminalStep
	}
	if !c.validateAllLocked() {
		c.mu.Unlock()
		return nil, ErrInvalid
	}

	c.inFlight = true
	gen := c.gen
	snapshot := State{values: State{values: c.values}.Values()}
	c.mu.Unlock()

	result, err := fn(ctx, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if c.closed {
		slog.Debug("Form closed during submission", "form", c.schema.Name)
		return nil, ErrClosed
	}
	if c.gen != gen {
		slog.Debug("Form reset during submission", "form", c.schema.Name)
		return nil, ErrDiscarded
	}
	if err != nil {
		return nil, err
	}

	if c.rebase {
		c.defaults = snapshot.Values()
	}
	c.resetLocked()
	return result, nil
}

// Submitting reports whether a submission is outstanding.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Dirty reports whether any value differs from its default.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirtyLocked()
}

func (c *Controller) dirtyLocked() bool {
	for name, v := range c.values {
		if !equalValue(v, c.defaults[name]) {
			return true
		}
	}
	return false
}

// Reset restores the defaults and the first step.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.values = make(map[string]any, len(c.defaults))
	for name, v := range c.defaults {
		c.values[name] = copyValue(v)
	}
	c.errs = make(map[string]string)
	c.derived = make(map[string]any, len(c.schema.Derived))
	for _, d := range c.schema.Derived {
		c.derived[d.Name] = d.Compute(c.state())
	}
	c.step = 0
	c.gen++
}

// Close marks the form as gone. Later calls are refused and an outstanding
// submission's result is discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Read runs fn with the current state under the controller lock.
// fn must not call back into the controller.
func (c *Controller) Read(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.state())
}
