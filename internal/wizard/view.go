package wizard

import "maps"

// View is an immutable snapshot of a controller, safe to hand to other
// goroutines and to encode as JSON.
type View struct {
	Form       string            `json:"form"`
	Step       int               `json:"step"`
	StepName   string            `json:"stepName"`
	Steps      []string          `json:"steps"`
	Values     map[string]any    `json:"values"`
	Errors     map[string]string `json:"errors"`
	Derived    map[string]any    `json:"derived"`
	StepValid  bool              `json:"stepValid"`
	Terminal   bool              `json:"terminal"`
	Submitting bool              `json:"submitting"`
	Dirty      bool              `json:"dirty"`
}

// Error returns the message recorded for a field, or "".
func (v View) Error(field string) string {
	return v.Errors[field]
}

// View captures the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	steps := make([]string, len(c.schema.Steps))
	for i, s := range c.schema.Steps {
		steps[i] = s.Name
	}

	return View{
		Form:       c.schema.Name,
		Step:       c.step,
		StepName:   c.schema.Steps[c.step].Name,
		Steps:      steps,
		Values:     c.state().Values(),
		Errors:     maps.Clone(c.errs),
		Derived:    maps.Clone(c.derived),
		StepValid:  c.stepValidLocked(c.step),
		Terminal:   c.step == len(c.schema.Steps)-1,
		Submitting: c.inFlight || (c.busy != nil && c.busy()),
		Dirty:      c.dirtyLocked(),
	}
}
