package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var prices = map[string]float64{"h1": 500, "h2": 650, "d1": 200}

var byType = map[string][]string{
	"HOTEL":   {"h1", "h2"},
	"DAYCARE": {"d1"},
}

// stayForm is a reduced check-in form.
func stayForm() Schema {
	return Schema{
		Name: "stay",
		Steps: []Step{
			{
				Name: "service",
				AutoSelect: []AutoSelect{{
					Field:   "serviceId",
					Options: func(s State) []string { return byType[s.Text("serviceType")] },
				}},
			},
			{Name: "dog"},
		},
		Fields: []Field{
			{
				Name:   "serviceType",
				Kind:   KindText,
				Rules:  []Rule{Required("pick a type")},
				Clears: []string{"serviceId"},
			},
			{
				Name:  "serviceId",
				Kind:  KindText,
				Rules: []Rule{Required("pick a service")},
				When:  func(s State) bool { return len(byType[s.Text("serviceType")]) > 1 },
			},
			{
				Name:  "stay",
				Kind:  KindDateRange,
				Rules: []Rule{Required("pick dates"), RangeOrdered("check-out before check-in")},
				When:  func(s State) bool { return s.Text("serviceType") == "HOTEL" },
			},
			{Name: "addOns", Kind: KindChoices},
			{Name: "notes", Kind: KindText},
			{Name: "dogId", Kind: KindText, Step: 1, Rules: []Rule{Required("pick a dog")}},
		},
		Derived: []Derived{{
			Name:      "total",
			DependsOn: []string{"serviceId", "addOns"},
			Compute: func(s State) any {
				total := prices[s.Text("serviceId")]
				if s.Has("addOns", "swimming") {
					total += 25
				}
				return total
			},
		}},
	}
}

type setting struct {
	field string
	value any
}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsBadSchemas(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Schema)
	}{
		{"no steps", func(s *Schema) { s.Steps = nil }},
		{"duplicate field", func(s *Schema) { s.Fields = append(s.Fields, Field{Name: "notes", Kind: KindText}) }},
		{"unknown kind", func(s *Schema) { s.Fields[4].Kind = Kind(99) }},
		{"step out of range", func(s *Schema) { s.Fields[4].Step = 2 }},
		{"default of wrong kind", func(s *Schema) { s.Fields[4].Default = 3 }},
		{"clears unknown field", func(s *Schema) { s.Fields[0].Clears = []string{"nope"} }},
		{"auto-select unknown field", func(s *Schema) { s.Steps[0].AutoSelect[0].Field = "nope" }},
		{"auto-select non-text field", func(s *Schema) { s.Steps[0].AutoSelect[0].Field = "addOns" }},
		{"derived on unknown field", func(s *Schema) { s.Derived[0].DependsOn = []string{"nope"} }},
		{"derived shadows field", func(s *Schema) { s.Derived[0].Name = "notes" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stayForm()
			tt.mutate(&s)
			_, err := New(s)
			require.ErrorIs(t, err, ErrInvalidSchema)
			assert.Panics(t, func() { MustNew(s) })
		})
	}
}

func TestNewDoesNotMutateSchema(t *testing.T) {
	s := stayForm()
	MustNew(s)
	assert.Nil(t, s.Fields[4].Default)
}

func TestSetFieldTypeChecks(t *testing.T) {
	c := MustNew(stayForm())

	require.ErrorIs(t, c.SetField("nope", "x"), ErrUnknownField)
	require.ErrorIs(t, c.SetField("serviceType", 3), ErrWrongType)
	require.ErrorIs(t, c.SetField("addOns", "swimming"), ErrWrongType)
	require.ErrorIs(t, c.Toggle("notes", "x"), ErrWrongType)
	require.NoError(t, c.SetField("serviceType", "HOTEL"))
}

func TestSetFieldJSON(t *testing.T) {
	c := MustNew(stayForm())

	require.NoError(t, c.SetFieldJSON("stay", json.RawMessage(`{"from":"2025-03-01","to":"2025-03-04"}`)))
	require.NoError(t, c.SetFieldJSON("addOns", json.RawMessage(`["swimming"]`)))
	require.ErrorIs(t, c.SetFieldJSON("serviceType", json.RawMessage(`12`)), ErrWrongType)
	require.ErrorIs(t, c.SetFieldJSON("nope", json.RawMessage(`"x"`)), ErrUnknownField)

	c.Read(func(s State) {
		assert.Equal(t, 3, s.Range("stay").Nights())
		assert.Equal(t, []string{"swimming"}, s.Choices("addOns"))
	})
}

func TestValidateStepRespectsConditions(t *testing.T) {
	tests := []struct {
		name   string
		values []setting
		want   bool
	}{
		{"empty", nil, false},
		{"daycare needs nothing else", []setting{{"serviceType", "DAYCARE"}}, true},
		{"hotel needs service and dates", []setting{{"serviceType", "HOTEL"}}, false},
		{"hotel without dates", []setting{{"serviceType", "HOTEL"}, {"serviceId", "h1"}}, false},
		{
			"hotel complete",
			[]setting{{"serviceType", "HOTEL"}, {"serviceId", "h1"}, {"stay", DateRange{From: day(1), To: day(3)}}},
			true,
		},
		{
			"hotel reversed dates",
			[]setting{{"serviceType", "HOTEL"}, {"serviceId", "h1"}, {"stay", DateRange{From: day(3), To: day(1)}}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := MustNew(stayForm())
			for _, kv := range tt.values {
				require.NoError(t, c.SetField(kv.field, kv.value))
			}
			assert.Equal(t, tt.want, c.ValidateStep(0))
		})
	}
}

func TestValidateStepIsPure(t *testing.T) {
	c := MustNew(stayForm())
	before := c.View()

	assert.False(t, c.ValidateStep(0))
	assert.Equal(t, before, c.View())
}

func TestConditionalErrorClearedWhenConditionStops(t *testing.T) {
	c := MustNew(stayForm())
	require.NoError(t, c.SetField("serviceType", "HOTEL"))
	assert.False(t, c.Advance())
	assert.Equal(t, "pick dates", c.View().Error("stay"))

	require.NoError(t, c.SetField("serviceType", "DAYCARE"))
	assert.Empty(t, c.View().Error("stay"))
	assert.Empty(t, c.View().Error("serviceId"))
}

func TestAdvancePopulatesErrors(t *testing.T) {
	c := MustNew(stayForm())

	assert.False(t, c.Advance())
	v := c.View()
	assert.Equal(t, 0, v.Step)
	assert.Equal(t, map[string]string{"serviceType": "pick a type"}, v.Errors)
}

func TestAdvanceAutoSelectsSingleOption(t *testing.T) {
	c := MustNew(stayForm())
	require.NoError(t, c.SetField("serviceType", "DAYCARE"))

	require.True(t, c.Advance())
	v := c.View()
	assert.Equal(t, 1, v.Step)
	assert.Equal(t, "d1", v.Values["serviceId"])
	assert.Equal(t, 200.0, v.Derived["total"])
}

func TestAdvanceKeepsExplicitSelection(t *testing.T) {
	c := MustNew(stayForm())
	require.NoError(t, c.SetField("serviceType", "HOTEL"))
	require.NoError(t, c.SetField("serviceId", "h2"))
	require.NoError(t, c.SetField("stay", DateRange{From: day(1), To: day(2)}))

	require.True(t, c.Advance())
	assert.Equal(t, "h2", c.View().Values["serviceId"])
}

func TestChangingTypeClearsService(t *testing.T) {
	c := MustNew(stayForm())
	require.NoError(t, c.SetField("serviceType", "HOTEL"))
	require.NoError(t, c.SetField("serviceId", "h1"))
	assert.Equal(t, 500.0, c.View().Derived["total"])

	require.NoError(t, c.SetField("serviceType", "DAYCARE"))
	v := c.View()
	assert.Equal(t, "", v.Values["serviceId"])
	assert.Equal(t, 0.0, v.Derived["total"])

	// Same value again is not a change.
	require.NoError(t, c.SetField("serviceId", "d1"))
	require.NoError(t, c.SetField("serviceType", "DAYCARE"))
	assert.Equal(t, "d1", c.View().Values["serviceId"])
}

func TestDerivedTotal(t *testing.T) {
	c := MustNew(stayForm())
	require.NoError(t, c.SetField("serviceType", "HOTEL"))
	require.NoError(t, c.SetField("serviceId", "h1"))
	require.NoError(t, c.Toggle("addOns", "swimming"))
	assert.Equal(t, 525.0, c.View().Derived["total"])

	// Unrelated fields leave it alone.
	require.NoError(t, c.SetField("notes", "likes naps"))
	require.NoError(t, c.SetField("stay", DateRange{From: day(1), To: day(9)}))
	assert.Equal(t, 525.0, c.View().Derived["total"])

	require.NoError(t, c.Toggle("addOns", "swimming"))
	assert.Equal(t, 500.0, c.View().Derived["total"])
}

func TestBackKeepsValues(t *testing.T) {
	c := MustNew(stayForm())
	assert.False(t, c.Back())

	require.NoError(t, c.SetField("serviceType", "DAYCARE"))
	require.True(t, c.Advance())
	require.NoError(t, c.SetField("dogId", "7"))
	assert.False(t, c.Advance(), "advance past the last step")

	require.True(t, c.Back())
	v := c.View()
	assert.Equal(t, 0, v.Step)
	assert.Equal(t, "7", v.Values["dogId"])
	assert.Equal(t, "DAYCARE", v.Values["serviceType"])
}

func TestGoToOnlyMovesBackwards(t *testing.T) {
	c := MustNew(stayForm())
	assert.False(t, c.GoTo(1))

	require.NoError(t, c.SetField("serviceType", "DAYCARE"))
	require.True(t, c.Advance())
	assert.False(t, c.GoTo(1))
	assert.True(t, c.GoTo(0))
}

func readyToSubmit(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	c := MustNew(stayForm(), opts...)
	require.NoError(t, c.SetField("serviceType", "DAYCARE"))
	require.True(t, c.Advance())
	require.NoError(t, c.SetField("dogId", "7"))
	return c
}

func TestSubmitGuards(t *testing.T) {
	ctx := context.Background()
	called := false
	fn := func(context.Context, State) (any, error) {
		called = true
		return nil, nil
	}

	c := MustNew(stayForm())
	_, err := c.Submit(ctx, fn)
	require.ErrorIs(t, err, ErrNotTerminalStep)

	require.NoError(t, c.SetField("serviceType", "DAYCARE"))
	require.True(t, c.Advance())
	_, err = c.Submit(ctx, fn)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, "pick a dog", c.View().Error("dogId"))

	busy := readyToSubmit(t, WithBusy(func() bool { return true }))
	_, err = busy.Submit(ctx, fn)
	require.ErrorIs(t, err, ErrSubmitInFlight)
	assert.True(t, busy.View().Submitting)

	assert.False(t, called)
}

func TestSubmitSuccessResets(t *testing.T) {
	c := readyToSubmit(t)

	var got map[string]any
	res, err := c.Submit(context.Background(), func(_ context.Context, s State) (any, error) {
		got = s.Values()
		return "reservation-1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "reservation-1", res)
	assert.Equal(t, "7", got["dogId"])

	v := c.View()
	assert.Equal(t, 0, v.Step)
	assert.Equal(t, "", v.Values["serviceType"])
	assert.False(t, v.Dirty)
}

func TestSubmitFailureKeepsState(t *testing.T) {
	c := readyToSubmit(t)
	before := c.View()

	boom := errors.New("boom")
	_, err := c.Submit(context.Background(), func(context.Context, State) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, before, c.View())
}

func TestSubmitRebase(t *testing.T) {
	c := readyToSubmit(t, WithRebaseOnSubmit())
	_, err := c.Submit(context.Background(), func(context.Context, State) (any, error) { return nil, nil })
	require.NoError(t, err)

	v := c.View()
	assert.Equal(t, "DAYCARE", v.Values["serviceType"])
	assert.False(t, v.Dirty)
}

func TestSecondSubmitWhileInFlightIsIgnored(t *testing.T) {
	c := readyToSubmit(t)

	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	fn := func(context.Context, State) (any, error) {
		calls.Add(1)
		close(started)
		<-release
		return "ok", nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.Submit(context.Background(), fn)
		assert.NoError(t, err)
	}()
	<-started

	assert.True(t, c.Submitting())
	_, err := c.Submit(context.Background(), fn)
	require.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, c.Submitting())
}

func TestCloseDiscardsLateResult(t *testing.T) {
	c := readyToSubmit(t)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), func(context.Context, State) (any, error) {
			close(started)
			<-release
			return "late", nil
		})
		done <- err
	}()
	<-started

	c.Close()
	close(release)
	require.ErrorIs(t, <-done, ErrClosed)
	require.ErrorIs(t, c.SetField("notes", "x"), ErrClosed)
	assert.True(t, c.Closed())
}

func TestResetDuringSubmitDiscardsResult(t *testing.T) {
	c := readyToSubmit(t)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), func(context.Context, State) (any, error) {
			close(started)
			<-release
			return nil, nil
		})
		done <- err
	}()
	<-started

	c.Reset()
	require.NoError(t, c.SetField("notes", "new visit"))
	close(release)
	require.ErrorIs(t, <-done, ErrDiscarded)
	assert.Equal(t, "new visit", c.View().Values["notes"])
}

func TestWithDefaults(t *testing.T) {
	c, err := New(stayForm(), WithDefaults(map[string]any{"notes": "from record"}))
	require.NoError(t, err)
	assert.Equal(t, "from record", c.View().Values["notes"])
	assert.False(t, c.Dirty())

	require.NoError(t, c.SetField("notes", "edited"))
	assert.True(t, c.Dirty())

	c.Reset()
	assert.Equal(t, "from record", c.View().Values["notes"])

	_, err = New(stayForm(), WithDefaults(map[string]any{"nope": "x"}))
	require.ErrorIs(t, err, ErrUnknownField)
	_, err = New(stayForm(), WithDefaults(map[string]any{"notes": 1}))
	require.ErrorIs(t, err, ErrWrongType)
}

func TestViewIsACopy(t *testing.T) {
	c := MustNew(stayForm())
	require.NoError(t, c.Toggle("addOns", "swimming"))

	v := c.View()
	v.Values["addOns"].([]string)[0] = "tampered"
	v.Errors["x"] = "y"

	assert.Equal(t, []string{"swimming"}, c.View().Values["addOns"])
	assert.Empty(t, c.View().Errors)
}
