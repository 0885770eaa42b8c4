package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/adpaws/dashboard/internal/forms"
	"github.com/adpaws/dashboard/internal/metrics"
	"github.com/adpaws/dashboard/internal/middleware"
	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/rpc"
	"github.com/adpaws/dashboard/internal/session"
	"github.com/adpaws/dashboard/internal/wizard"
)

// SignupServiceName is the RPC service name of SignupService.
const SignupServiceName = "SignupService"

const signupForm = "signup"

// SignupOptions lists the choices of the signup selects.
type SignupOptions struct {
	Breeds  []models.BreedOption `json:"breeds"`
	Sizes   []LabeledOption      `json:"sizes"`
	Genders []LabeledOption      `json:"genders"`
}

// LabeledOption is a select option.
type LabeledOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SignupResponse is the state of a hosted signup wizard. Options is only
// sent by Start.
type SignupResponse struct {
	ID      string           `json:"id"`
	View    forms.SignupView `json:"view"`
	Moved   bool             `json:"moved,omitempty"`
	Options *SignupOptions   `json:"options,omitempty"`
}

// AddDogResponse reports the dog moved out of the draft. When Added is
// false the view carries the draft's errors.
type AddDogResponse struct {
	SignupResponse
	Added bool             `json:"added"`
	Dog   *forms.SignupDog `json:"dog,omitempty"`
}

// RemoveDogRequest drops an added dog.
type RemoveDogRequest struct {
	ID    string `json:"id"`
	DogID string `json:"dogId"`
}

// EditRequest jumps back to a step from the confirmation page.
type EditRequest struct {
	ID   string `json:"id"`
	Step int    `json:"step"`
}

// SubmitSignupResponse reports a signup submission. When Submitted is false
// the view carries the errors.
type SubmitSignupResponse struct {
	Submitted bool                `json:"submitted"`
	Result    *forms.SignupResult `json:"result,omitempty"`
	View      *forms.SignupView   `json:"view,omitempty"`
}

// SignupService hosts client signup wizards. It is reachable without a
// session: signups register with the configured company, or with the
// signed-in operator's company when there is one.
type SignupService struct {
	api       forms.SignupAPI
	session   session.Reader
	companyID models.ID
	wizards   *Registry[*forms.Signup]
}

// NewSignupService creates a signup service. companyID is the company
// public signups register with.
func NewSignupService(api forms.SignupAPI, r session.Reader, companyID models.ID) *SignupService {
	return &SignupService{
		api:       api,
		session:   r,
		companyID: companyID,
		wizards:   NewRegistry[*forms.Signup](signupForm),
	}
}

// Wizards exposes the registry to the idle sweep.
func (s *SignupService) Wizards() Sweeper {
	return s.wizards
}

// Handler returns the service's path prefix and handler.
func (s *SignupService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	rpc.Handle(mux, SignupServiceName, "Start", s.Start, opts...)
	rpc.Handle(mux, SignupServiceName, "Get", s.Get, opts...)
	rpc.Handle(mux, SignupServiceName, "SetField", s.SetField, opts...)
	rpc.Handle(mux, SignupServiceName, "AddDog", s.AddDog, opts...)
	rpc.Handle(mux, SignupServiceName, "RemoveDog", s.RemoveDog, opts...)
	rpc.Handle(mux, SignupServiceName, "Advance", s.Advance, opts...)
	rpc.Handle(mux, SignupServiceName, "Back", s.Back, opts...)
	rpc.Handle(mux, SignupServiceName, "Edit", s.Edit, opts...)
	rpc.Handle(mux, SignupServiceName, "Submit", s.Submit, opts...)
	rpc.Handle(mux, SignupServiceName, "Cancel", s.Cancel, opts...)
	return rpc.Path(SignupServiceName), mux
}

// Start opens an empty signup wizard.
func (s *SignupService) Start(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[SignupResponse], error) {
	w := forms.NewSignup(wizard.WithBusy(func() bool { return s.session.State().IsLoading }))
	id := s.wizards.Add(w)
	slog.Info("Signup started", "wizard_id", id)

	res := &SignupResponse{ID: id, View: w.View(), Options: signupOptions()}
	return connect.NewResponse(res), nil
}

// Get returns the current state of a signup wizard.
func (s *SignupService) Get(ctx context.Context, req *connect.Request[WizardRef]) (*connect.Response[SignupResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	return connect.NewResponse(&SignupResponse{ID: req.Msg.ID, View: w.View()}), nil
}

// SetField sets an owner or draft field.
func (s *SignupService) SetField(ctx context.Context, req *connect.Request[SetFieldRequest]) (*connect.Response[SignupResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	if err := w.SetFieldJSON(req.Msg.Field, req.Msg.Value); err != nil {
		return nil, wizardError(err)
	}
	return connect.NewResponse(&SignupResponse{ID: req.Msg.ID, View: w.View()}), nil
}

// AddDog moves the draft into the dog list.
func (s *SignupService) AddDog(ctx context.Context, req *connect.Request[WizardRef]) (*connect.Response[AddDogResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	dog, err := w.AddDog()
	if errors.Is(err, forms.ErrDraftInvalid) {
		return connect.NewResponse(&AddDogResponse{SignupResponse: SignupResponse{ID: req.Msg.ID, View: w.View()}}), nil
	}
	if err != nil {
		return nil, wizardError(err)
	}
	return connect.NewResponse(&AddDogResponse{
		SignupResponse: SignupResponse{ID: req.Msg.ID, View: w.View()},
		Added:          true,
		Dog:            &dog,
	}), nil
}

// RemoveDog drops an added dog.
func (s *SignupService) RemoveDog(ctx context.Context, req *connect.Request[RemoveDogRequest]) (*connect.Response[SignupResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	found, err := w.RemoveDog(req.Msg.DogID)
	if err != nil {
		return nil, wizardError(err)
	}
	if !found {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("dog not in the signup"))
	}
	return connect.NewResponse(&SignupResponse{ID: req.Msg.ID, View: w.View()}), nil
}

// Advance moves to the next step. Leaving the dogs step adds a filled-in
// draft first.
func (s *SignupService) Advance(ctx context.Context, req *connect.Request[WizardRef]) (*connect.Response[SignupResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	moved := w.Advance()
	return connect.NewResponse(&SignupResponse{ID: req.Msg.ID, View: w.View(), Moved: moved}), nil
}

// Back returns to the previous step.
func (s *SignupService) Back(ctx context.Context, req *connect.Request[WizardRef]) (*connect.Response[SignupResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	moved := w.Back()
	return connect.NewResponse(&SignupResponse{ID: req.Msg.ID, View: w.View(), Moved: moved}), nil
}

// Edit jumps back to an earlier step.
func (s *SignupService) Edit(ctx context.Context, req *connect.Request[EditRequest]) (*connect.Response[SignupResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	moved := w.Edit(req.Msg.Step)
	return connect.NewResponse(&SignupResponse{ID: req.Msg.ID, View: w.View(), Moved: moved}), nil
}

// Submit creates the client and its dogs. On success the wizard is closed.
func (s *SignupService) Submit(ctx context.Context, req *connect.Request[WizardRef]) (*connect.Response[SubmitSignupResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}

	companyID := middleware.GetCompanyID(ctx)
	if companyID == "" {
		companyID = s.companyID
	}
	if companyID == "" {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrNoCompany)
	}

	res, err := w.Submit(ctx, s.api, companyID)
	metrics.RecordSubmit(signupForm, err)
	switch {
	case errors.Is(err, forms.ErrNoDogs):
		w.Form().Validate()
		fallthrough
	case errors.Is(err, wizard.ErrInvalid):
		view := w.View()
		return connect.NewResponse(&SubmitSignupResponse{View: &view}), nil
	case err != nil:
		slog.Error("Signup submit failed", "wizard_id", req.Msg.ID, "error", err)
		return nil, wizardError(err)
	}

	s.wizards.Remove(req.Msg.ID)
	slog.Info("Client signed up", "wizard_id", req.Msg.ID, "company_id", companyID, "dogs", len(res.Dogs))
	return connect.NewResponse(&SubmitSignupResponse{Submitted: true, Result: res}), nil
}

// Cancel closes a wizard, discarding its values.
func (s *SignupService) Cancel(ctx context.Context, req *connect.Request[WizardRef]) (*connect.Response[CancelResponse], error) {
	return connect.NewResponse(&CancelResponse{Closed: s.wizards.Remove(req.Msg.ID)}), nil
}

func signupOptions() *SignupOptions {
	opts := &SignupOptions{Breeds: models.BreedOptions()}
	for _, sz := range models.Sizes {
		opts.Sizes = append(opts.Sizes, LabeledOption{Value: string(sz), Label: sz.Label()})
	}
	for _, g := range []models.Gender{models.GenderMale, models.GenderFemale} {
		opts.Genders = append(opts.Genders, LabeledOption{Value: string(g), Label: g.DogLabel()})
	}
	return opts
}
