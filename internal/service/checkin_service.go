package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/adpaws/dashboard/internal/calculator"
	"github.com/adpaws/dashboard/internal/forms"
	"github.com/adpaws/dashboard/internal/metrics"
	"github.com/adpaws/dashboard/internal/middleware"
	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/rpc"
	"github.com/adpaws/dashboard/internal/wizard"
)

// CheckInServiceName is the RPC service name of CheckInService.
const CheckInServiceName = "CheckInService"

const checkInForm = "checkin"

// ErrUnknownAddOn is returned when toggling an add-on not in the catalog.
var ErrUnknownAddOn = errors.New("unknown add-on")

// CheckInBackend is what the check-in wizard needs from the backend.
type CheckInBackend interface {
	ServicesByCompany(ctx context.Context, companyID models.ID, activeOnly bool) ([]models.Service, error)
	CompanyDogs(ctx context.Context, companyID models.ID) ([]models.Dog, error)
	forms.ReservationCreator
}

type checkIn struct {
	form      *wizard.Controller
	catalog   forms.CheckInCatalog
	companyID models.ID
}

func (c *checkIn) Close() { c.form.Close() }

// ServiceTypeOption is a selectable service category.
type ServiceTypeOption struct {
	Type        models.ServiceType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
}

// ServiceOption is a selectable service.
type ServiceOption struct {
	ID         models.ID          `json:"id"`
	Name       string             `json:"name"`
	Type       models.ServiceType `json:"type"`
	Price      float64            `json:"price"`
	PriceLabel string             `json:"priceLabel"`
}

// AddOnOption is a selectable add-on.
type AddOnOption struct {
	models.AddOn
	PriceLabel string `json:"priceLabel"`
}

// DogOption is a selectable guest.
type DogOption struct {
	ID         models.ID `json:"id"`
	Name       string    `json:"name"`
	BreedLabel string    `json:"breedLabel"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	OwnerName  string    `json:"ownerName,omitempty"`
}

// CheckInCatalogView is the catalog the check-in wizard chooses from.
type CheckInCatalogView struct {
	ServiceTypes []ServiceTypeOption `json:"serviceTypes"`
	Services     []ServiceOption     `json:"services"`
	AddOns       []AddOnOption       `json:"addOns"`
	Dogs         []DogOption         `json:"dogs"`
}

// CheckInResponse is the state of a hosted check-in wizard. Catalog is only
// sent by Start.
type CheckInResponse struct {
	ID         string              `json:"id"`
	View       wizard.View         `json:"view"`
	TotalLabel string              `json:"totalLabel"`
	Moved      bool                `json:"moved,omitempty"`
	Catalog    *CheckInCatalogView `json:"catalog,omitempty"`
}

// WizardRef addresses a hosted wizard.
type WizardRef struct {
	ID string `json:"id"`
}

// SetFieldRequest sets one field of a hosted wizard.
type SetFieldRequest struct {
	ID    string          `json:"id"`
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// ToggleAddOnRequest flips one add-on of a hosted check-in.
type ToggleAddOnRequest struct {
	ID      string `json:"id"`
	AddOnID string `json:"addOnId"`
}

// SubmitCheckInResponse reports a check-in submission. When Submitted is
// false the view carries the field errors.
type SubmitCheckInResponse struct {
	Submitted   bool                `json:"submitted"`
	Reservation *models.Reservation `json:"reservation,omitempty"`
	View        *wizard.View        `json:"view,omitempty"`
}

// CancelResponse reports whether a wizard was open.
type CancelResponse struct {
	Closed bool `json:"closed"`
}

// CheckInService hosts check-in wizards.
type CheckInService struct {
	api     CheckInBackend
	addOns  []models.AddOn
	wizards *Registry[*checkIn]
}

// NewCheckInService creates a check-in service offering addOns.
func NewCheckInService(api CheckInBackend, addOns []models.AddOn) *CheckInService {
	return &CheckInService{
		api:     api,
		addOns:  addOns,
		wizards: NewRegistry[*checkIn](checkInForm),
	}
}

// Wizards exposes the registry to the idle sweep.
func (s *CheckInService) Wizards() Sweeper {
	return s.wizards
}

// Handler returns the service's path prefix and handler.
func (s *CheckInService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	rpc.Handle(mux, CheckInServiceName, "Start", s.Start, opts...)
	rpc.Handle(mux, CheckInServiceName, "Get", s.Get, opts...)
	rpc.Handle(mux, CheckInServiceName, "SetField", s.SetField, opts...)
	rpc.Handle(mux, CheckInServiceName, "ToggleAddOn", s.ToggleAddOn, opts...)
	rpc.Handle(mux, CheckInServiceName, "Advance", s.Advance, opts...)
	rpc.Handle(mux, CheckInServiceName, "Back", s.Back, opts...)
	rpc.Handle(mux, CheckInServiceName, "Submit", s.Submit, opts...)
	rpc.Handle(mux, CheckInServiceName, "Cancel", s.Cancel, opts...)
	return rpc.Path(CheckInServiceName), mux
}

// Start loads the catalog and opens a check-in wizard over it.
func (s *CheckInService) Start(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[CheckInResponse], error) {
	companyID := middleware.GetCompanyID(ctx)
	if companyID == "" {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrNoCompany)
	}

	cat := forms.CheckInCatalog{AddOns: s.addOns}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		services, err := s.api.ServicesByCompany(gctx, companyID, true)
		if err != nil {
			return fmt.Errorf("failed to load services: %w", err)
		}
		cat.Services = services
		return nil
	})
	g.Go(func() error {
		dogs, err := s.api.CompanyDogs(gctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to load dogs: %w", err)
		}
		cat.Dogs = dogs
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.Error("Check-in catalog failed to load", "company_id", companyID, "error", err)
		return nil, backendError(err)
	}

	w := &checkIn{form: forms.NewCheckIn(cat), catalog: cat, companyID: companyID}
	id := s.wizards.Add(w)
	slog.Info("Check-in started", "wizard_id", id, "services", len(cat.Services), "dogs", len(cat.Dogs))

	res := s.response(id, w, false)
	res.Catalog = catalogView(cat)
	return connect.NewResponse(res), nil
}

// Get returns the current state of a check-in wizard.
func (s *CheckInService) Get(ctx context.Context, req *connect.Request[WizardRef]) (*connect.Response[CheckInResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	return connect.NewResponse(s.response(req.Msg.ID, w, false)), nil
}

// SetField sets one field.
func (s *CheckInService) SetField(ctx context.Context, req *connect.Request[SetFieldRequest]) (*connect.Response[CheckInResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	if err := w.form.SetFieldJSON(req.Msg.Field, req.Msg.Value); err != nil {
		return nil, wizardError(err)
	}
	return connect.NewResponse(s.response(req.Msg.ID, w, false)), nil
}

// ToggleAddOn adds or removes one add-on.
func (s *CheckInService) ToggleAddOn(ctx context.Context, req *connect.Request[ToggleAddOnRequest]) (*connect.Response[CheckInResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	if !slices.ContainsFunc(w.catalog.AddOns, func(a models.AddOn) bool { return a.ID == req.Msg.AddOnID }) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %q", ErrUnknownAddOn, req.Msg.AddOnID))
	}
	if err := w.form.Toggle(forms.FieldAdditionalServices, req.Msg.AddOnID); err != nil {
		return nil, wizardError(err)
	}
	return connect.NewResponse(s.response(req.Msg.ID, w, false)), nil
}

// Advance moves to the next step when the current one is valid; otherwise
// the view carries the step's errors.
func (s *CheckInService) Advance(ctx context.Context, req *connect.Request[WizardRef]) (*connect.Response[CheckInResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	moved := w.form.Advance()
	return connect.NewResponse(s.response(req.Msg.ID, w, moved)), nil
}

// Back returns to the previous step.
func (s *CheckInService) Back(ctx context.Context, req *connect.Request[WizardRef]) (*connect.Response[CheckInResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	moved := w.form.Back()
	return connect.NewResponse(s.response(req.Msg.ID, w, moved)), nil
}

// Submit creates the reservation. On success the wizard is closed; on a
// backend failure it stays open with its values for a retry.
func (s *CheckInService) Submit(ctx context.Context, req *connect.Request[WizardRef]) (*connect.Response[SubmitCheckInResponse], error) {
	w, err := s.wizards.Get(req.Msg.ID)
	if err != nil {
		return nil, wizardError(err)
	}

	res, err := w.form.Submit(ctx, forms.SubmitCheckIn(s.api, w.catalog, w.companyID))
	metrics.RecordSubmit(checkInForm, err)
	if errors.Is(err, wizard.ErrInvalid) {
		view := w.form.View()
		return connect.NewResponse(&SubmitCheckInResponse{View: &view}), nil
	}
	if err != nil {
		slog.Error("Check-in submit failed", "wizard_id", req.Msg.ID, "error", err)
		return nil, wizardError(err)
	}

	reservation, _ := res.(*models.Reservation)
	s.wizards.Remove(req.Msg.ID)
	slog.Info("Check-in created", "wizard_id", req.Msg.ID)
	return connect.NewResponse(&SubmitCheckInResponse{Submitted: true, Reservation: reservation}), nil
}

// Cancel closes a wizard, discarding its values.
func (s *CheckInService) Cancel(ctx context.Context, req *connect.Request[WizardRef]) (*connect.Response[CancelResponse], error) {
	return connect.NewResponse(&CancelResponse{Closed: s.wizards.Remove(req.Msg.ID)}), nil
}

func (s *CheckInService) response(id string, w *checkIn, moved bool) *CheckInResponse {
	view := w.form.View()
	total, _ := view.Derived[forms.DerivedTotal].(float64)
	return &CheckInResponse{
		ID:         id,
		View:       view,
		TotalLabel: calculator.FormatMXN(total),
		Moved:      moved,
	}
}

func catalogView(cat forms.CheckInCatalog) *CheckInCatalogView {
	v := &CheckInCatalogView{
		ServiceTypes: []ServiceTypeOption{},
		Services:     make([]ServiceOption, 0, len(cat.Services)),
		AddOns:       make([]AddOnOption, 0, len(cat.AddOns)),
		Dogs:         make([]DogOption, 0, len(cat.Dogs)),
	}
	for _, t := range calculator.AvailableTypes(cat.Services) {
		v.ServiceTypes = append(v.ServiceTypes, ServiceTypeOption{Type: t, Title: t.Title(), Description: t.Description()})
	}
	for _, svc := range cat.Services {
		v.Services = append(v.Services, ServiceOption{
			ID:         svc.ID,
			Name:       svc.Name,
			Type:       svc.Type,
			Price:      svc.Price,
			PriceLabel: calculator.FormatMXN(svc.Price),
		})
	}
	for _, a := range cat.AddOns {
		v.AddOns = append(v.AddOns, AddOnOption{AddOn: a, PriceLabel: calculator.FormatMXN(a.Price)})
	}
	for _, d := range cat.Dogs {
		opt := DogOption{ID: d.ID, Name: d.Name, BreedLabel: d.BreedLabel(), ImageURL: d.ImageURL}
		if d.Owner != nil {
			opt.OwnerName = d.Owner.FullName()
		}
		v.Dogs = append(v.Dogs, opt)
	}
	return v
}
