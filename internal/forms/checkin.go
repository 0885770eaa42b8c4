// Package forms declares the dashboard's forms on top of package wizard:
// the check-in wizard, the client signup wizard, the dog basic-info form and
// the login form.
//
// Each form is a static wizard.Schema plus the function that turns a
// validated state into the backend mutation input.
package forms

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/adpaws/dashboard/internal/calculator"
	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/wizard"
)

// Check-in field names.
const (
	FieldServiceType        = "serviceType"
	FieldSelectedServiceID  = "selectedServiceId"
	FieldStayDates          = "stayDates"
	FieldAdditionalServices = "additionalServices"
	FieldDogID              = "dogId"

	DerivedTotal = "total"
)

// ErrNoService is returned when a check-in state does not resolve to a
// service of the catalog.
var ErrNoService = errors.New("no service selected")

// CheckInCatalog is what the check-in wizard chooses from. It is loaded when
// the wizard starts and does not change afterwards.
type CheckInCatalog struct {
	Services []models.Service
	Dogs     []models.Dog
	AddOns   []models.AddOn
}

func (c CheckInCatalog) servicesOf(s wizard.State) []models.Service {
	return calculator.ServicesOfType(c.Services, models.ServiceType(s.Text(FieldServiceType)))
}

// primary resolves the selected service, falling back to the only service
// of the chosen category.
func (c CheckInCatalog) primary(s wizard.State) *models.Service {
	return calculator.ResolveService(c.Services, models.ServiceType(s.Text(FieldServiceType)), s.Text(FieldSelectedServiceID))
}

func (c CheckInCatalog) hasDog(id string) bool {
	return slices.ContainsFunc(c.Dogs, func(d models.Dog) bool { return string(d.ID) == id })
}

// CheckInSchema declares the two-step check-in wizard:
//
//	step 0 "Nuevo Check-in": category, service, stay dates (hotel only), add-ons
//	step 1 "Confirmar Reservación": dog
func CheckInSchema(cat CheckInCatalog) wizard.Schema {
	types := calculator.AvailableTypes(cat.Services)
	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	return wizard.Schema{
		Name: "checkin",
		Steps: []wizard.Step{
			{
				Name: "Nuevo Check-in",
				AutoSelect: []wizard.AutoSelect{{
					Field: FieldSelectedServiceID,
					Options: func(s wizard.State) []string {
						var ids []string
						for _, svc := range cat.servicesOf(s) {
							ids = append(ids, string(svc.ID))
						}
						return ids
					},
				}},
			},
			{Name: "Confirmar Reservación"},
		},
		Fields: []wizard.Field{
			{
				Name: FieldServiceType,
				Kind: wizard.KindText,
				Rules: []wizard.Rule{
					wizard.Required("Por favor selecciona un tipo de servicio"),
					wizard.OneOf("Por favor selecciona un tipo de servicio", typeNames...),
				},
				Clears: []string{FieldSelectedServiceID},
			},
			{
				Name: FieldSelectedServiceID,
				Kind: wizard.KindText,
				Rules: []wizard.Rule{
					wizard.Required("Por favor selecciona un servicio"),
					wizard.Check(func(_ any, s wizard.State) string {
						if cat.primary(s) == nil {
							return "Por favor selecciona un servicio"
						}
						return ""
					}),
				},
				When: func(s wizard.State) bool {
					return len(cat.servicesOf(s)) > 1
				},
			},
			{
				Name: FieldStayDates,
				Kind: wizard.KindDateRange,
				Rules: []wizard.Rule{
					wizard.Required("Selecciona las fechas de entrada y salida"),
					wizard.RangeOrdered("La fecha de salida debe ser posterior a la de entrada"),
				},
				When: func(s wizard.State) bool {
					return s.Text(FieldServiceType) == string(models.ServiceHotel)
				},
			},
			{
				Name: FieldAdditionalServices,
				Kind: wizard.KindChoices,
			},
			{
				Name: FieldDogID,
				Kind: wizard.KindText,
				Step: 1,
				Rules: []wizard.Rule{
					wizard.Required("Por favor selecciona un perro"),
					wizard.Check(func(v any, _ wizard.State) string {
						if id, _ := v.(string); id != "" && !cat.hasDog(id) {
							return "Por favor selecciona un perro"
						}
						return ""
					}),
				},
			},
		},
		Derived: []wizard.Derived{{
			Name:      DerivedTotal,
			DependsOn: []string{FieldServiceType, FieldSelectedServiceID, FieldAdditionalServices},
			Compute: func(s wizard.State) any {
				return calculator.CheckInTotal(cat.primary(s), cat.AddOns, s.Choices(FieldAdditionalServices))
			},
		}},
	}
}

// NewCheckIn builds a check-in wizard over cat.
func NewCheckIn(cat CheckInCatalog, opts ...wizard.Option) *wizard.Controller {
	return wizard.MustNew(CheckInSchema(cat), opts...)
}

// CheckInReservation converts a validated check-in state into the
// reservation mutation input.
func CheckInReservation(s wizard.State, cat CheckInCatalog, companyID models.ID) (models.ReservationInput, error) {
	svc := cat.primary(s)
	if svc == nil {
		return models.ReservationInput{}, ErrNoService
	}
	serviceID, err := svc.ID.Int()
	if err != nil {
		return models.ReservationInput{}, fmt.Errorf("failed to read service id: %w", err)
	}
	dogID, err := models.ID(s.Text(FieldDogID)).Int()
	if err != nil {
		return models.ReservationInput{}, fmt.Errorf("failed to read dog id: %w", err)
	}
	company, err := companyID.Int()
	if err != nil {
		return models.ReservationInput{}, fmt.Errorf("failed to read company id: %w", err)
	}

	in := models.ReservationInput{
		DogID:     dogID,
		ServiceID: serviceID,
		CompanyID: company,
		CheckIn:   time.Now().Format(time.DateOnly),
		AddOns:    s.Choices(FieldAdditionalServices),
		Total:     calculator.CheckInTotal(svc, cat.AddOns, s.Choices(FieldAdditionalServices)),
	}
	if svc.Type == models.ServiceHotel {
		stay := s.Range(FieldStayDates)
		in.CheckIn = stay.From.Format(time.DateOnly)
		out := stay.To.Format(time.DateOnly)
		in.CheckOut = &out
	}
	return in, nil
}

// ReservationCreator runs the check-in mutation.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, in models.ReservationInput) (*models.Reservation, error)
}

// SubmitCheckIn returns the submit function of a check-in wizard. The
// result is the created *models.Reservation.
func SubmitCheckIn(api ReservationCreator, cat CheckInCatalog, companyID models.ID) wizard.SubmitFunc {
	return func(ctx context.Context, s wizard.State) (any, error) {
		in, err := CheckInReservation(s, cat, companyID)
		if err != nil {
			return nil, err
		}
		return api.CreateReservation(ctx, in)
	}
}
