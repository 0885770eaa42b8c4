package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"connectrpc.com/connect"

	"github.com/adpaws/dashboard/internal/calculator"
	"github.com/adpaws/dashboard/internal/forms"
	"github.com/adpaws/dashboard/internal/metrics"
	"github.com/adpaws/dashboard/internal/middleware"
	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/rpc"
	"github.com/adpaws/dashboard/internal/wizard"
)

// DirectoryServiceName is the RPC service name of DirectoryService.
const DirectoryServiceName = "DirectoryService"

const dogProfileForm = "dogprofile"

// ErrDogNotFound is returned when the backend has no dog with the id.
var ErrDogNotFound = errors.New("dog not found")

// DirectoryBackend is what the directory pages read from the backend.
type DirectoryBackend interface {
	CompanyDogs(ctx context.Context, companyID models.ID) ([]models.Dog, error)
	DogByID(ctx context.Context, dogID models.ID) (*models.Dog, error)
	CompanyDogOwners(ctx context.Context, companyID models.ID) ([]models.Owner, error)
	ServicesByCompany(ctx context.Context, companyID models.ID, activeOnly bool) ([]models.Service, error)
	GuestStats(ctx context.Context) (*models.GuestStats, error)
	forms.DogUpdater
}

// DogSummary is a row of the guests table.
type DogSummary struct {
	ID          models.ID `json:"id"`
	Name        string    `json:"name"`
	BreedLabel  string    `json:"breedLabel"`
	Age         string    `json:"age"`
	SizeLabel   string    `json:"sizeLabel,omitempty"`
	GenderLabel string    `json:"genderLabel,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	OwnerID     models.ID `json:"ownerId,omitempty"`
	OwnerName   string    `json:"ownerName,omitempty"`
}

// DogsResponse lists the company's guests.
type DogsResponse struct {
	Dogs []DogSummary `json:"dogs"`
}

// DogRequest addresses one dog.
type DogRequest struct {
	DogID models.ID `json:"dogId"`
}

// DogResponse is a dog's detail page: the record, its summary and the
// basic-info form filled with it.
type DogResponse struct {
	Dog     models.Dog  `json:"dog"`
	Summary DogSummary  `json:"summary"`
	Profile wizard.View `json:"profile"`
}

// UpdateDogRequest saves the basic-info form. Values holds the edited
// fields; the others keep the dog's current values.
type UpdateDogRequest struct {
	DogID  models.ID                  `json:"dogId"`
	Values map[string]json.RawMessage `json:"values"`
}

// UpdateDogResponse reports a save. When Saved is false the view carries
// the field errors.
type UpdateDogResponse struct {
	Saved   bool        `json:"saved"`
	Dog     *models.Dog `json:"dog,omitempty"`
	Profile wizard.View `json:"profile"`
}

// OwnerRow is a row of the owners table.
type OwnerRow struct {
	models.Owner
	FullName    string `json:"fullName"`
	GenderLabel string `json:"genderLabel,omitempty"`
	DogCount    int    `json:"dogCount"`
}

// OwnersResponse lists the company's owners with the table aggregates.
type OwnersResponse struct {
	Owners  []OwnerRow              `json:"owners"`
	Summary calculator.OwnerSummary `json:"summary"`
}

// ServiceGroup is one category of the services page.
type ServiceGroup struct {
	Type        models.ServiceType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Services    []ServiceOption    `json:"services"`
}

// ServicesResponse is the services page.
type ServicesResponse struct {
	Groups []ServiceGroup `json:"groups"`
}

// GuestStatsResponse is the guests page header.
type GuestStatsResponse struct {
	Stats    models.GuestStats `json:"stats"`
	Greeting string            `json:"greeting"`
	UserName string            `json:"userName"`
}

// DirectoryService serves the read pages of the dashboard and the dog
// basic-info form.
type DirectoryService struct {
	api DirectoryBackend
	now func() time.Time
}

// NewDirectoryService creates a directory service.
func NewDirectoryService(api DirectoryBackend) *DirectoryService {
	return &DirectoryService{api: api, now: time.Now}
}

// Handler returns the service's path prefix and handler.
func (s *DirectoryService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	rpc.Handle(mux, DirectoryServiceName, "ListDogs", s.ListDogs, opts...)
	rpc.Handle(mux, DirectoryServiceName, "GetDog", s.GetDog, opts...)
	rpc.Handle(mux, DirectoryServiceName, "UpdateDog", s.UpdateDog, opts...)
	rpc.Handle(mux, DirectoryServiceName, "ListOwners", s.ListOwners, opts...)
	rpc.Handle(mux, DirectoryServiceName, "ListServices", s.ListServices, opts...)
	rpc.Handle(mux, DirectoryServiceName, "GuestStats", s.GuestStats, opts...)
	return rpc.Path(DirectoryServiceName), mux
}

func companyOf(ctx context.Context) (models.ID, error) {
	id := middleware.GetCompanyID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeFailedPrecondition, ErrNoCompany)
	}
	return id, nil
}

// ListDogs lists the company's guests.
func (s *DirectoryService) ListDogs(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[DogsResponse], error) {
	companyID, err := companyOf(ctx)
	if err != nil {
		return nil, err
	}
	dogs, err := s.api.CompanyDogs(ctx, companyID)
	if err != nil {
		slog.Error("ListDogs failed", "company_id", companyID, "error", err)
		return nil, backendError(err)
	}

	now := s.now()
	res := &DogsResponse{Dogs: make([]DogSummary, 0, len(dogs))}
	for _, d := range dogs {
		res.Dogs = append(res.Dogs, summarizeDog(d, now))
	}
	return connect.NewResponse(res), nil
}

// GetDog returns a dog's detail page.
func (s *DirectoryService) GetDog(ctx context.Context, req *connect.Request[DogRequest]) (*connect.Response[DogResponse], error) {
	dog, err := s.fetchDog(ctx, req.Msg.DogID)
	if err != nil {
		return nil, err
	}
	form, err := forms.NewDogProfile(*dog, s.now)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	defer form.Close()

	return connect.NewResponse(&DogResponse{
		Dog:     *dog,
		Summary: summarizeDog(*dog, s.now()),
		Profile: form.View(),
	}), nil
}

// UpdateDog validates and saves the basic-info form.
func (s *DirectoryService) UpdateDog(ctx context.Context, req *connect.Request[UpdateDogRequest]) (*connect.Response[UpdateDogResponse], error) {
	dog, err := s.fetchDog(ctx, req.Msg.DogID)
	if err != nil {
		return nil, err
	}
	ownerID := ownerOf(*dog)
	if ownerID == "" {
		return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("dog %s has no owner", dog.ID))
	}

	form, err := forms.NewDogProfile(*dog, s.now)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	defer form.Close()

	// Fields are applied in name order.
	fields := make([]string, 0, len(req.Msg.Values))
	for f := range req.Msg.Values {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		if err := form.SetFieldJSON(f, req.Msg.Values[f]); err != nil {
			return nil, wizardError(err)
		}
	}

	res, err := form.Submit(ctx, forms.SubmitDogProfile(s.api, dog.ID, ownerID))
	metrics.RecordSubmit(dogProfileForm, err)
	if errors.Is(err, wizard.ErrInvalid) {
		return connect.NewResponse(&UpdateDogResponse{Profile: form.View()}), nil
	}
	if err != nil {
		slog.Error("UpdateDog failed", "dog_id", dog.ID, "error", err)
		return nil, wizardError(err)
	}

	updated, _ := res.(*models.Dog)
	slog.Info("Dog updated", "dog_id", dog.ID)
	return connect.NewResponse(&UpdateDogResponse{Saved: true, Dog: updated, Profile: form.View()}), nil
}

// ListOwners lists the company's owners.
func (s *DirectoryService) ListOwners(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[OwnersResponse], error) {
	companyID, err := companyOf(ctx)
	if err != nil {
		return nil, err
	}
	owners, err := s.api.CompanyDogOwners(ctx, companyID)
	if err != nil {
		slog.Error("ListOwners failed", "company_id", companyID, "error", err)
		return nil, backendError(err)
	}

	res := &OwnersResponse{
		Owners:  make([]OwnerRow, 0, len(owners)),
		Summary: calculator.SummarizeOwners(owners),
	}
	for _, o := range owners {
		res.Owners = append(res.Owners, OwnerRow{
			Owner:       o,
			FullName:    o.FullName(),
			GenderLabel: o.Gender.PersonLabel(),
			DogCount:    len(o.Dogs),
		})
	}
	return connect.NewResponse(res), nil
}

// ListServices returns the whole catalog grouped by category, in category
// order. Empty categories are left out.
func (s *DirectoryService) ListServices(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ServicesResponse], error) {
	companyID, err := companyOf(ctx)
	if err != nil {
		return nil, err
	}
	services, err := s.api.ServicesByCompany(ctx, companyID, false)
	if err != nil {
		slog.Error("ListServices failed", "company_id", companyID, "error", err)
		return nil, backendError(err)
	}

	res := &ServicesResponse{Groups: []ServiceGroup{}}
	for _, t := range models.ServiceTypes {
		of := calculator.ServicesOfType(services, t)
		if len(of) == 0 {
			continue
		}
		g := ServiceGroup{Type: t, Title: t.Title(), Description: t.Description()}
		for _, svc := range of {
			g.Services = append(g.Services, ServiceOption{
				ID:         svc.ID,
				Name:       svc.Name,
				Type:       svc.Type,
				Price:      svc.Price,
				PriceLabel: calculator.FormatMXN(svc.Price),
			})
		}
		res.Groups = append(res.Groups, g)
	}
	return connect.NewResponse(res), nil
}

// GuestStats returns the guests page header.
func (s *DirectoryService) GuestStats(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[GuestStatsResponse], error) {
	stats, err := s.api.GuestStats(ctx)
	if err != nil {
		slog.Error("GuestStats failed", "error", err)
		return nil, backendError(err)
	}
	return connect.NewResponse(&GuestStatsResponse{
		Stats:    *stats,
		Greeting: calculator.Greeting(s.now().Hour()),
		UserName: middleware.User(ctx).DisplayName(),
	}), nil
}

func (s *DirectoryService) fetchDog(ctx context.Context, dogID models.ID) (*models.Dog, error) {
	if _, err := dogID.Int(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	dog, err := s.api.DogByID(ctx, dogID)
	if err != nil {
		slog.Error("Dog lookup failed", "dog_id", dogID, "error", err)
		return nil, backendError(err)
	}
	if dog == nil || dog.ID == "" {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("%w: %s", ErrDogNotFound, dogID))
	}
	return dog, nil
}

func ownerOf(d models.Dog) models.ID {
	if d.OwnerID != "" {
		return d.OwnerID
	}
	if d.Owner != nil {
		return d.Owner.ID
	}
	return ""
}

func summarizeDog(d models.Dog, now time.Time) DogSummary {
	sum := DogSummary{
		ID:          d.ID,
		Name:        d.Name,
		BreedLabel:  d.BreedLabel(),
		Age:         calculator.FormatAge(d.BirthDate, now),
		SizeLabel:   d.Size.Label(),
		GenderLabel: d.Gender.DogLabel(),
		ImageURL:    d.ImageURL,
		OwnerID:     ownerOf(d),
	}
	if d.Owner != nil {
		sum.OwnerName = d.Owner.FullName()
	}
	return sum
}
