// Package backend is the typed surface of the Ad Paws GraphQL backend. Each
// method posts one named document and decodes the result into package
// models types.
package backend

import (
	"context"
	"fmt"

	"github.com/adpaws/dashboard/internal/graphql"
	"github.com/adpaws/dashboard/internal/models"
)

// API wraps a graphql.Client.
type API struct {
	gql *graphql.Client
}

// New returns an API over c.
func New(c *graphql.Client) *API {
	return &API{gql: c}
}

func companyVar(companyID models.ID) (int, error) {
	id, err := companyID.Int()
	if err != nil {
		return 0, fmt.Errorf("invalid company id: %w", err)
	}
	return id, nil
}

// CurrentUser runs the identity query with the stored bearer token.
func (a *API) CurrentUser(ctx context.Context) (*models.User, error) {
	user, err := graphql.Query[models.User](ctx, a.gql, userQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	return &user, nil
}

// SignIn exchanges credentials for a token pair.
func (a *API) SignIn(ctx context.Context, email, password string) (models.TokenPair, error) {
	tokens, err := graphql.Query[models.TokenPair](ctx, a.gql, signUserMutation, map[string]any{
		"input": map[string]any{"email": email, "password": password},
	})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to sign in: %w", err)
	}
	return tokens, nil
}

// CompanyDogs lists the dogs of a company with their owners.
func (a *API) CompanyDogs(ctx context.Context, companyID models.ID) ([]models.Dog, error) {
	id, err := companyVar(companyID)
	if err != nil {
		return nil, err
	}
	dogs, err := graphql.Query[[]models.Dog](ctx, a.gql, companyDogsQuery, map[string]any{"companyId": id})
	if err != nil {
		return nil, fmt.Errorf("failed to list dogs: %w", err)
	}
	return dogs, nil
}

// DogByID fetches one dog with its owner.
func (a *API) DogByID(ctx context.Context, dogID models.ID) (*models.Dog, error) {
	id, err := dogID.Int()
	if err != nil {
		return nil, fmt.Errorf("invalid dog id: %w", err)
	}
	dog, err := graphql.Query[models.Dog](ctx, a.gql, dogByIDQuery, map[string]any{"dogByIdId": id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dog %s: %w", dogID, err)
	}
	return &dog, nil
}

// CreateDogs registers dogs for an owner.
func (a *API) CreateDogs(ctx context.Context, in []models.DogInput) ([]models.Dog, error) {
	dogs, err := graphql.Query[[]models.Dog](ctx, a.gql, createDogsMutation, map[string]any{
		"input": map[string]any{"dogs": in},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dogs: %w", err)
	}
	return dogs, nil
}

// UpdateDog saves a dog's basic information.
func (a *API) UpdateDog(ctx context.Context, in models.DogInput) (*models.Dog, error) {
	dog, err := graphql.Query[models.Dog](ctx, a.gql, updateDogMutation, map[string]any{"input": in})
	if err != nil {
		return nil, fmt.Errorf("failed to update dog: %w", err)
	}
	return &dog, nil
}

// CompanyDogOwners lists the owners of a company with their dogs.
func (a *API) CompanyDogOwners(ctx context.Context, companyID models.ID) ([]models.Owner, error) {
	id, err := companyVar(companyID)
	if err != nil {
		return nil, err
	}
	owners, err := graphql.Query[[]models.Owner](ctx, a.gql, companyDogOwnersQuery, map[string]any{"companyId": id})
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	return owners, nil
}

// ServicesByCompany lists a company's service catalog, optionally only the
// active entries.
func (a *API) ServicesByCompany(ctx context.Context, companyID models.ID, activeOnly bool) ([]models.Service, error) {
	id, err := companyVar(companyID)
	if err != nil {
		return nil, err
	}
	input := map[string]any{"companyId": id}
	if activeOnly {
		input["active"] = true
	}
	services, err := graphql.Query[[]models.Service](ctx, a.gql, servicesByCompanyQuery, map[string]any{"input": input})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// GuestStats fetches the guests page summary.
func (a *API) GuestStats(ctx context.Context) (*models.GuestStats, error) {
	stats, err := graphql.Query[models.GuestStats](ctx, a.gql, guestsStatsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guest stats: %w", err)
	}
	return &stats, nil
}

// CreateReservation records a check-in.
func (a *API) CreateReservation(ctx context.Context, in models.ReservationInput) (*models.Reservation, error) {
	res, err := graphql.Query[models.Reservation](ctx, a.gql, createReservationMutation, map[string]any{"input": in})
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return &res, nil
}

// CreateClient registers a dog owner as a client of the company.
func (a *API) CreateClient(ctx context.Context, in models.ClientInput) (*models.Owner, error) {
	owner, err := graphql.Query[models.Owner](ctx, a.gql, createClientMutation, map[string]any{"input": in})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &owner, nil
}
