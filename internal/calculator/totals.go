// Package calculator holds the pure computations behind the dashboard's
// derived values: check-in totals, owner directory aggregates, dog ages and
// display formatting.
//
// Nothing in here touches form state or the network; callers pass in what
// they read and get a value back.
package calculator

import (
	"github.com/adpaws/dashboard/internal/models"
)

// CheckInTotal computes the price of a check-in.
//
// total = primary.Price (0 when primary is nil) + sum of the prices of the
// add-ons whose id is in selected. Unknown ids contribute nothing and a
// selected id counts once even if it is repeated.
func CheckInTotal(primary *models.Service, addOns []models.AddOn, selected []string) float64 {
	var total float64
	if primary != nil {
		total += primary.Price
	}

	if len(selected) == 0 {
		return total
	}

	chosen := make(map[string]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}
	for _, addOn := range addOns {
		if chosen[addOn.ID] {
			total += addOn.Price
		}
	}
	return total
}

// ServicesOfType filters the catalog to one category, keeping catalog order.
func ServicesOfType(services []models.Service, t models.ServiceType) []models.Service {
	var out []models.Service
	for _, s := range services {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

// AvailableTypes returns the distinct categories present in the catalog, in
// order of first appearance.
func AvailableTypes(services []models.Service) []models.ServiceType {
	seen := make(map[models.ServiceType]bool)
	var out []models.ServiceType
	for _, s := range services {
		if !seen[s.Type] {
			seen[s.Type] = true
			out = append(out, s.Type)
		}
	}
	return out
}

// ResolveService finds the primary selection of a check-in.
//
// An explicit selection wins. Without one, a category with exactly one
// service resolves to that service. Returns nil when nothing resolves.
func ResolveService(services []models.Service, t models.ServiceType, selectedID string) *models.Service {
	ofType := ServicesOfType(services, t)
	if selectedID != "" {
		for i := range ofType {
			if string(ofType[i].ID) == selectedID {
				return &ofType[i]
			}
		}
		return nil
	}
	if len(ofType) == 1 {
		return &ofType[0]
	}
	return nil
}
