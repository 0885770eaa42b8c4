package calculator

import (
	"math"

	"github.com/adpaws/dashboard/internal/models"
)

// OwnerSummary holds the aggregates shown above the owners table.
type OwnerSummary struct {
	TotalOwners     int `json:"totalOwners"`
	TotalDogs       int `json:"totalDogs"`
	AvgDogsPerOwner int `json:"avgDogsPerOwner"`
	ActiveOwners    int `json:"activeOwners"`
}

// SummarizeOwners computes the owner directory aggregates.
// The average is rounded to the nearest integer and is 0 for an empty list.
func SummarizeOwners(owners []models.Owner) OwnerSummary {
	summary := OwnerSummary{TotalOwners: len(owners)}
	for _, o := range owners {
		summary.TotalDogs += len(o.Dogs)
		if o.Status == models.UserActive {
			summary.ActiveOwners++
		}
	}
	if len(owners) > 0 {
		summary.AvgDogsPerOwner = int(math.Round(float64(summary.TotalDogs) / float64(len(owners))))
	}
	return summary
}
