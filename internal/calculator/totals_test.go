package calculator

import (
	"math"
	"testing"

	"github.com/adpaws/dashboard/internal/models"
)

var catalog = []models.Service{
	{ID: "1", Name: "Hotel Estándar", Type: models.ServiceHotel, Price: 500},
	{ID: "2", Name: "Guardería Medio Día", Type: models.ServiceDaycare, Price: 180},
	{ID: "3", Name: "Guardería Día Completo", Type: models.ServiceDaycare, Price: 300},
	{ID: "4", Name: "Baño y Corte", Type: models.ServiceGrooming, Price: 350},
}

func TestCheckInTotal(t *testing.T) {
	hotel := catalog[0]

	tests := []struct {
		name     string
		primary  *models.Service
		selected []string
		want     float64
	}{
		{
			name:     "hotel with swimming",
			primary:  &hotel,
			selected: []string{"swimming"},
			want:     525,
		},
		{
			name:    "hotel without add-ons",
			primary: &hotel,
			want:    500,
		},
		{
			name:     "add-on without primary selection",
			selected: []string{"swimming"},
			want:     25,
		},
		{
			name: "nothing selected",
			want: 0,
		},
		{
			name:     "unknown add-on contributes nothing",
			primary:  &hotel,
			selected: []string{"massage"},
			want:     500,
		},
		{
			name:     "repeated add-on counts once",
			primary:  &hotel,
			selected: []string{"swimming", "swimming"},
			want:     525,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckInTotal(tt.primary, models.DefaultAddOns, tt.selected)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("CheckInTotal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckInTotalIsDeterministic(t *testing.T) {
	hotel := catalog[0]
	selected := []string{"swimming"}

	first := CheckInTotal(&hotel, models.DefaultAddOns, selected)
	for i := 0; i < 10; i++ {
		if got := CheckInTotal(&hotel, models.DefaultAddOns, selected); got != first {
			t.Fatalf("run %d: total = %v, want %v", i, got, first)
		}
	}
	if len(selected) != 1 || selected[0] != "swimming" {
		t.Errorf("selected was mutated: %v", selected)
	}
}

func TestResolveService(t *testing.T) {
	tests := []struct {
		name       string
		typ        models.ServiceType
		selectedID string
		wantID     models.ID
	}{
		{"single service resolves without selection", models.ServiceHotel, "", "1"},
		{"several services need a selection", models.ServiceDaycare, "", ""},
		{"explicit selection", models.ServiceDaycare, "3", "3"},
		{"selection from another category", models.ServiceDaycare, "1", ""},
		{"category without services", models.ServiceTraining, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveService(catalog, tt.typ, tt.selectedID)
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("ResolveService() = %v, want nil", got.ID)
				}
				return
			}
			if got == nil || got.ID != tt.wantID {
				t.Errorf("ResolveService() = %v, want %v", got, tt.wantID)
			}
		})
	}
}

func TestAvailableTypes(t *testing.T) {
	got := AvailableTypes(catalog)
	want := []models.ServiceType{models.ServiceHotel, models.ServiceDaycare, models.ServiceGrooming}
	if len(got) != len(want) {
		t.Fatalf("AvailableTypes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AvailableTypes()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSummarizeOwners(t *testing.T) {
	owners := []models.Owner{
		{ID: "1", Status: models.UserActive, Dogs: []models.Dog{{Name: "Kukulkán"}, {Name: "Max"}}},
		{ID: "2", Status: models.UserInactive, Dogs: []models.Dog{{Name: "Luna"}}},
		{ID: "3", Status: models.UserActive, Dogs: []models.Dog{{Name: "Rocky"}, {Name: "Nala"}}},
	}

	got := SummarizeOwners(owners)
	if got.TotalOwners != 3 {
		t.Errorf("TotalOwners = %d, want 3", got.TotalOwners)
	}
	if got.TotalDogs != 5 {
		t.Errorf("TotalDogs = %d, want 5", got.TotalDogs)
	}
	// 5/3 = 1.67 rounds to 2
	if got.AvgDogsPerOwner != 2 {
		t.Errorf("AvgDogsPerOwner = %d, want 2", got.AvgDogsPerOwner)
	}
	if got.ActiveOwners != 2 {
		t.Errorf("ActiveOwners = %d, want 2", got.ActiveOwners)
	}

	if empty := SummarizeOwners(nil); empty != (OwnerSummary{}) {
		t.Errorf("SummarizeOwners(nil) = %+v, want zero value", empty)
	}
}
