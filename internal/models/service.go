package models

// ServiceType is the category of a bookable service.
type ServiceType string

const (
	ServiceHotel    ServiceType = "HOTEL"
	ServiceDaycare  ServiceType = "DAYCARE"
	ServiceTraining ServiceType = "TRAINING"
	ServiceGrooming ServiceType = "GROOMING"
)

// ServiceTypes lists every category in display order.
var ServiceTypes = []ServiceType{ServiceHotel, ServiceDaycare, ServiceTraining, ServiceGrooming}

// Valid reports whether t is a known category.
func (t ServiceType) Valid() bool {
	for _, known := range ServiceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Title is the card title shown in the check-in dialog.
func (t ServiceType) Title() string {
	switch t {
	case ServiceHotel:
		return "Hospedaje"
	case ServiceDaycare:
		return "Guardería"
	case ServiceTraining:
		return "Entrenamiento"
	case ServiceGrooming:
		return "Estética"
	}
	return string(t)
}

// Description is the card subtitle shown in the check-in dialog.
func (t ServiceType) Description() string {
	switch t {
	case ServiceHotel:
		return "Alojamiento y cuidado nocturno"
	case ServiceDaycare:
		return "Supervisión y juego diario"
	case ServiceTraining:
		return "Sesiones profesionales"
	case ServiceGrooming:
		return "Spa y servicios de estilismo"
	}
	return ""
}

// Service is one entry in the company's service catalog.
type Service struct {
	ID            ID          `json:"id"`
	Name          string      `json:"name"`
	Type          ServiceType `json:"type"`
	Price         float64     `json:"price"`
	Duration      int         `json:"duration,omitempty"`
	StartTime     string      `json:"startTime,omitempty"`
	EndTime       string      `json:"endTime,omitempty"`
	DaysAvailable []string    `json:"daysAvailable,omitempty"`
	Active        bool        `json:"active"`
	CompanyID     ID          `json:"companyId,omitempty"`
	CreatedAt     string      `json:"createdAt,omitempty"`
}

// AddOn is an optional extra that can be toggled during check-in.
// Add-ons are a dashboard-side catalog, not backend services.
type AddOn struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// DefaultAddOns is the add-on catalog offered at check-in.
var DefaultAddOns = []AddOn{
	{
		ID:          "swimming",
		Title:       "Sesión de Natación",
		Description: "30 min de actividad en alberca",
		Price:       25,
	},
}

// GuestStats is the summary shown on the guests page.
type GuestStats struct {
	NewDogsDuringMonth int `json:"newDogsDuringMonth"`
	PastDueVaccines    int `json:"pastDueVaccines"`
	TodayCheckedInDogs int `json:"todayCheckedInDogs"`
	TotalDogs          int `json:"totalDogs"`
}
