package models

// ReservationStatus is the backend state of a reservation.
type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "PENDING"
	ReservationCheckedIn  ReservationStatus = "CHECKED_IN"
	ReservationCheckedOut ReservationStatus = "CHECKED_OUT"
	ReservationCancelled  ReservationStatus = "CANCELLED"
	ReservationCompleted  ReservationStatus = "COMPLETED"
)

// Reservation is the result of a completed check-in.
type Reservation struct {
	ID        ID                `json:"id"`
	DogID     ID                `json:"dogId"`
	ServiceID ID                `json:"serviceId"`
	CheckIn   string            `json:"checkIn,omitempty"`
	CheckOut  string            `json:"checkOut,omitempty"`
	Status    ReservationStatus `json:"status,omitempty"`
	CreatedAt string            `json:"createdAt,omitempty"`
}

// ReservationInput is the body of the check-in mutation.
type ReservationInput struct {
	DogID     int      `json:"dogId"`
	ServiceID int      `json:"serviceId"`
	CompanyID int      `json:"companyId"`
	CheckIn   string   `json:"checkIn"`
	CheckOut  *string  `json:"checkOut"`
	AddOns    []string `json:"addOns"`
	Total     float64  `json:"total"`
}
