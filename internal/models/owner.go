package models

// Owner is a client of the business who owns one or more dogs.
type Owner struct {
	ID             ID         `json:"id"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Name           string     `json:"name,omitempty"`
	Lastname       string     `json:"lastname,omitempty"`
	Gender         Gender     `json:"gender,omitempty"`
	BirthDate      string     `json:"birthDate,omitempty"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	Status         UserStatus `json:"status,omitempty"`
	Dogs           []Dog      `json:"dogs,omitempty"`
}

// FullName joins name and lastname.
func (o Owner) FullName() string {
	switch {
	case o.Name != "" && o.Lastname != "":
		return o.Name + " " + o.Lastname
	case o.Name != "":
		return o.Name
	default:
		return o.Lastname
	}
}

// ClientInput is the body of the client signup mutation.
type ClientInput struct {
	Name      string `json:"name"`
	Lastname  string `json:"lastname"`
	BirthDate string `json:"birthDate"`
	Gender    Gender `json:"gender"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CompanyID int    `json:"clientOfId"`
}
