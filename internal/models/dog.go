package models

// Gender of a dog or a person.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// DogLabel is the Spanish label used for a dog's gender.
func (g Gender) DogLabel() string {
	switch g {
	case GenderMale:
		return "Macho"
	case GenderFemale:
		return "Hembra"
	case GenderOther:
		return "Otro"
	}
	return string(g)
}

// PersonLabel is the Spanish label used for an owner's gender.
func (g Gender) PersonLabel() string {
	switch g {
	case GenderMale:
		return "Masculino"
	case GenderFemale:
		return "Femenino"
	case GenderOther:
		return "Otro"
	}
	return string(g)
}

// Size of a dog.
type Size string

const (
	SizeToy      Size = "TOY"
	SizeSmall    Size = "SMALL"
	SizeMedium   Size = "MEDIUM"
	SizeLarge    Size = "LARGE"
	SizeGigantic Size = "GIGANTIC"
)

// Label returns the Spanish label with its weight band.
func (s Size) Label() string {
	switch s {
	case SizeToy:
		return "Toy (0-4 kg)"
	case SizeSmall:
		return "Pequeño (0-10 kg)"
	case SizeMedium:
		return "Mediano (10-25 kg)"
	case SizeLarge:
		return "Grande (25-45 kg)"
	case SizeGigantic:
		return "Gigante (45+ kg)"
	}
	return string(s)
}

// Sizes lists every size in display order.
var Sizes = []Size{SizeToy, SizeSmall, SizeMedium, SizeLarge, SizeGigantic}

// Dog is a guest of the boarding business.
type Dog struct {
	ID        ID      `json:"id"`
	Name      string  `json:"name"`
	Breed     string  `json:"breed"`
	BirthDate string  `json:"birthDate,omitempty"`
	Weight    float64 `json:"weight,omitempty"`
	Color     string  `json:"color,omitempty"`
	Gender    Gender  `json:"gender,omitempty"`
	Size      Size    `json:"size,omitempty"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	OwnerID   ID      `json:"ownerId,omitempty"`
	Owner     *Owner  `json:"owner,omitempty"`
}

// BreedLabel resolves the breed key to its display name.
func (d Dog) BreedLabel() string {
	return BreedLabel(d.Breed)
}

// DogInput is the body of the dog create/update mutations.
type DogInput struct {
	ID        *int     `json:"id,omitempty"`
	OwnerID   int      `json:"ownerId"`
	Name      string   `json:"name"`
	Breed     string   `json:"breed"`
	BirthDate *string  `json:"birthDate"`
	Gender    *Gender  `json:"gender"`
	Color     *string  `json:"color"`
	Weight    *float64 `json:"weight"`
	Size      *Size    `json:"size"`
}
