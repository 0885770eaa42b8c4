package forms

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/adpaws/dashboard/internal/calculator"
	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/wizard"
)

// Dog field names, shared by the dog basic-info form and the signup dog
// draft.
const (
	FieldDogName      = "name"
	FieldDogBreed     = "breed"
	FieldDogBirthDate = "birthDate"
	FieldDogGender    = "gender"
	FieldDogColor     = "color"
	FieldDogWeight    = "weight"
	FieldDogSize      = "size"

	DerivedAge = "age"
)

var weightPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

func knownBreed(msg string) wizard.Rule {
	return wizard.Check(func(v any, _ wizard.State) string {
		if key, _ := v.(string); key != "" && !models.KnownBreed(key) {
			return msg
		}
		return ""
	})
}

func sizeNames() []string {
	out := make([]string, len(models.Sizes))
	for i, s := range models.Sizes {
		out[i] = string(s)
	}
	return out
}

var genderNames = []string{string(models.GenderMale), string(models.GenderFemale), string(models.GenderOther)}

// DogProfileSchema declares the dog basic-info form of the dog profile page.
// now feeds the derived age.
func DogProfileSchema(now func() time.Time) wizard.Schema {
	return wizard.Schema{
		Name:  "dog-profile",
		Steps: []wizard.Step{{Name: "Información básica"}},
		Fields: []wizard.Field{
			{
				Name:  FieldDogName,
				Kind:  wizard.KindText,
				Rules: []wizard.Rule{wizard.Required("El nombre es requerido")},
			},
			{
				Name: FieldDogBreed,
				Kind: wizard.KindText,
				Rules: []wizard.Rule{
					wizard.Required("La raza es requerida"),
					knownBreed("La raza es requerida"),
				},
			},
			{
				Name:  FieldDogBirthDate,
				Kind:  wizard.KindDate,
				Rules: []wizard.Rule{wizard.Required("La fecha de nacimiento es requerida")},
			},
			{
				Name: FieldDogGender,
				Kind: wizard.KindText,
				Rules: []wizard.Rule{
					wizard.Required("El sexo es requerido"),
					wizard.OneOf("El sexo es requerido", genderNames...),
				},
			},
			{Name: FieldDogColor, Kind: wizard.KindText},
			{
				Name:  FieldDogWeight,
				Kind:  wizard.KindText,
				Rules: []wizard.Rule{wizard.Pattern(weightPattern, "Ingresa un número válido")},
			},
			{
				Name: FieldDogSize,
				Kind: wizard.KindText,
				Rules: []wizard.Rule{
					wizard.Required("La categoría de tamaño es requerida"),
					wizard.OneOf("La categoría de tamaño es requerida", sizeNames()...),
				},
			},
		},
		Derived: []wizard.Derived{{
			Name:      DerivedAge,
			DependsOn: []string{FieldDogBirthDate},
			Compute: func(s wizard.State) any {
				birth := s.Date(FieldDogBirthDate)
				if birth.IsZero() {
					return calculator.FormatAge("", now())
				}
				return calculator.FormatAge(birth.Format(time.DateOnly), now())
			},
		}},
	}
}

// DogProfileDefaults maps a dog record onto the form's fields.
func DogProfileDefaults(d models.Dog) map[string]any {
	values := map[string]any{
		FieldDogName:   d.Name,
		FieldDogBreed:  d.Breed,
		FieldDogGender: string(d.Gender),
		FieldDogColor:  d.Color,
		FieldDogSize:   string(d.Size),
	}
	if d.Weight > 0 {
		values[FieldDogWeight] = strconv.FormatFloat(d.Weight, 'f', -1, 64)
	}
	if birth, err := calculator.ParseBirthDate(d.BirthDate); err == nil {
		values[FieldDogBirthDate] = birth
	}
	return values
}

// NewDogProfile builds the basic-info form for an existing dog. A successful
// save keeps the saved values and clears the dirty flag.
func NewDogProfile(d models.Dog, now func() time.Time) (*wizard.Controller, error) {
	return wizard.New(DogProfileSchema(now), wizard.WithDefaults(DogProfileDefaults(d)), wizard.WithRebaseOnSubmit())
}

// DogUpdate converts a validated basic-info state into the update mutation
// input. Empty optional fields are sent as null.
func DogUpdate(s wizard.State, dogID, ownerID models.ID) (models.DogInput, error) {
	id, err := dogID.Int()
	if err != nil {
		return models.DogInput{}, fmt.Errorf("failed to read dog id: %w", err)
	}
	owner, err := ownerID.Int()
	if err != nil {
		return models.DogInput{}, fmt.Errorf("failed to read owner id: %w", err)
	}

	in := models.DogInput{
		ID:      &id,
		OwnerID: owner,
		Name:    strings.TrimSpace(s.Text(FieldDogName)),
		Breed:   s.Text(FieldDogBreed),
	}
	if birth := s.Date(FieldDogBirthDate); !birth.IsZero() {
		v := birth.UTC().Format(time.RFC3339)
		in.BirthDate = &v
	}
	if g := s.Text(FieldDogGender); g != "" {
		v := models.Gender(g)
		in.Gender = &v
	}
	if c := strings.TrimSpace(s.Text(FieldDogColor)); c != "" {
		in.Color = &c
	}
	if w := s.Text(FieldDogWeight); w != "" {
		v, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return models.DogInput{}, fmt.Errorf("failed to read weight: %w", err)
		}
		in.Weight = &v
	}
	if sz := s.Text(FieldDogSize); sz != "" {
		v := models.Size(sz)
		in.Size = &v
	}
	return in, nil
}

// DogUpdater runs the dog update mutation.
type DogUpdater interface {
	UpdateDog(ctx context.Context, in models.DogInput) (*models.Dog, error)
}

// SubmitDogProfile returns the submit function of a basic-info form. The
// result is the updated *models.Dog.
func SubmitDogProfile(api DogUpdater, dogID, ownerID models.ID) wizard.SubmitFunc {
	return func(ctx context.Context, s wizard.State) (any, error) {
		in, err := DogUpdate(s, dogID, ownerID)
		if err != nil {
			return nil, err
		}
		return api.UpdateDog(ctx, in)
	}
}
