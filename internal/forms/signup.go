package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/wizard"
)

// Signup field names. The draft fields hold the dog being typed in on the
// second step; FieldSignupDogs holds the ids of the dogs already added.
const (
	FieldOwnerName      = "ownerName"
	FieldOwnerLastname  = "ownerLastname"
	FieldOwnerBirthDate = "ownerBirthDate"
	FieldOwnerGender    = "ownerGender"
	FieldOwnerEmail     = "ownerEmail"
	FieldOwnerPhone     = "ownerPhone"

	FieldDraftName      = "dogName"
	FieldDraftBreed     = "dogBreed"
	FieldDraftColor     = "dogColor"
	FieldDraftSize      = "dogSize"
	FieldDraftGender    = "dogGender"
	FieldDraftWeight    = "dogWeight"
	FieldDraftBirthDate = "dogBirthDate"

	FieldSignupDogs = "dogs"
)

// Signup steps.
const (
	SignupStepOwner = iota
	SignupStepDogs
	SignupStepConfirm
)

var (
	// ErrDraftInvalid is returned by AddDog when the dog draft is empty or
	// has invalid fields.
	ErrDraftInvalid = errors.New("dog draft is incomplete")
	// ErrNoDogs is returned by Submit when no dog was added.
	ErrNoDogs = errors.New("at least one dog is required")
)

var draftFields = []string{
	FieldDraftName, FieldDraftBreed, FieldDraftColor, FieldDraftSize,
	FieldDraftGender, FieldDraftWeight, FieldDraftBirthDate,
}

// draftStarted reports whether the user typed anything into the dog draft.
func draftStarted(s wizard.State) bool {
	for _, f := range draftFields {
		if f == FieldDraftBirthDate {
			if !s.Date(f).IsZero() {
				return true
			}
			continue
		}
		if strings.TrimSpace(s.Text(f)) != "" {
			return true
		}
	}
	return false
}

// SignupSchema declares the three-step client signup wizard.
func SignupSchema() wizard.Schema {
	draft := func(f wizard.Field) wizard.Field {
		f.Step = SignupStepDogs
		f.When = draftStarted
		return f
	}

	return wizard.Schema{
		Name: "signup",
		Steps: []wizard.Step{
			{Name: "Tu información"},
			{Name: "Tus perros"},
			{Name: "Confirmación"},
		},
		Fields: []wizard.Field{
			{
				Name:  FieldOwnerName,
				Kind:  wizard.KindText,
				Rules: []wizard.Rule{wizard.Required("El nombre es requerido")},
			},
			{
				Name:  FieldOwnerLastname,
				Kind:  wizard.KindText,
				Rules: []wizard.Rule{wizard.Required("El apellido es requerido")},
			},
			{
				Name:  FieldOwnerBirthDate,
				Kind:  wizard.KindDate,
				Rules: []wizard.Rule{wizard.Required("La fecha de nacimiento es requerida")},
			},
			{
				Name: FieldOwnerGender,
				Kind: wizard.KindText,
				Rules: []wizard.Rule{
					wizard.Required("El género es requerido"),
					wizard.OneOf("El género es requerido", genderNames...),
				},
			},
			{
				Name: FieldOwnerEmail,
				Kind: wizard.KindText,
				Rules: []wizard.Rule{
					wizard.Required("El email es requerido"),
					wizard.Pattern(EmailPattern, "Email inválido"),
				},
			},
			{
				Name:  FieldOwnerPhone,
				Kind:  wizard.KindText,
				Rules: []wizard.Rule{wizard.Required("El teléfono es requerido")},
			},
			draft(wizard.Field{
				Name:  FieldDraftName,
				Kind:  wizard.KindText,
				Rules: []wizard.Rule{wizard.Required("El nombre es requerido")},
			}),
			draft(wizard.Field{
				Name: FieldDraftBreed,
				Kind: wizard.KindText,
				Rules: []wizard.Rule{
					wizard.Required("La raza es requerida"),
					knownBreed("La raza es requerida"),
				},
			}),
			draft(wizard.Field{
				Name:  FieldDraftColor,
				Kind:  wizard.KindText,
				Rules: []wizard.Rule{wizard.Required("El color es requerido")},
			}),
			draft(wizard.Field{
				Name: FieldDraftSize,
				Kind: wizard.KindText,
				Rules: []wizard.Rule{
					wizard.Required("Por favor selecciona un tamaño"),
					wizard.OneOf("Por favor selecciona un tamaño", sizeNames()...),
				},
			}),
			draft(wizard.Field{
				Name: FieldDraftGender,
				Kind: wizard.KindText,
				Rules: []wizard.Rule{
					wizard.Required("El género es requerido"),
					wizard.OneOf("El género es requerido", genderNames...),
				},
			}),
			draft(wizard.Field{
				Name:  FieldDraftWeight,
				Kind:  wizard.KindText,
				Rules: []wizard.Rule{wizard.Pattern(weightPattern, "Ingresa un número válido")},
			}),
			draft(wizard.Field{
				Name: FieldDraftBirthDate,
				Kind: wizard.KindDate,
			}),
			{
				Name:  FieldSignupDogs,
				Kind:  wizard.KindChoices,
				Step:  SignupStepDogs,
				Rules: []wizard.Rule{wizard.Required("Agrega al menos un perro")},
				When:  func(s wizard.State) bool { return !draftStarted(s) },
			},
		},
	}
}

// SignupDog is a dog added on the second signup step.
type SignupDog struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Breed     string        `json:"breed"`
	Color     string        `json:"color"`
	Size      models.Size   `json:"size"`
	Gender    models.Gender `json:"gender"`
	Weight    string        `json:"weight,omitempty"`
	BirthDate time.Time     `json:"birthDate,omitzero"`
}

// BreedLabel resolves the breed key for the confirmation page.
func (d SignupDog) BreedLabel() string {
	return models.BreedLabel(d.Breed)
}

// SignupView is the wizard view plus the dogs added so far.
type SignupView struct {
	wizard.View
	Dogs []SignupDog `json:"dogs"`
}

// SignupResult is what a completed signup created.
type SignupResult struct {
	Client *models.Owner `json:"client"`
	Dogs   []models.Dog  `json:"dogs"`
}

// SignupAPI runs the signup mutations.
type SignupAPI interface {
	CreateClient(ctx context.Context, in models.ClientInput) (*models.Owner, error)
	CreateDogs(ctx context.Context, in []models.DogInput) ([]models.Dog, error)
}

// Signup is the client signup wizard: a wizard.Controller for the owner
// fields and the dog draft, and the list of dogs added so far.
type Signup struct {
	form *wizard.Controller

	mu   sync.Mutex
	dogs []SignupDog
	// client is set once CreateClient succeeded, so a retry after a failed
	// CreateDogs does not register the owner twice.
	client *models.Owner
}

// NewSignup builds an empty signup wizard.
func NewSignup(opts ...wizard.Option) *Signup {
	return &Signup{form: wizard.MustNew(SignupSchema(), opts...)}
}

// Form exposes the underlying controller.
func (s *Signup) Form() *wizard.Controller {
	return s.form
}

// SetField sets an owner or draft field. The dog list is managed through
// AddDog and RemoveDog only.
func (s *Signup) SetField(name string, value any) error {
	if name == FieldSignupDogs {
		return fmt.Errorf("%w: %q is managed by AddDog", wizard.ErrUnknownField, name)
	}
	return s.form.SetField(name, value)
}

// SetFieldJSON is SetField for a JSON-encoded value.
func (s *Signup) SetFieldJSON(name string, raw json.RawMessage) error {
	if name == FieldSignupDogs {
		return fmt.Errorf("%w: %q is managed by AddDog", wizard.ErrUnknownField, name)
	}
	return s.form.SetFieldJSON(name, raw)
}

// AddDog moves a valid draft into the dog list and clears the draft.
func (s *Signup) AddDog() (SignupDog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addDraftLocked()
}

func (s *Signup) addDraftLocked() (SignupDog, error) {
	var (
		dog     SignupDog
		started bool
	)
	s.form.Read(func(st wizard.State) {
		started = draftStarted(st)
		dog = SignupDog{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(st.Text(FieldDraftName)),
			Breed:     st.Text(FieldDraftBreed),
			Color:     strings.TrimSpace(st.Text(FieldDraftColor)),
			Size:      models.Size(st.Text(FieldDraftSize)),
			Gender:    models.Gender(st.Text(FieldDraftGender)),
			Weight:    st.Text(FieldDraftWeight),
			BirthDate: st.Date(FieldDraftBirthDate),
		}
	})
	if !started || !s.form.CheckStep(SignupStepDogs) {
		return SignupDog{}, ErrDraftInvalid
	}

	s.dogs = append(s.dogs, dog)
	for _, f := range draftFields {
		var zero any = ""
		if f == FieldDraftBirthDate {
			zero = time.Time{}
		}
		if err := s.form.SetField(f, zero); err != nil {
			return SignupDog{}, err
		}
	}
	if err := s.form.SetField(FieldSignupDogs, s.idsLocked()); err != nil {
		return SignupDog{}, err
	}
	return dog, nil
}

func (s *Signup) idsLocked() []string {
	ids := make([]string, len(s.dogs))
	for i, d := range s.dogs {
		ids[i] = d.ID
	}
	return ids
}

// RemoveDog drops a dog from the list. It reports whether id was found.
func (s *Signup) RemoveDog(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.dogs, func(d SignupDog) bool { return d.ID == id })
	if i < 0 {
		return false, nil
	}
	s.dogs = slices.Delete(s.dogs, i, i+1)
	return true, s.form.SetField(FieldSignupDogs, s.idsLocked())
}

// Dogs returns a copy of the dog list.
func (s *Signup) Dogs() []SignupDog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.dogs)
}

// Advance moves to the next step. Leaving the dogs step with a filled-in
// draft adds it to the list first.
func (s *Signup) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.form.View().Step == SignupStepDogs {
		started := false
		s.form.Read(func(st wizard.State) { started = draftStarted(st) })
		if started {
			if _, err := s.addDraftLocked(); err != nil {
				return false
			}
		}
	}
	return s.form.Advance()
}

// Back returns to the previous step.
func (s *Signup) Back() bool {
	return s.form.Back()
}

// Edit jumps back to the owner or dogs step from the confirmation page.
func (s *Signup) Edit(step int) bool {
	return s.form.GoTo(step)
}

// View returns the wizard view and the dog list.
func (s *Signup) View() SignupView {
	return SignupView{View: s.form.View(), Dogs: s.Dogs()}
}

// Close discards the wizard.
func (s *Signup) Close() {
	s.mu.Lock()
	s.client = nil
	s.mu.Unlock()
	s.form.Close()
}

func (s *Signup) createdClient() *models.Owner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Submit creates the client, then its dogs. The dog list is cleared with
// the form on success and kept on failure. A client created by a failed
// attempt is reused on retry.
func (s *Signup) Submit(ctx context.Context, api SignupAPI, companyID models.ID) (*SignupResult, error) {
	dogs := s.Dogs()
	if len(dogs) == 0 {
		return nil, ErrNoDogs
	}
	company, err := companyID.Int()
	if err != nil {
		return nil, fmt.Errorf("failed to read company id: %w", err)
	}

	res, err := s.form.Submit(ctx, func(ctx context.Context, st wizard.State) (any, error) {
		var err error
		client := s.createdClient()
		if client == nil {
			if client, err = api.CreateClient(ctx, ClientInput(st, company)); err != nil {
				return nil, err
			}
			s.mu.Lock()
			s.client = client
			s.mu.Unlock()
		}
		ownerID, err := client.ID.Int()
		if err != nil {
			return nil, fmt.Errorf("failed to read client id: %w", err)
		}
		inputs, err := DogInputs(dogs, ownerID)
		if err != nil {
			return nil, err
		}
		created, err := api.CreateDogs(ctx, inputs)
		if err != nil {
			return nil, err
		}
		return &SignupResult{Client: client, Dogs: created}, nil
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.dogs = nil
	s.client = nil
	s.mu.Unlock()
	return res.(*SignupResult), nil
}

// ClientInput converts the owner step into the client mutation input.
func ClientInput(st wizard.State, companyID int) models.ClientInput {
	return models.ClientInput{
		Name:      strings.TrimSpace(st.Text(FieldOwnerName)),
		Lastname:  strings.TrimSpace(st.Text(FieldOwnerLastname)),
		BirthDate: st.Date(FieldOwnerBirthDate).Format(time.DateOnly),
		Gender:    models.Gender(st.Text(FieldOwnerGender)),
		Email:     strings.TrimSpace(st.Text(FieldOwnerEmail)),
		Phone:     strings.TrimSpace(st.Text(FieldOwnerPhone)),
		CompanyID: companyID,
	}
}

// DogInputs converts the added dogs into the create mutation input.
func DogInputs(dogs []SignupDog, ownerID int) ([]models.DogInput, error) {
	out := make([]models.DogInput, 0, len(dogs))
	for _, d := range dogs {
		in := models.DogInput{
			OwnerID: ownerID,
			Name:    d.Name,
			Breed:   d.Breed,
		}
		if !d.BirthDate.IsZero() {
			v := d.BirthDate.UTC().Format(time.RFC3339)
			in.BirthDate = &v
		}
		if d.Gender != "" {
			g := d.Gender
			in.Gender = &g
		}
		if d.Color != "" {
			c := d.Color
			in.Color = &c
		}
		if d.Size != "" {
			sz := d.Size
			in.Size = &sz
		}
		if d.Weight != "" {
			w, err := strconv.ParseFloat(d.Weight, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to read weight of %s: %w", d.Name, err)
			}
			in.Weight = &w
		}
		out = append(out, in)
	}
	return out, nil
}
