package forms

import (
	"regexp"
	"strings"

	"github.com/adpaws/dashboard/internal/wizard"
)

// Login field names.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// EmailPattern is the address check shared by the login and signup forms.
var EmailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// LoginSchema declares the single-step login form.
func LoginSchema() wizard.Schema {
	return wizard.Schema{
		Name:  "login",
		Steps: []wizard.Step{{Name: "Iniciar sesión"}},
		Fields: []wizard.Field{
			{
				Name: FieldEmail,
				Kind: wizard.KindText,
				Rules: []wizard.Rule{
					wizard.Required("El email es requerido"),
					wizard.Pattern(EmailPattern, "Email inválido"),
				},
			},
			{
				Name:  FieldPassword,
				Kind:  wizard.KindText,
				Rules: []wizard.Rule{wizard.Required("La contraseña es requerida")},
			},
		},
	}
}

// Credentials is a validated login form.
type Credentials struct {
	Email    string
	Password string
}

// ValidateLogin runs the login form over one request's input and returns the
// per-field errors, or nil when the credentials can be sent.
func ValidateLogin(email, password string) (Credentials, map[string]string) {
	c := wizard.MustNew(LoginSchema())
	// Both fields are text; SetField cannot fail here.
	_ = c.SetField(FieldEmail, strings.TrimSpace(email))
	_ = c.SetField(FieldPassword, password)

	if !c.Validate() {
		return Credentials{}, c.View().Errors
	}
	return Credentials{Email: strings.TrimSpace(email), Password: password}, nil
}
