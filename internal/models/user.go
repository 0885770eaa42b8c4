package models

// Role is the backend role of a user account.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleUser   Role = "USER"
	RoleClient Role = "CLIENT"
	RoleOwner  Role = "OWNER"
)

// UserStatus is the lifecycle status of a user account.
type UserStatus string

const (
	UserActive     UserStatus = "ACTIVE"
	UserInactive   UserStatus = "INACTIVE"
	UserBlocked    UserStatus = "BLOCKED"
	UserIncomplete UserStatus = "INCOMPLETE"
	UserDeleted    UserStatus = "DELETED"
)

// User is the snapshot of the signed-in operator.
//
// It is what the identity query returns and what the session persists to
// durable local state between restarts.
type User struct {
	// ID is the backend user id.
	ID ID `json:"id"`

	// Email is the login email.
	Email string `json:"email"`

	// Name is the first name shown in the header greeting.
	Name string `json:"name,omitempty"`

	// Lastname is optional; older accounts do not have it.
	Lastname string `json:"lastname,omitempty"`

	// Role is the backend role (ADMIN, OWNER...).
	Role Role `json:"role,omitempty"`

	// Company is the business the operator works for. Every directory
	// query is scoped to it.
	Company *Company `json:"company,omitempty"`
}

// CompanyID returns the id of the operator's company, or "" when the
// snapshot carries none.
func (u *User) CompanyID() ID {
	if u == nil || u.Company == nil {
		return ""
	}
	return u.Company.ID
}

// DisplayName joins name and lastname, falling back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.Name != "" && u.Lastname != "":
		return u.Name + " " + u.Lastname
	case u.Name != "":
		return u.Name
	default:
		return u.Email
	}
}

// Company is the boarding business.
type Company struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	LogoURL string `json:"logoUrl,omitempty"`
}

// TokenPair is what the sign-in mutation returns.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Empty reports whether no token is present.
func (t TokenPair) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}
