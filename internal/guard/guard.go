// Package guard gates the dashboard's page routes on the session state.
package guard

import (
	"net/url"
	"strings"

	"github.com/adpaws/dashboard/internal/session"
)

const (
	// LoginPath is where unauthenticated sessions are sent.
	LoginPath = "/auth/login"
	// LandingPath is where authenticated sessions land by default.
	LandingPath = "/inicio"
	// FromParam carries the originally requested path through the login
	// page.
	FromParam = "from"
)

// Access classifies a route.
type Access int

const (
	// Open routes are not gated.
	Open Access = iota
	// Protected routes need an authenticated session.
	Protected
	// PublicOnly routes need the absence of one.
	PublicOnly
)

func (a Access) String() string {
	switch a {
	case Protected:
		return "protected"
	case PublicOnly:
		return "public"
	default:
		return "open"
	}
}

// Route is one entry of the page route table. Patterns use chi syntax:
// {name} matches one segment and a trailing /* matches the rest.
type Route struct {
	Pattern string
	Access  Access
}

// Routes is the dashboard's page route table.
var Routes = []Route{
	{"/", Protected},
	{"/inicio", Protected},
	{"/visitantes-perrunos", Protected},
	{"/visitantes-perrunos/{dogId}", Protected},
	{"/servicios", Protected},
	{"/propietarios", Protected},
	{"/auth", PublicOnly},
	{"/auth/*", PublicOnly},
	{"/registro-cliente", PublicOnly},
}

// Classify returns the access class of path.
func Classify(path string) Access {
	for _, r := range Routes {
		if match(r.Pattern, path) {
			return r.Access
		}
	}
	return Open
}

func match(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(path, prefix+"/")
	}
	if pattern == "/" || path == "/" {
		return pattern == path
	}

	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}

// Action is what a guard decided.
type Action int

const (
	Render Action = iota
	Loading
	Redirect
)

func (a Action) String() string {
	switch a {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	default:
		return "render"
	}
}

// Decision is the outcome of Decide. Location is set for Redirect and, when
// redirecting to the login page, From holds the path to come back to.
type Decision struct {
	Action   Action
	Location string
	From     string
}

// Decide gates path on st. from is the remembered location of a previous
// login redirect, if any.
//
// While the session is loading no redirect is decided. Protected paths send
// unauthenticated sessions to the login page remembering path; public-only
// paths send authenticated sessions to from or the landing page.
func Decide(path string, st session.State, from string) Decision {
	access := Classify(path)
	if access == Open {
		return Decision{Action: Render}
	}
	if st.IsLoading {
		return Decision{Action: Loading}
	}

	switch {
	case access == Protected && !st.IsAuthenticated:
		return Decision{Action: Redirect, Location: LoginPath, From: path}
	case access == PublicOnly && st.IsAuthenticated:
		target := LandingPath
		if safe, ok := SafeFrom(from); ok {
			target = safe
		}
		return Decision{Action: Redirect, Location: target}
	}
	return Decision{Action: Render}
}

// SafeFrom validates a remembered location. Only local absolute paths that
// are not public-only routes are accepted.
func SafeFrom(from string) (string, bool) {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.Contains(from, `\`) {
		return "", false
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if Classify(u.Path) == PublicOnly {
		return "", false
	}
	return u.Path, true
}

// LoginURL is the login page location remembering from.
func LoginURL(from string) string {
	if from == "" {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{FromParam: {from}}.Encode()
}
