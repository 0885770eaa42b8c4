package guard

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/session"
)

var (
	loading  = session.State{IsLoading: true}
	anon     = session.State{}
	signedIn = session.State{User: &models.User{ID: "3"}, IsAuthenticated: true}
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Access
	}{
		{"/", Protected},
		{"/inicio", Protected},
		{"/visitantes-perrunos", Protected},
		{"/visitantes-perrunos/7", Protected},
		{"/visitantes-perrunos/7/extra", Open},
		{"/servicios", Protected},
		{"/propietarios/", Protected},
		{"/auth/login", PublicOnly},
		{"/auth/recuperar", PublicOnly},
		{"/registro-cliente", PublicOnly},
		{"/assets/app.js", Open},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		state session.State
		from  string
		want  Decision
	}{
		{"loading protected", "/inicio", loading, "", Decision{Action: Loading}},
		{"loading public", "/auth/login", loading, "", Decision{Action: Loading}},
		{"loading open", "/favicon.ico", loading, "", Decision{Action: Render}},
		{"anon protected", "/visitantes-perrunos/7", anon, "", Decision{Action: Redirect, Location: LoginPath, From: "/visitantes-perrunos/7"}},
		{"anon public", "/auth/login", anon, "/servicios", Decision{Action: Render}},
		{"signed in protected", "/servicios", signedIn, "", Decision{Action: Render}},
		{"signed in public, no from", "/auth/login", signedIn, "", Decision{Action: Redirect, Location: LandingPath}},
		{"signed in public, from", "/auth/login", signedIn, "/visitantes-perrunos/7", Decision{Action: Redirect, Location: "/visitantes-perrunos/7"}},
		{"signed in signup", "/registro-cliente", signedIn, "", Decision{Action: Redirect, Location: LandingPath}},
		{"external from ignored", "/auth/login", signedIn, "https://evil.example/x", Decision{Action: Redirect, Location: LandingPath}},
		{"scheme-relative from ignored", "/auth/login", signedIn, "//evil.example", Decision{Action: Redirect, Location: LandingPath}},
		{"public from ignored", "/auth/login", signedIn, "/auth/login", Decision{Action: Redirect, Location: LandingPath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.path, tt.state, tt.from))
		})
	}
}

type fixedReader struct {
	mu sync.Mutex
	st session.State
}

func (f *fixedReader) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st
}

func (f *fixedReader) set(st session.State) {
	f.mu.Lock()
	f.st = st
	f.mu.Unlock()
}

func newRouter(r session.Reader) http.Handler {
	router := chi.NewRouter()
	Mount(router, r, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = io.WriteString(w, "page "+req.URL.Path)
	}))
	return router
}

func noRedirect(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

func TestMiddleware(t *testing.T) {
	reader := &fixedReader{st: loading}
	srv := httptest.NewServer(newRouter(reader))
	defer srv.Close()
	client := &http.Client{CheckRedirect: noRedirect}

	get := func(t *testing.T, path string) *http.Response {
		t.Helper()
		resp, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("loading page while the session resolves", func(t *testing.T) {
		reader.set(loading)
		resp := get(t, "/inicio")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "Cargando...")
	})

	t.Run("protected path redirects to login and back", func(t *testing.T) {
		reader.set(anon)
		resp := get(t, "/visitantes-perrunos/7")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, LoginPath, loc.Path)
		from := loc.Query().Get(FromParam)
		assert.Equal(t, "/visitantes-perrunos/7", from)

		login := get(t, loc.String())
		assert.Equal(t, http.StatusOK, login.StatusCode)

		reader.set(signedIn)
		back := get(t, loc.String())
		require.Equal(t, http.StatusFound, back.StatusCode)
		assert.Equal(t, "/visitantes-perrunos/7", back.Header.Get("Location"))
	})

	t.Run("authenticated page renders", func(t *testing.T) {
		reader.set(signedIn)
		resp := get(t, "/propietarios")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "page /propietarios", string(body))
	})
}
