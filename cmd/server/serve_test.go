package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/session"
)

type stateReader session.State

func (s stateReader) State() session.State { return session.State(s) }

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<main>app</main>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	h := staticFiles(dir)
	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/assets/app.js", http.StatusOK, "console.log(1)"},
		{"/perfil/ajustes", http.StatusOK, "<main>app</main>"},
		{"/assets", http.StatusOK, "<main>app</main>"},
		{"/../../etc/passwd", http.StatusBadRequest, ""},
		{"/adpaws.v1.Unknown/Call", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.URL.Path = tt.path
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	healthz(stateReader{User: &models.User{ID: "3"}, IsAuthenticated: true})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"status": "ok", "sessionLoaded": true, "authenticated": true}, body)
}
