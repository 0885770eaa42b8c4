package guard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adpaws/dashboard/internal/session"
)

const loadingPage = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="1">
<title>Ad Paws</title>
</head>
<body style="display:flex;height:100vh;margin:0;align-items:center;justify-content:center;font-family:sans-serif">
<p>Cargando...</p>
</body>
</html>
`

// Middleware gates page requests on the session read through r.
func Middleware(r session.Reader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			d := Decide(req.URL.Path, r.State(), req.URL.Query().Get(FromParam))

			switch d.Action {
			case Loading:
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-store")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(loadingPage))
			case Redirect:
				location := d.Location
				if location == LoginPath {
					location = LoginURL(d.From)
				}
				slog.Debug("Route guard redirect", "path", req.URL.Path, "location", location)
				http.Redirect(w, req, location, http.StatusFound)
			default:
				next.ServeHTTP(w, req)
			}
		})
	}
}

// Mount registers every route of the table on router, serving page behind
// the guard.
func Mount(router chi.Router, r session.Reader, page http.Handler) {
	router.Group(func(g chi.Router) {
		g.Use(Middleware(r))
		for _, route := range Routes {
			g.Method(http.MethodGet, route.Pattern, page)
			g.Method(http.MethodHead, route.Pattern, page)
		}
	})
}
