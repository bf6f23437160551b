package api

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/lostfound/internal/filestore"
	"github.com/erazemk/lostfound/internal/service"
)

// Options configures the router.
type Options struct {
	// Live serves the websocket endpoint. Nil disables it.
	Live http.Handler
	// AllowedOrigins lists origins allowed to call the API from a browser.
	// "*" allows any origin.
	AllowedOrigins []string
}

// NewRouter creates the HTTP router with all endpoints registered.
func NewRouter(svc *service.Service, files filestore.Store, opts Options, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.NotFound(notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	itemsHandler := &ItemsHandler{Service: svc}
	filesHandler := &FilesHandler{Files: files}

	r.Route("/api", func(r chi.Router) {
		r.Use(CORSMiddleware(opts.AllowedOrigins))

		r.Get("/health", Health)
		r.Get("/categories", itemsHandler.Categories)

		r.Get("/items", itemsHandler.List)
		r.Post("/items", itemsHandler.Create)
		r.Get("/items/by-unique-id/{token}", itemsHandler.GetByUniqueID)
		r.Get("/items/{id}", itemsHandler.Get)
		r.Put("/items/{id}/claim", itemsHandler.Claim)

		if opts.Live != nil {
			r.Handle("/ws", opts.Live)
		}
	})

	r.Get("/uploads/{name}", filesHandler.Uploads)
	r.Get("/qrcodes/{name}", filesHandler.QRCodes)
	if opts.Live != nil {
		r.Handle("/ws", opts.Live)
	}
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	jsonError(w, http.StatusNotFound, "route not found")
}

// CORSMiddleware answers preflight requests and sets CORS headers for
// requests from allowed origins.
func CORSMiddleware(allowed []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(allowed, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || slices.Contains(allowed, origin)) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				if r.Method == http.MethodOptions {
					h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
					h.Set("Access-Control-Allow-Headers", "Content-Type")
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
