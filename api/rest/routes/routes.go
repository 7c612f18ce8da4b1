package routes

import (
	"net/http"

	"furniture-editor/api/rest/handlers"
	"furniture-editor/config"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, cfg *config.Config, describer handlers.RoomDescriber) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(corsHandler)

	// mux skips middleware on a method mismatch, so preflight is answered here
	r.MethodNotAllowedHandler = corsHandler(http.HandlerFunc(methodNotAllowed))

	imageHandler := handlers.NewImageHandler(describer, cfg.MaxRequestBytes)

	// Image endpoints
	r.HandleFunc("/api/process-image", imageHandler.ProcessImage).Methods(http.MethodPost)
	r.HandleFunc("/api/placeholder-image", handlers.PlaceholderImage).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// NewRouter builds a router with every route mounted
func NewRouter(cfg *config.Config, describer handlers.RoomDescriber) *mux.Router {
	r := mux.NewRouter()
	SetupRoutes(r, cfg, describer)
	return r
}
