package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"audiohub-backend/infrastructure/observability"
	"audiohub-backend/interfaces/http/rest/handlers"
	"audiohub-backend/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	authHandler   *handlers.AuthHandler
	deviceHandler *handlers.DeviceHandler
	presetHandler *handlers.PresetHandler
	userHandler   *handlers.UserHandler
	authenticator *middleware.Authenticator
	corsOrigins   []string
	enableTracing bool
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	authHandler *handlers.AuthHandler,
	deviceHandler *handlers.DeviceHandler,
	presetHandler *handlers.PresetHandler,
	userHandler *handlers.UserHandler,
	authenticator *middleware.Authenticator,
	corsOrigins []string,
	enableTracing bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		authHandler:   authHandler,
		deviceHandler: deviceHandler,
		presetHandler: presetHandler,
		userHandler:   userHandler,
		authenticator: authenticator,
		corsOrigins:   corsOrigins,
		enableTracing: enableTracing,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.enableTracing {
		router.Use(observability.TracingMiddleware("audiohub"))
	}

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api", func(r chi.Router) {
		// Public authentication endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.authHandler.Register)
			r.Post("/login", rt.authHandler.Login)
		})

		// Everything else requires an authenticated caller
		r.Group(func(r chi.Router) {
			r.Use(rt.authenticator.Handler)

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", rt.deviceHandler.List)
				r.Put("/{deviceID}", rt.deviceHandler.Update)
				r.Post("/{deviceID}/apply-preset", rt.deviceHandler.ApplyPreset)
				r.Post("/{deviceID}/presence", rt.deviceHandler.SetPresence)
				r.Get("/{deviceID}/presets", rt.presetHandler.List)
				r.Post("/{deviceID}/presets", rt.presetHandler.Create)
			})

			r.Route("/presets", func(r chi.Router) {
				r.Get("/", rt.presetHandler.List)
				r.Post("/", rt.presetHandler.Create)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", rt.userHandler.List)
				r.Get("/profile", rt.userHandler.GetProfile)
				r.Put("/profile", rt.userHandler.UpdateProfile)
				r.Get("/{userID}", rt.userHandler.GetUser)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
