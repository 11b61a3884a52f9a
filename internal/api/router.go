package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/taskflow-be/internal/api/handlers"
	"github.com/isdelr/taskflow-be/internal/auth"
	"github.com/isdelr/taskflow-be/internal/logger"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/services"
	"github.com/isdelr/taskflow-be/internal/store"
	"github.com/isdelr/taskflow-be/internal/websocket"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Store    *store.Store
	Users    services.UserServiceProvider
	Projects services.ProjectServiceProvider
	Tasks    services.TaskServiceProvider
	Events   services.EventServiceProvider
	Issuer   *auth.TokenIssuer
	Avatars  handlers.AvatarSaver
	Hub      *websocket.Hub

	UploadDir    string
	CORSOrigins  []string
	ExposeErrors bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	res := handlers.NewResponder(d.ExposeErrors)
	verifier := auth.NewVerifier(d.Issuer, d.Store.Users, res.Fail)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(d.Users, d.Issuer, d.Avatars, res)
	projectHandler := handlers.NewProjectHandler(d.Projects, res)
	taskHandler := handlers.NewTaskHandler(d.Tasks, res)
	eventHandler := handlers.NewEventHandler(d.Events, res)
	wsHandler := handlers.NewWebSocketHandler(d.Hub, d.CORSOrigins, res)
	healthHandler := handlers.NewHealthHandler(d.Store.Ping, res)

	r.Get("/healthz", healthHandler.Check)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))

	r.Route("/api", func(r chi.Router) {
		r.With(verifier.ProtectWebSocket).Get("/ws", wsHandler.Serve)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Post("/login", userHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(verifier.Protect)
				r.Get("/me", userHandler.GetMe)
				r.Put("/me", userHandler.UpdateMe)
				r.Delete("/me", userHandler.DeleteMe)
				r.Put("/me/password", userHandler.ChangePassword)

				// Admin routes
				r.Group(func(r chi.Router) {
					r.Use(verifier.RequireRole(models.RoleAdmin))
					r.Get("/", userHandler.GetAll)
					r.Get("/{id}", userHandler.Get)
				})
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Use(verifier.Protect)
			r.Get("/", projectHandler.GetAll)
			r.Post("/", projectHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.Get)
				r.Put("/", projectHandler.Update)
				r.Delete("/", projectHandler.Delete)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(verifier.Protect)
			r.Get("/", taskHandler.GetAll)
			r.Post("/", taskHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.Put("/", taskHandler.Update)
				r.Delete("/", taskHandler.Delete)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Use(verifier.Protect, verifier.RequireRole(models.RoleAdmin))
			r.Get("/", eventHandler.GetRecent)
		})
	})

	return r
}
