package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/storyhub-app/storyhub-be/internal/apierror"
	"github.com/storyhub-app/storyhub-be/internal/api/handlers"
	"github.com/storyhub-app/storyhub-be/internal/auth"
	"github.com/storyhub-app/storyhub-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(tokens *auth.Manager, userService services.UserServiceProvider, storyService services.StoryServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Accept", "X-Requested-With", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokens)
	loginHandler := handlers.NewLoginHandler(userService, tokens)
	storyHandler := handlers.NewStoryHandler(storyService, userService)
	favoriteHandler := handlers.NewFavoriteHandler(userService, storyService)

	authRequired := tokens.Required(handlers.RespondError)

	r.Post("/signup", userHandler.Create)
	r.Post("/login", loginHandler.Login)

	r.Route("/stories", func(r chi.Router) {
		r.Get("/", storyHandler.List)
		r.With(authRequired).Post("/", storyHandler.Create)
		r.Route("/{storyId}", func(r chi.Router) {
			r.Get("/", storyHandler.Get)
			r.With(authRequired).Patch("/", storyHandler.Update)
			r.With(authRequired).Delete("/", storyHandler.Delete)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.List)
		r.Post("/", userHandler.Create)
		r.Route("/{username}", func(r chi.Router) {
			r.Get("/", userHandler.Get)
			r.With(authRequired).Patch("/", userHandler.Update)
			r.With(authRequired).Delete("/", userHandler.Delete)

			r.Route("/favorites/{storyId}", func(r chi.Router) {
				r.With(authRequired).Post("/", favoriteHandler.Add)
				r.With(authRequired).Delete("/", favoriteHandler.Delete)
			})
		})
	})

	// Uniform bodies for unmatched paths and unsupported methods
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		handlers.RespondError(w, apierror.NotFound("Not Found",
			"The requested resource could not be found."))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		handlers.RespondError(w, apierror.New(http.StatusMethodNotAllowed,
			"Method Not Allowed", "That method is not supported at this endpoint."))
	})

	return r
}
