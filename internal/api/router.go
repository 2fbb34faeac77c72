package api

import (
	"net/http"
	"time"

	"medportal/internal/api/handler"
	"medportal/internal/api/middleware"
	"medportal/internal/app/service"
	"medportal/internal/platform/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func NewRouter(
	log logrus.FieldLogger,
	requestTimeout time.Duration,
	media *storage.MediaStore,
	authService *service.AuthService,
	dashboardService *service.DashboardService,
	userService *service.UserService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(requestTimeout))
	}
	r.Use(chiMiddleware.StripSlashes)

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if media != nil {
		r.Handle(media.BaseURL()+"*", media.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		authHandler := handler.NewAuthHandler(authService, log)
		authHandler.RegisterRoutes(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.Authenticator(authService, log))

			handler.NewDashboardHandler(dashboardService, log).RegisterRoutes(protected)
			handler.NewUserHandler(userService, log).RegisterRoutes(protected)
		})
	})

	return r
}
