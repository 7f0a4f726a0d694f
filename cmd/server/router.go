package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/tasker-api/internal/api"
	apiMiddleware "github.com/phrazzld/tasker-api/internal/api/middleware"
)

const corsMaxAgeSeconds = 300

// setupRouter builds the HTTP surface under /api/v1.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(app.config.Server.RequestTimeoutSeconds) * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", apiMiddleware.TraceIDHeader},
		ExposedHeaders:   []string{apiMiddleware.TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeSeconds,
	}))
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	commentHandler := api.NewCommentHandler(app.commentService, app.logger)
	notificationHandler := api.NewNotificationHandler(app.notificationService, app.generator, app.logger)
	healthHandler := api.NewHealthHandler(app.db, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.userService, app.logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Post("/login/access-token", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", userHandler.Me)
				r.Get("/", userHandler.ListUsers)
				r.Post("/", userHandler.CreateUser)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)
				r.Put("/comments/{commentID}", commentHandler.UpdateComment)
				r.Delete("/comments/{commentID}", commentHandler.DeleteComment)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTask)
					r.Put("/", taskHandler.UpdateTask)
					r.Patch("/", taskHandler.UpdateTask)
					r.Delete("/", taskHandler.DeleteTask)
					r.Patch("/owner", taskHandler.ReassignOwner)
					r.Get("/comments", commentHandler.ListComments)
					r.Post("/comments", commentHandler.CreateComment)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.ListNotifications)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/check-due-dates", notificationHandler.CheckDueDates)
				r.Put("/{id}/read", notificationHandler.MarkRead)
				r.Delete("/{id}", notificationHandler.DeleteNotification)
			})
		})
	})

	return r
}
