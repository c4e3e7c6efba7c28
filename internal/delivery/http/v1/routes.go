package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API on router. Every route answers both with
// and without a trailing slash.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/healthz", h.HandleHealth)

	api := router.Group("/api")

	authRouter := api.Group("/auth")
	handle(authRouter, http.MethodPost, "/register", h.HandleRegister)
	handle(authRouter, http.MethodPost, "/login", h.HandleLogin)
	handle(authRouter, http.MethodPost, "/refresh", h.HandleRefresh)
	handle(authRouter, http.MethodPost, "/logout", h.HandleAuthMiddleware, h.HandleLogout)
	handle(authRouter, http.MethodGet, "/me", h.HandleAuthMiddleware, h.HandleMe)

	tasksRouter := api.Group("/tasks", h.HandleAuthMiddleware)
	handle(tasksRouter, http.MethodGet, "", h.HandleListTasks)
	handle(tasksRouter, http.MethodPost, "", h.HandleCreateTask)
	handle(tasksRouter, http.MethodGet, "/:id", h.HandleGetTask)
	handle(tasksRouter, http.MethodPut, "/:id", h.HandleUpdateTask)
	handle(tasksRouter, http.MethodPatch, "/:id", h.HandlePartialUpdateTask)
	handle(tasksRouter, http.MethodDelete, "/:id", h.HandleDeleteTask)
}

func handle(router gin.IRoutes, method, path string, handlers ...gin.HandlerFunc) {
	router.Handle(method, path, handlers...)
	router.Handle(method, path+"/", handlers...)
}
