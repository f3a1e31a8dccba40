package router

import (
	"fmt"
	"net/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

// New builds the route table. authMiddleware guards every route that needs
// an identity; global middlewares wrap the whole router.
func New(handlers Handlers, authMiddleware middleware.Middleware, logger *zap.Logger, global ...middleware.Middleware) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := router.New()
	r.HandleOPTIONS = false

	r.GET("/health", handlers.Health.Check)
	r.GET("/api/health", handlers.Health.Check)

	v1 := r.Group("/api/v1")

	// Auth routes
	v1.POST("/auth/register", handlers.Auth.Register)
	v1.POST("/auth/login", handlers.Auth.Login)
	v1.POST("/auth/refresh", authMiddleware(handlers.Auth.Refresh))
	v1.POST("/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	v1.GET("/profile", authMiddleware(handlers.Profile.GetProfile))
	v1.PUT("/profile", authMiddleware(handlers.Profile.UpdateProfile))

	v1.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	v1.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	v1.GET("/tasks/stats", authMiddleware(handlers.Task.GetStats))
	v1.GET("/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	v1.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	v1.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		transport.WriteJSON(ctx, http.StatusNotFound,
			transport.NewError(string(domain.ErrCodeNotFound), "route not found", nil))
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		transport.WriteJSON(ctx, http.StatusMethodNotAllowed,
			transport.NewError("METHOD_NOT_ALLOWED", "method not allowed", nil))
	}
	r.PanicHandler = func(ctx *fasthttp.RequestCtx, recovered interface{}) {
		logger.Error("panic while serving request",
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.ByteString("path", ctx.Path()),
			zap.String("panic", fmt.Sprint(recovered)),
			zap.StackSkip("stack", 2))
		transport.WriteJSON(ctx, http.StatusInternalServerError,
			transport.NewError(string(domain.ErrCodeInternal), "internal server error", nil))
	}

	return middleware.Chain(r.Handler, global...)
}
