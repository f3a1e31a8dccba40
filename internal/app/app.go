// Package app assembles use cases, handlers and middleware into the HTTP
// handler served by cmd/server.
package app

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	profileUC "github.com/fastygo/taskboard/usecase/profile"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

// Stores are the repositories selected by the storage driver.
type Stores struct {
	Tasks    repository.TaskRepository
	Users    repository.UserRepository
	Sessions repository.SessionRepository
}

// Option tweaks NewHandler, mostly for tests.
type Option func(*settings)

type settings struct {
	now func() time.Time
}

// WithClock overrides the clock used for isOverdue.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// NewHandler wires the whole API.
func NewHandler(cfg *config.Config, stores Stores, mon *monitor.Monitor, logger *zap.Logger, opts ...Option) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := settings{now: time.Now}
	for _, fn := range opts {
		fn(&s)
	}

	authUseCase := authUC.New(stores.Users, stores.Sessions, authUC.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		TTL:        cfg.JWT.TTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, logger)
	profileUseCase := profileUC.New(stores.Users, logger)
	taskUseCase := taskUC.New(stores.Tasks, logger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	handlerOpts := apiHandler.Options{
		Adapter:      ctxAdapter,
		Logger:       logger,
		ExposeErrors: !cfg.IsProduction(),
		Now:          s.now,
	}

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, handlerOpts),
		Profile: apiHandler.NewProfileHandler(profileUseCase, handlerOpts),
		Task:    apiHandler.NewTaskHandler(taskUseCase, handlerOpts),
		Health:  apiHandler.NewHealthHandler(mon, handlerOpts),
	}

	return router.New(
		handlers,
		middleware.BearerAuth(authUseCase, ctxAdapter, logger),
		logger,
		middleware.AccessLog(logger),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
}
