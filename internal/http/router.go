package http

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs from main. Only Config and Users are required.
type Deps struct {
	Config         config.Config
	Users          handlers.UsersService
	Prom           *observability.Prom
	Gatherer       prometheus.Gatherer
	Limiter        *middlewares.RateLimiter
	Checks         []handlers.ReadinessCheck
	IsShuttingDown func() bool
}

func NewRouter(log *slog.Logger, deps Deps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// match on the escaped path so an email param may carry %2F
	r.UseRawPath = true
	r.UnescapePathValues = true

	// middleware

	r.Use(gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		log.ErrorContext(ctx.Request.Context(), "panic recovered", "panic", recovered, "route", ctx.FullPath())
		handlers.AbortWithFailure(ctx, http.StatusInternalServerError, "An unexpected error occurred")
	}))
	r.Use(middlewares.RequestID())
	if deps.Config.TracingEnabled() {
		r.Use(otelgin.Middleware(deps.Config.OTelServiceName))
	}
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Config.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(deps.Config.MaxBodyBytes))

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Resource not found")
	})

	// operational routes
	h := handlers.NewHealthHandler(deps.IsShuttingDown, deps.Checks...)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	// users
	usersHandler := handlers.NewUsersHandler(deps.Users)
	if deps.Prom != nil {
		usersHandler.WithErrorRecorder(deps.Prom)
	}

	users := r.Group("/users")
	if deps.Limiter != nil {
		users.Use(deps.Limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	}
	users.Use(middlewares.RequireJSON())
	{
		users.GET("", usersHandler.ListUsers)
		users.GET("/:id", usersHandler.GetUser)
		users.GET("/email", usersHandler.GetUserByEmail)
		users.GET("/email/:email", usersHandler.GetUserByEmail)
		users.POST("", usersHandler.CreateUser)
		users.PUT("/:id", usersHandler.UpdateUser)
		users.DELETE("/:id", usersHandler.DeleteUser)
	}

	return r
}
