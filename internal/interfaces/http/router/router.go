package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/infrastructure/config"
	"github.com/orders/backend/internal/infrastructure/logger"
	"github.com/orders/backend/internal/interfaces/http/dto"
	"github.com/orders/backend/internal/interfaces/http/handler"
	"github.com/orders/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RegistrarFunc adapts a function to RouteRegistrar
type RegistrarFunc func(rg *gin.RouterGroup)

// RegisterRoutes calls f(rg)
func (f RegistrarFunc) RegisterRoutes(rg *gin.RouterGroup) {
	f(rg)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Handlers are the HTTP handlers served under the API prefix
type Handlers struct {
	User    *handler.UserHandler
	Partner *handler.PartnerHandler
	Catalog *handler.CatalogHandler
	Basket  *handler.BasketHandler
	Contact *handler.ContactHandler
	Order   *handler.OrderHandler
}

// MetricsExporter records request metrics and serves them for scraping
type MetricsExporter interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// Config carries what the engine needs besides the handlers
type Config struct {
	HTTP          config.HTTPConfig
	Telemetry     config.TelemetryConfig
	Authenticator middleware.Authenticator
	Logger        *zap.Logger
	Metrics       MetricsExporter        // nil disables /metrics
	Checks        map[string]HealthCheck // run by /health
}

// NewEngine builds the gin engine with the global middleware chain, the
// health and metrics endpoints and every API route. Rate limiter cleanup
// runs until ctx is done.
func NewEngine(ctx context.Context, cfg Config, h Handlers) *gin.Engine {
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			cfg.Logger.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(cfg.Logger),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		logger.GinMiddleware(cfg.Logger),
		middleware.HTTPMetrics(cfg.Metrics),
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig()),
		middleware.CORSWithConfig(cors),
	)
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		limiter.StartCleanup(ctx, time.Minute)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", health(cfg.Checks))
	if cfg.Metrics != nil {
		path := cfg.Telemetry.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(cfg.Metrics.Handler()))
	}

	var throttle []gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRPS, cfg.HTTP.AuthRateLimitBurst)
		limiter.StartCleanup(ctx, time.Minute)
		throttle = append(throttle, middleware.RateLimit(limiter))
	}

	auth := middleware.RequireAuth(middleware.AuthConfig{
		Authenticator: cfg.Authenticator,
		Logger:        cfg.Logger,
	})
	shopOnly := middleware.RequireUserType(identity.UserTypeShop)
	buyerOnly := middleware.RequireUserType(identity.UserTypeBuyer)

	r := NewRouter(engine)
	r.Register(RegistrarFunc(func(rg *gin.RouterGroup) {
		h.User.RegisterRoutes(rg, auth, throttle...)
	}))
	r.Register(h.Catalog)
	r.Register(RegistrarFunc(func(rg *gin.RouterGroup) {
		h.Partner.RegisterRoutes(rg, auth, shopOnly)
	}))
	r.Register(RegistrarFunc(func(rg *gin.RouterGroup) {
		h.Basket.RegisterRoutes(rg, auth, buyerOnly)
	}))
	r.Register(RegistrarFunc(func(rg *gin.RouterGroup) {
		h.Contact.RegisterRoutes(rg, auth)
	}))
	r.Register(RegistrarFunc(func(rg *gin.RouterGroup) {
		h.Order.RegisterRoutes(rg, auth, buyerOnly)
	}))
	r.Setup()

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID("NOT_FOUND", "Not found", middleware.GetRequestID(c)))
	})
	return engine
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, gin.H{"Status": status == http.StatusOK, "checks": results})
	}
}
