package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/account-portal/docs"
	"github.com/99minutos/account-portal/internal/api/handler"
	"github.com/99minutos/account-portal/internal/api/middleware"
	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
	"github.com/99minutos/account-portal/internal/web"
)

// Deps are the services the HTTP layer drives.
type Deps struct {
	Credentials ports.CredentialService
	SignIn      ports.SignInService
	Onboarding  ports.OnboardingService
	Google      ports.GoogleService
	Passkeys    ports.PasskeyService
	Health      map[string]handler.Pinger
	Cookies     handler.Cookies
	Log         zerolog.Logger

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) (*echo.Echo, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsConfig(deps.Registry)))
	e.Use(middleware.Session(deps.SignIn, handler.SessionCookie))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Credentials, deps.SignIn, deps.Cookies)
	pageHandler := handler.NewPageHandler(deps.SignIn, deps.Onboarding, deps.Cookies, deps.Log)
	googleHandler := handler.NewGoogleHandler(deps.Google, deps.SignIn, deps.Cookies, deps.Log)
	passkeyHandler := handler.NewPasskeyHandler(deps.Passkeys, deps.SignIn, deps.Cookies)

	onboarded := middleware.AccountType(domain.AccountTypePersonal, domain.AccountTypeBusiness)

	// --- Pages ---
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, domain.PathSignIn)
	})
	e.GET(domain.PathSignIn, pageHandler.Login)
	e.GET(domain.PathError, pageHandler.Error)
	e.GET(domain.PathOnboarding, pageHandler.Onboarding)
	e.POST(domain.PathOnboarding, pageHandler.CompleteOnboarding)
	e.GET(domain.PathDashboard, pageHandler.Dashboard, middleware.RequirePageSession(), onboarded)
	e.StaticFS("/static", web.Static())

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/callback/credentials", authHandler.Credentials)
	auth.GET("/session", authHandler.Session)
	auth.POST("/signout", authHandler.SignOut)

	auth.GET("/signin/google", googleHandler.Begin)
	auth.GET("/callback/google", googleHandler.Callback)

	auth.POST("/webauthn/authenticate/options", passkeyHandler.LoginOptions)
	auth.POST("/webauthn/authenticate/verify", passkeyHandler.LoginVerify)

	registration := auth.Group("/webauthn/register", middleware.RequireSession(), onboarded)
	registration.POST("/options", passkeyHandler.RegisterOptions)
	registration.POST("/verify", passkeyHandler.RegisterVerify)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Health)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", metricsHandler(deps.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func metricsConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	conf := echoprometheus.MiddlewareConfig{
		Subsystem: "http",
		Skipper: func(c echo.Context) bool {
			path := c.Path()
			return path == "/metrics" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/static")
		},
	}
	if reg != nil {
		conf.Registerer = reg
	}
	return conf
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
