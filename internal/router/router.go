package router

import (
	"fmt"
	"net/http"

	docs "github.com/budgenv/backend/api"
	"github.com/budgenv/backend/internal/auth"
	"github.com/budgenv/backend/internal/config"
	"github.com/budgenv/backend/internal/controllers"
	"github.com/budgenv/backend/internal/httputil"
	"github.com/budgenv/backend/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ryanuber/go-glob"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// This is set at build time with
// -ldflags "-X github.com/budgenv/backend/internal/router.version=<version>".
var version = "0.0.0"

// Config creates the engine with all middlewares.
//
// The collectors are registered with Prometheus in addition to the HTTP metrics.
// The returned function unregisters them again and must be called when the
// engine is not used anymore.
func Config(c config.Config, collectors ...prometheus.Collector) (*gin.Engine, func(), error) {
	teardown := func() {}

	metrics := append([]prometheus.Collector{requestCount, requestDuration}, collectors...)
	err := registerPrometheusMetrics(metrics)
	if err != nil {
		return nil, teardown, err
	}
	teardown = func() {
		unregisterPrometheusMetrics(metrics)
	}

	url := c.URL()

	// Set up the router and middlewares
	r := gin.New()

	// Don’t process X-Forwarded-For header as we do not do anything with
	// client IPs
	r.ForwardedByClientIP = false

	// Send a HTTP 405 (Method not allowed) for all paths where there is
	// a handler, but not for the specific method used
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(URLMiddleware(url))
	r.Use(MetricsMiddleware())
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, httputil.HTTPError{
			Reason:  "METHOD_NOT_ALLOWED",
			Message: "this HTTP method is not allowed for the endpoint you called",
		})
	})
	r.NoRoute(func(c *gin.Context) {
		httputil.Error(c, fmt.Errorf("%w route matching your query", models.ErrResourceNotFound))
	})
	r.Use(logger.SetLogger(
		logger.WithDefaultLevel(zerolog.InfoLevel),
		logger.WithClientErrorLevel(zerolog.InfoLevel),
		logger.WithServerErrorLevel(zerolog.ErrorLevel),
		logger.WithLogger(func(c *gin.Context, logger zerolog.Logger) zerolog.Logger {
			return logger.With().
				Str("request-id", requestid.Get(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Int("size", c.Writer.Size()).
				Str("user-agent", c.Request.UserAgent()).
				Logger()
		})))

	// CORS settings
	allowOrigins := c.AllowOrigins()
	if len(allowOrigins) > 0 {
		log.Debug().Strs("CORS Allowed Origins", allowOrigins).Msg("Router")

		r.Use(cors.New(cors.Config{
			AllowOriginFunc:  allowOriginFunc(allowOrigins),
			AllowMethods:     []string{"OPTIONS", "GET", "POST"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", controllers.IdempotencyKeyHeader},
			AllowCredentials: true,
		}))
	}

	// Disable the gin debug route printing as it clutters logs (and test logs)
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, numHandlers int) {}

	// Don’t trust any proxy. We do not process any client IPs,
	// therefore we don’t need to trust anyone here.
	_ = r.SetTrustedProxies([]string{})

	log.Debug().Str("API Base URL", url.String()).Str("Host", url.Host).Str("Path", url.Path).Msg("Router")
	log.Info().Str("version", version).Msg("Router")

	docs.SwaggerInfo.Host = url.Host
	docs.SwaggerInfo.BasePath = url.Path
	docs.SwaggerInfo.Title = "budgenv"
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Description = "The backend for budgenv, a personal budgeting API with budgets, categories, transactions and monthly affectations."

	return r, teardown, nil
}

// allowOriginFunc matches origins against glob patterns, e.g. "https://*.example.com".
func allowOriginFunc(patterns []string) func(string) bool {
	return func(origin string) bool {
		for _, pattern := range patterns {
			if glob.Glob(pattern, origin) {
				return true
			}
		}
		return false
	}
}

// AttachRoutes attaches the API routes to the router group that is passed in.
//
// Everything except the informational endpoints and the login requires a token.
func AttachRoutes(co controllers.Controller, group *gin.RouterGroup, c config.Config) {
	group.GET("", GetRoot)
	group.OPTIONS("", OptionsRoot)
	group.GET("/version", GetVersion)
	group.OPTIONS("/version", OptionsVersion)
	group.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// pprof performance profiles
	if c.EnablePprof {
		pprof.RouteRegister(group, "debug/pprof")
	}

	group.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	co.RegisterHealthzRoutes(group.Group("/healthz"))
	co.RegisterTokenRoutes(group.Group("/tokens"))

	if c.AuthBypass && auth.BypassAvailable {
		log.Warn().Msg("authentication is bypassed, every request has access to every budget")
	}

	authenticated := group.Group("", auth.Middleware(co.Auth, c.AuthBypass))
	co.RegisterUserRoutes(authenticated.Group("/users"))
	co.RegisterBudgetRoutes(authenticated.Group("/budgets"))
	co.RegisterTransactionRoutes(authenticated.Group("/transactions"))
}

type RootResponse struct {
	Links RootLinks `json:"links"`
}

type RootLinks struct {
	Docs         string `json:"docs" example:"https://example.com/api/docs/index.html"`      // Swagger API documentation
	Version      string `json:"version" example:"https://example.com/api/version"`           // Endpoint returning the version of the backend
	Healthz      string `json:"healthz" example:"https://example.com/api/healthz"`           // Health check endpoint
	Metrics      string `json:"metrics" example:"https://example.com/api/metrics"`           // Prometheus metrics
	Tokens       string `json:"tokens" example:"https://example.com/api/tokens"`             // Login endpoint
	Users        string `json:"users" example:"https://example.com/api/users"`               // User creation endpoint
	Budgets      string `json:"budgets" example:"https://example.com/api/budgets"`           // Budget list endpoint
	Transactions string `json:"transactions" example:"https://example.com/api/transactions"` // Transaction list endpoint
}

// GetRoot returns the link list for the API root
//
//	@Summary		API root
//	@Description	Entrypoint for the API, listing all endpoints
//	@Tags			General
//	@Success		200	{object}	RootResponse
//	@Router			/ [get]
func GetRoot(c *gin.Context) {
	base := c.GetString(ContextURL)

	c.JSON(http.StatusOK, RootResponse{
		Links: RootLinks{
			Docs:         base + "/docs/index.html",
			Version:      base + "/version",
			Healthz:      base + "/healthz",
			Metrics:      base + "/metrics",
			Tokens:       base + "/tokens",
			Users:        base + "/users",
			Budgets:      base + "/budgets",
			Transactions: base + "/transactions",
		},
	})
}

type VersionResponse struct {
	Data VersionObject `json:"data"` // Data object for the version endpoint
}

type VersionObject struct {
	Version string `json:"version" example:"1.1.0"` // the running version of the budgenv backend
}

// GetVersion returns the API version object
//
//	@Summary		API version
//	@Description	Returns the software version of the API
//	@Tags			General
//	@Success		200	{object}	VersionResponse
//	@Router			/version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Data: VersionObject{
			Version: version,
		},
	})
}

// OptionsRoot returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			General
//	@Success		204
//	@Router			/ [options]
func OptionsRoot(c *gin.Context) {
	httputil.OptionsGet(c)
}

// OptionsVersion returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			General
//	@Success		204
//	@Router			/version [options]
func OptionsVersion(c *gin.Context) {
	httputil.OptionsGet(c)
}
