package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	api_utils "github.com/ethanbaker/api/pkg/utils"
	"github.com/ethanbaker/api/pkg/api_key"
	"github.com/ethanbaker/attio-relay/internal/relay"
	"github.com/ethanbaker/attio-relay/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	log "github.com/sirupsen/logrus"

	attio_module "github.com/ethanbaker/attio-relay/internal/api/modules/attio"
	health_module "github.com/ethanbaker/attio-relay/internal/api/modules/health"
)

const SERVICE_NAME = "attio-relay"

// Dependencies are the process-wide objects the gateway is built from
type Dependencies struct {
	Config  *utils.Config
	Logger  *log.Logger
	App     *newrelic.Application // Optional, nil disables telemetry
	Service *relay.Service
}

// NewEngine builds the gateway's router
func NewEngine(deps *Dependencies) *gin.Engine {
	cfg := deps.Config

	// Add app level settings/routes
	engine := gin.New()
	engine.Use(requestID(), accessLog(deps.Logger), recovery(deps.Logger), transaction(deps.App))
	engine.NoRoute(api_utils.NoRouteHandler)

	// Add trusted proxies
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-KEY", REQUEST_ID_HEADER},
		ExposeHeaders:    []string{"Content-Length", REQUEST_ID_HEADER},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Gateway key is optional, the Attio credential travels in the request body either way
	var guard []gin.HandlerFunc
	if key := cfg.Get("GATEWAY_API_KEY"); key != "" {
		guard = append(guard, api_key.APIKeyHeaderHandler(func(k string) bool { return k == key }))
	}

	ctl := attio_module.NewController(deps.Service)

	// Relay routes are served at the root for existing callers and under '/api'
	attio_module.RegisterRoutes(&engine.RouterGroup, ctl, guard...)

	baseGroup := engine.Group("/api")
	attio_module.RegisterRoutes(baseGroup, ctl, guard...)
	health_module.RegisterRoutes(baseGroup, SERVICE_NAME)

	return engine
}

// Start runs the gateway until the listener fails
func Start(deps *Dependencies) error {
	port := deps.Config.GetWithDefault("API_PORT", "5003")

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           NewEngine(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	deps.Logger.Infof("[API-MAIN]: listening on :%s", port)
	deps.Logger.Infof("[API-MAIN]: POST %s body: {\"attio_api_key\": \"<key>\", \"object_slug\": \"<slug>\"}", "/get_object_definition")
	deps.Logger.Infof("[API-MAIN]: POST %s body: {\"attio_api_key\": \"<key>\", \"deal_attributes\": {...}, \"matching_attribute\": \"<attr_slug>\"}", "/assert_deal")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
