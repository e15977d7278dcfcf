package routes

import (
	"alertrelay/config"
	"alertrelay/controllers"
	"alertrelay/metrics"
	"alertrelay/middleware"
	"alertrelay/repositories"
	"alertrelay/services"
	"alertrelay/storage"
	"alertrelay/websocket"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Dependencies are the process-wide collaborators the router is built from.
type Dependencies struct {
	Config   *config.Config
	Redis    *redis.Client // optional
	Hub      *websocket.Hub
	Blobs    storage.BlobStore
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
}

// SetupRoutes wires repositories, services and controllers and attaches the
// tracking handler to the hub. Call it before starting the hub.
func SetupRoutes(deps Dependencies) *gin.Engine {
	router := gin.New()
	// Client IPs key the ingestion rate limit, so forwarding headers count only
	// when they come from a configured proxy.
	if err := router.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		logrus.WithError(err).Warn("Invalid trusted proxies, forwarding headers ignored")
		_ = router.SetTrustedProxies(nil)
	}

	repos := initializeRepositories(deps.Config)
	services := initializeServices(repos, deps)
	deps.Hub.Attach(services.Tracking)

	controllers := initializeControllers(services, deps)

	setupGlobalMiddleware(router, deps.Config)
	setupIngestionRoutes(router, controllers, deps)
	setupPublicRoutes(router, controllers, deps)
	SetupWebSocketRoutes(router, controllers.WebSocket)

	return router
}

type Repositories struct {
	Alert    *repositories.AlertRepository
	Presence *repositories.PresenceRepository
	Tracking *repositories.TrackingRepository
}

func initializeRepositories(cfg *config.Config) *Repositories {
	presence := repositories.NewPresenceRepository()
	return &Repositories{
		Alert:    repositories.NewAlertRepository(cfg.MaxAlerts),
		Presence: presence,
		Tracking: repositories.NewTrackingRepository(presence),
	}
}

type Services struct {
	Alert    *services.AlertService
	Tracking *services.TrackingService
	Query    *services.QueryService
}

func initializeServices(repos *Repositories, deps Dependencies) *Services {
	cfg := deps.Config
	return &Services{
		Alert: services.NewAlertService(repos.Alert, deps.Hub, deps.Hub, deps.Metrics, cfg.AlertAPIKey, cfg.Fallback()),
		Tracking: services.NewTrackingService(
			repos.Alert,
			repos.Presence,
			repos.Tracking,
			deps.Hub,
			deps.Metrics,
			cfg.Fallback(),
		),
		Query: services.NewQueryService(
			repos.Alert,
			repos.Presence,
			repos.Tracking,
			deps.Hub,
			deps.Hub,
			deps.Blobs,
			cfg.SnippetListTTL(),
		),
	}
}

type Controllers struct {
	Alert     *controllers.AlertController
	Query     *controllers.QueryController
	Snippet   *controllers.SnippetController
	WebSocket *controllers.WebSocketController
}

func initializeControllers(services *Services, deps Dependencies) *Controllers {
	return &Controllers{
		Alert:     controllers.NewAlertController(services.Alert),
		Query:     controllers.NewQueryController(services.Query),
		Snippet:   controllers.NewSnippetController(deps.Blobs, services.Query),
		WebSocket: controllers.NewWebSocketController(deps.Hub, deps.Config.CORSOrigins),
	}
}

func setupGlobalMiddleware(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.LoggerForEnvironment(cfg.Environment))
	router.Use(middleware.NewErrorHandler(cfg.Environment, nil).Handle())
	router.Use(middleware.CORS(middleware.NewCORSConfig(cfg.CORSOrigins)))
}

// setupIngestionRoutes covers the sensor-facing endpoints. The two alert routes
// check the shared secret in the service so rejected calls are counted there.
func setupIngestionRoutes(router *gin.Engine, controllers *Controllers, deps Dependencies) {
	cfg := deps.Config
	ingest := router.Group("/")
	ingest.Use(middleware.IngestRateLimit(deps.Redis, cfg.IngestRateLimit, cfg.IngestRateWindow()))
	{
		ingest.POST("/send-alert", controllers.Alert.SendAlert)
		ingest.POST("/send-sos-alert", controllers.Alert.SendSOSAlert)
		ingest.POST("/upload-snippet", middleware.RequireAPIKey(cfg.AlertAPIKey), controllers.Snippet.UploadSnippet)
	}
}

func setupPublicRoutes(router *gin.Engine, controllers *Controllers, deps Dependencies) {
	router.POST("/resolve-alert", controllers.Alert.ResolveAlert)
	router.POST("/clear-alerts", controllers.Alert.ClearAlerts)

	router.GET("/alerts", controllers.Query.GetAlerts)
	router.GET("/alerts/:kind", controllers.Query.GetAlertsByKind)
	router.GET("/tracking-data", controllers.Query.TrackingData)
	router.GET("/health", controllers.Query.Health)

	router.GET("/snippets-list", controllers.Query.SnippetsList)
	router.GET("/snippets/:filename", middleware.PublicAsset(), controllers.Snippet.GetSnippet)

	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}
}
