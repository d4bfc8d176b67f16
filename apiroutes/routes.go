package apiroutes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mailio/go-mailio-identity/api"
	restinterceptors "github.com/mailio/go-mailio-identity/api/interceptors"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/metrics"
	"github.com/mailio/go-mailio-identity/services"
	"github.com/mailio/go-mailio-identity/util"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// REST API routes
func ConfigRoutes(router *gin.Engine, addressInfoService *services.AddressInfoService, transitionService *services.TransitionService, wellKnownApi *api.WellKnownApi, limiter restinterceptors.Limiter) *gin.Engine {
	// init metrics
	if global.Conf.Prometheus.Enabled {

		metrics.InitMetrics()

		authorized := router.Group("/metrics", gin.BasicAuth(gin.Accounts{
			global.Conf.Prometheus.Username: global.Conf.Prometheus.Password,
		}))

		authorized.GET("", gin.WrapH(promhttp.Handler()))
	}

	// API definitions
	healthApi := api.NewHealthCheckAPI()
	addressInfoApi := api.NewAddressInfoApi(addressInfoService)
	assertionApi := api.NewAssertionApi(transitionService)

	// PUBLIC ROOT API
	rootPublicApi := router.Group("/", restinterceptors.CorrelationMiddleware())
	{
		rootPublicApi.GET(".well-known/browserid", wellKnownApi.Browserid)
		rootPublicApi.GET("health", healthApi.HealthCheck)
	}

	wsapiHandlers := []gin.HandlerFunc{restinterceptors.CorrelationMiddleware(), metrics.MetricsMiddleware()}
	if origin, err := util.OriginOnly(global.Conf.Federation.PublicURL); err == nil {
		// the sign-in dialog is served from the public origin
		wsapiHandlers = append(wsapiHandlers, cors.New(cors.Config{
			AllowOrigins: []string{origin},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", restinterceptors.HeaderCorrelationID},
		}))
	}
	if limiter != nil {
		wsapiHandlers = append(wsapiHandlers, restinterceptors.RateLimitMiddleware(limiter, global.Conf.RateLimit.RequestsPerSecond))
	}

	wsapi := router.Group("/wsapi", wsapiHandlers...)
	{
		wsapi.GET("/address_info", addressInfoApi.AddressInfo)
		wsapi.POST("/auth_with_assertion", assertionApi.AuthWithAssertion)
		wsapi.POST("/complete_transition", assertionApi.CompleteTransition)
	}

	return router
}
