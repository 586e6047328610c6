// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dev-mohitbeniwal/tokengate/controller"
	"github.com/dev-mohitbeniwal/tokengate/middleware"
)

// SetupRouter wires the API. redisClient may be nil, in which case rate
// limiting is per process.
func SetupRouter(
	controllers *controller.Controllers,
	redisClient *redis.Client,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	router.GET("/healthz", controller.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/v1")
	api.Use(middleware.RateLimiter(redisClient, rateLimitRequests, rateLimitDuration))

	controllers.Authorization.RegisterRoutes(api)
	controllers.Audit.RegisterRoutes(api)

	return router
}
