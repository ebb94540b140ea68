// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"wedly/internal/checkin"
	"wedly/internal/entitlements"
	"wedly/internal/guests"
	"wedly/internal/notifications"
	"wedly/internal/seating"
	"wedly/internal/shared/config"
	"wedly/internal/shared/database"
	"wedly/internal/shared/middleware"
	"wedly/pkg/cache"
	"wedly/pkg/lock"
	"wedly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher
	log       *logger.Logger

	guestService guests.Service // shared by check-in and redemption flows
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher, log *logger.Logger) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		log:       log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	auth := middleware.GateAuthWithConfig(r.config)
	ownerOnly := middleware.RequireOwner()

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Guest routes first: check-in and redemption resolve guests
		// through the service built here.
		r.setupGuestRoutes(api, auth)
		r.setupCheckinRoutes(api, auth)
		r.setupSeatingRoutes(api, auth)
		r.setupEntitlementRoutes(api, auth, ownerOnly)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "wedly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "wedly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupGuestRoutes configures guest registry routes
func (r *Router) setupGuestRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	guestRepo := guests.NewRepository(r.db.GetPostgreSQL())
	r.guestService = guests.NewService(guestRepo)
	guestController := guests.NewController(r.guestService)

	guests.SetupGuestRoutes(rg, guestController, auth)
}

// setupCheckinRoutes configures arrival tracking routes
func (r *Router) setupCheckinRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	checkinRepo := checkin.NewRepository(r.db.GetPostgreSQL())
	checkinService := checkin.NewService(checkinRepo, r.guestService, r.publisher, r.log)
	checkinService.SetCacheService(cache.NewService(r.db.GetRedisClient()), r.config.Redis.StatsCacheTTL)
	checkinController := checkin.NewController(checkinService)

	checkin.SetupCheckinRoutes(rg, checkinController, auth)
}

// setupSeatingRoutes configures table and resource assignment routes
func (r *Router) setupSeatingRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	seatingRepo := seating.NewRepository(r.db.GetPostgreSQL())
	locks := lock.NewManager(r.db.GetRedisClient())
	seatingService := seating.NewService(seatingRepo, locks, r.config.Redis.AssignLockTTL, r.log)
	seatingController := seating.NewController(seatingService)

	seating.SetupSeatingRoutes(rg, seatingController, auth)
}

// setupEntitlementRoutes configures benefit quota and redemption routes
func (r *Router) setupEntitlementRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc, ownerOnly gin.HandlerFunc) {
	entRepo := entitlements.NewRepository(r.db.GetPostgreSQL())
	entService := entitlements.NewService(entRepo, r.guestService, r.publisher, r.log)
	entController := entitlements.NewController(entService)

	entitlements.SetupEntitlementRoutes(rg, entController, []gin.HandlerFunc{auth}, ownerOnly)
}
