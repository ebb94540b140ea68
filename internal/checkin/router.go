package checkin

import (
	"github.com/gin-gonic/gin"
)

// SetupCheckinRoutes configures the event-day check-in routes.
func SetupCheckinRoutes(rg *gin.RouterGroup, controller *Controller, authMiddleware ...gin.HandlerFunc) {
	checkin := rg.Group("/checkin")
	checkin.Use(authMiddleware...)
	{
		checkin.POST("", controller.CheckIn)          // POST /api/v1/checkin
		checkin.POST("/undo", controller.UndoCheckIn) // POST /api/v1/checkin/undo (owner only)
		checkin.GET("/search", controller.Search)     // GET  /api/v1/checkin/search?q=
		checkin.GET("/stats", controller.Stats)       // GET  /api/v1/checkin/stats
	}
}
