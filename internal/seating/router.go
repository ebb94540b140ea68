package seating

import (
	"github.com/gin-gonic/gin"
)

// SetupSeatingRoutes configures seating resource and assignment routes.
func SetupSeatingRoutes(rg *gin.RouterGroup, controller *Controller, authMiddleware ...gin.HandlerFunc) {
	seating := rg.Group("/seating")
	seating.Use(authMiddleware...)
	{
		// Resource management (owner)
		seating.POST("/resources", controller.CreateResource)    // POST /api/v1/seating/resources
		seating.GET("/resources", controller.ListResources)      // GET  /api/v1/seating/resources
		seating.GET("/resources/:id", controller.GetResource)    // GET  /api/v1/seating/resources/:id
		seating.PUT("/resources/:id", controller.UpdateResource) // PUT  /api/v1/seating/resources/:id

		// Assignment
		seating.POST("/assign", controller.Assign)                          // POST /api/v1/seating/assign
		seating.POST("/unassign", controller.Unassign)                      // POST /api/v1/seating/unassign
		seating.PUT("/resources/:id/availability", controller.Availability) // PUT  /api/v1/seating/resources/:id/availability
		seating.POST("/auto-assign", controller.AutoAssign)                 // POST /api/v1/seating/auto-assign (owner only)
	}
}
