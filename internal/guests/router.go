package guests

import (
	"github.com/gin-gonic/gin"
)

// SetupGuestRoutes configures guest registration routes. The caller mounts
// the auth middleware; guest CRUD is owner-level work done before the event.
func SetupGuestRoutes(rg *gin.RouterGroup, controller *Controller, authMiddleware ...gin.HandlerFunc) {
	guests := rg.Group("/guests")
	guests.Use(authMiddleware...)
	{
		guests.POST("", controller.CreateGuest)            // POST   /api/v1/guests
		guests.POST("/import", controller.ImportGuests)    // POST   /api/v1/guests/import
		guests.GET("", controller.ListGuests)              // GET    /api/v1/guests?limit=50&offset=0
		guests.GET("/:id", controller.GetGuest)            // GET    /api/v1/guests/:id
		guests.PUT("/:id", controller.UpdateGuest)         // PUT    /api/v1/guests/:id
		guests.DELETE("/:id", controller.DeleteGuest)      // DELETE /api/v1/guests/:id (soft delete)
	}
}
