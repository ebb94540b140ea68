package entitlements

import (
	"github.com/gin-gonic/gin"
)

// SetupEntitlementRoutes configures benefit redemption and quota admin routes.
// ownerMiddleware additionally restricts quota administration to the event
// owner; redemption itself is capability-checked in the service.
func SetupEntitlementRoutes(rg *gin.RouterGroup, controller *Controller, authMiddleware []gin.HandlerFunc, ownerMiddleware ...gin.HandlerFunc) {
	redeem := rg.Group("/redeem")
	redeem.Use(authMiddleware...)
	{
		redeem.POST("", controller.Redeem)              // POST /api/v1/redeem
		redeem.GET("", controller.History)              // GET  /api/v1/redeem?guest_id=
		redeem.GET("/remaining", controller.Remaining)  // GET  /api/v1/redeem/remaining?guest_id=&benefit_type=
	}

	entitlements := rg.Group("/entitlements")
	entitlements.Use(authMiddleware...)
	{
		entitlements.GET("", controller.ListEntitlements) // GET /api/v1/entitlements

		admin := entitlements.Group("")
		admin.Use(ownerMiddleware...)
		{
			admin.POST("", controller.CreateEntitlement)       // POST  /api/v1/entitlements (owner only)
			admin.PATCH("/:id", controller.UpdateEntitlement)  // PATCH /api/v1/entitlements/:id (owner only)
		}
	}
}
