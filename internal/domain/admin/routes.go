package admin

import (
	"github.com/gin-gonic/gin"

	"workshop/internal/domain/booking"
	"workshop/internal/domain/schedule"
	"workshop/internal/domain/technician"
	"workshop/internal/middleware"
)

// Handlers groups the module handlers that expose a privileged surface.
// The admin module adds no lifecycle rules of its own: every override
// goes through the same guards as the customer-triggered transitions,
// it only names the staff entry point distinctly.
type Handlers struct {
	Bookings    *booking.Handler
	Technicians *technician.Handler
	Slots       *schedule.Handler
}

// RegisterRoutes mounts the override surface under rg, gated on the
// admin role. rg is expected to be behind the auth middleware already.
func RegisterRoutes(rg *gin.RouterGroup, h Handlers) {
	adminGroup := rg.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin())
	{
		h.Bookings.RegisterAdminRoutes(adminGroup)
		h.Technicians.RegisterAdminRoutes(adminGroup)
		h.Slots.RegisterAdminRoutes(adminGroup)
	}
}
