package technician

import "github.com/gin-gonic/gin"

// RegisterAdminRoutes wires the staff-only assignment and registry
// endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/assign-technician", h.Assign)
	rg.POST("/technicians", h.Create)
	rg.GET("/technicians", h.List)
	rg.PATCH("/technicians/:id/availability", h.SetAvailability)
}
