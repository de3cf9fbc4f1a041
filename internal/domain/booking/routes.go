package booking

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the customer-facing booking lifecycle endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings/my-bookings", h.MyBookings)
	rg.GET("/bookings/:id", h.Get)
	rg.DELETE("/bookings/:id", h.Cancel)
}

// RegisterAdminRoutes wires the privileged override endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings", h.List)
	rg.GET("/bookings/statistics/dashboard", h.Dashboard)
	rg.PATCH("/bookings/:id/status", h.UpdateStatus)
}
