package payment

import "github.com/gin-gonic/gin"

// RegisterWebhookRoutes wires the public gateway callback endpoint.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/notification", h.Notification)
}

// RegisterProtectedRoutes wires the customer-facing payment endpoints.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/payment", h.Initiate)
	rg.GET("/bookings/:id/payment", h.History)
}
