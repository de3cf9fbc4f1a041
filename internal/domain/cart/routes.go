package cart

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the cart endpoints; the group is expected to be
// behind auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cart", h.Get)
	rg.POST("/cart/items", h.AddItem)
	rg.DELETE("/cart/items/:kind/:index", h.RemoveItem)
	rg.PATCH("/cart/items/:index/quantity", h.UpdateQuantity)
}
