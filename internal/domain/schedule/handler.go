package schedule

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"workshop/internal/pkg/response"
	"workshop/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListSlots handles GET /slots?date=2006-01-02
func (h *Handler) ListSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, http.StatusBadRequest, "MISSING_DATE", "date query parameter is required")
		return
	}

	views, err := h.service.ListSlots(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, ErrUnknownSlot) {
			response.Error(c, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"date": date, "slots": views})
}

type SetCapacityRequest struct {
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	MaxBookings int    `json:"max_bookings" validate:"required,gte=1"`
}

// SetCapacity handles PUT /admin/slots/capacity
func (h *Handler) SetCapacity(c *gin.Context) {
	var req SetCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	slot, err := h.service.SetCapacity(c.Request.Context(), req.Date, req.Time, req.MaxBookings)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownSlot):
			response.Error(c, http.StatusBadRequest, "UNKNOWN_SLOT", "Date or time is not a schedulable slot")
		case errors.Is(err, ErrInvalidCapacity):
			response.Error(c, http.StatusBadRequest, "INVALID_CAPACITY", "Capacity must be at least 1")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, slot)
}

// RegisterRoutes wires the customer-facing availability endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/slots", h.ListSlots)
}

// RegisterAdminRoutes wires capacity correction under the admin group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PUT("/slots/capacity", h.SetCapacity)
}
