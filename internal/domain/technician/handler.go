package technician

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workshop/internal/domain"
	"workshop/internal/domain/booking"
	"workshop/internal/pkg/response"
	"workshop/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type AssignRequest struct {
	// TechnicianID null clears the assignment.
	TechnicianID *int64 `json:"technician_id"`
}

// Assign handles POST /admin/bookings/:id/assign-technician
func (h *Handler) Assign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	b, err := h.service.Assign(c.Request.Context(), id, req.TechnicianID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotFound):
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "TECHNICIAN_NOT_FOUND", "Technician not found")
		case errors.Is(err, ErrBookingClosed):
			response.Error(c, http.StatusConflict, "BOOKING_CLOSED", "Completed or cancelled bookings cannot be reassigned")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, b)
}

type CreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone"`
	Specialties string `json:"specialties"`
}

// Create handles POST /admin/technicians
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	t := &domain.Technician{
		Name:        req.Name,
		Phone:       req.Phone,
		Specialties: req.Specialties,
		IsAvailable: true,
	}
	if err := h.service.Create(c.Request.Context(), t); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, t)
}

// List handles GET /admin/technicians
func (h *Handler) List(c *gin.Context) {
	views, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"technicians": views})
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// SetAvailability handles PATCH /admin/technicians/:id/availability
func (h *Handler) SetAvailability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid technician ID")
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAvailable == nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "is_available boolean is required")
		return
	}

	if err := h.service.SetAvailability(c.Request.Context(), id, *req.IsAvailable); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "TECHNICIAN_NOT_FOUND", "Technician not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}
