package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workshop/internal/domain"
	"workshop/internal/domain/schedule"
	"workshop/internal/middleware"
	"workshop/internal/pkg/response"
	"workshop/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /bookings (checkout).
func (h *Handler) Create(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	b, err := h.service.Checkout(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			response.Error(c, http.StatusBadRequest, "EMPTY_CART", "Cart has no line items")
		case errors.Is(err, ErrInvalidLocation):
			response.Error(c, http.StatusBadRequest, "ADDRESS_REQUIRED", "Onsite bookings require an address")
		case errors.Is(err, schedule.ErrSlotUnavailable):
			response.Error(c, http.StatusConflict, "SLOT_UNAVAILABLE", "The selected time slot is fully booked")
		case errors.Is(err, schedule.ErrUnknownSlot):
			response.Error(c, http.StatusBadRequest, "UNKNOWN_SLOT", "Date or time is not a schedulable slot")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	response.Success(c, http.StatusCreated, b)
}

// Get handles GET /bookings/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	b, err := h.service.GetOwned(c.Request.Context(), id, middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Booking belongs to another customer")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, b)
}

// MyBookings handles GET /bookings/my-bookings
func (h *Handler) MyBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, err := h.service.ListByUser(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": rows})
}

// Cancel handles DELETE /bookings/:id
func (h *Handler) Cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	err = h.service.Cancel(c.Request.Context(), id, middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Booking belongs to another customer")
		case errors.Is(err, ErrNotCancellable):
			response.Error(c, http.StatusConflict, "NOT_CANCELLABLE", "Paid, in-progress or completed bookings cannot be cancelled")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed in_progress completed cancelled"`
}

// UpdateStatus handles PATCH /admin/bookings/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	b, err := h.service.SetStatus(c.Request.Context(), id, domain.BookingStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrIllegalTransition):
			response.Error(c, http.StatusConflict, "ILLEGAL_TRANSITION", "Requested status is not reachable from the current one")
		case errors.Is(err, ErrNotCancellable):
			response.Error(c, http.StatusConflict, "NOT_CANCELLABLE", "Paid bookings cannot be cancelled")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, b)
}

// List handles GET /admin/bookings
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	rows, total, err := h.service.List(c.Request.Context(), ListFilters{
		Status:  c.Query("status"),
		Date:    c.Query("date"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": rows, "total": total})
}

// Dashboard handles GET /admin/bookings/statistics/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.service.DashboardStats(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, stats)
}
