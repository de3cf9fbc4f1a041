package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workshop/internal/domain/booking"
	"workshop/internal/middleware"
	"workshop/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Initiate handles POST /bookings/:id/payment
func (h *Handler) Initiate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	result, err := h.service.Initiate(c.Request.Context(), id, middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotFound):
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
		case errors.Is(err, booking.ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Booking belongs to another customer")
		case errors.Is(err, ErrAlreadyPaid):
			response.Error(c, http.StatusConflict, "ALREADY_PAID", "Booking is already paid")
		case errors.Is(err, ErrNotPayable):
			response.Error(c, http.StatusConflict, "NOT_PAYABLE", "Cancelled or completed bookings cannot be paid")
		case errors.Is(err, ErrGatewayUnavailable):
			response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "Payment gateway is unavailable, try again")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Notification handles POST /payments/notification, the gateway
// webhook. Anything short of a signature failure is acknowledged with
// 200 so the gateway does not enter a redelivery storm; dropped events
// are logged inside the service.
func (h *Handler) Notification(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "Unreadable request body")
		return
	}

	var n Notification
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&n); err != nil {
		response.Success(c, http.StatusOK, gin.H{"status": "ignored", "reason": "malformed body"})
		return
	}

	err = h.service.HandleNotification(c.Request.Context(), n, string(raw))
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, ErrInvalidSignature):
		response.Error(c, http.StatusForbidden, "INVALID_SIGNATURE", "Signature verification failed")
	case errors.Is(err, ErrUnknownOrder),
		errors.Is(err, ErrStaleCallback),
		errors.Is(err, ErrAmountMismatch):
		response.Success(c, http.StatusOK, gin.H{"status": "ignored"})
	default:
		// Transient persistence error: let the gateway redeliver.
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// History handles GET /bookings/:id/payment (owner's session history).
func (h *Handler) History(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	rows, err := h.service.ListByBooking(c.Request.Context(), id, middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotFound):
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
		case errors.Is(err, booking.ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Booking belongs to another customer")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": rows})
}
