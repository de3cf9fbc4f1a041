package cart

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workshop/internal/domain"
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

type AddItemRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=sparepart service"`
	ItemID   int64  `json:"item_id" validate:"required,gt=0"`
	Quantity int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// AddItem handles POST /cart/items
func (h *Handler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	line, err := h.service.AddItem(c.Request.Context(), middleware.UserID(c), domain.ItemKind(req.Kind), req.ItemID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateItem):
			response.Error(c, http.StatusConflict, "DUPLICATE_ITEM", "Service is already in the cart")
		case errors.Is(err, ErrItemNotFound):
			response.Error(c, http.StatusNotFound, "ITEM_NOT_FOUND", "Catalog item not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	response.Success(c, http.StatusCreated, line)
}

// RemoveItem handles DELETE /cart/items/:kind/:index
func (h *Handler) RemoveItem(c *gin.Context) {
	kind := domain.ItemKind(c.Param("kind"))
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_INDEX", "Index must be an integer")
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), middleware.UserID(c), kind, index); err != nil {
		switch {
		case errors.Is(err, ErrInvalidKind):
			response.Error(c, http.StatusBadRequest, "INVALID_KIND", "Kind must be sparepart or service")
		case errors.Is(err, ErrLineNotFound):
			response.Error(c, http.StatusNotFound, "LINE_NOT_FOUND", "No cart line at that index")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// UpdateQuantity handles PATCH /cart/items/:index/quantity
func (h *Handler) UpdateQuantity(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_INDEX", "Index must be an integer")
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	line, err := h.service.UpdateQuantity(c.Request.Context(), middleware.UserID(c), index, req.Delta)
	if err != nil {
		if errors.Is(err, ErrLineNotFound) {
			response.Error(c, http.StatusNotFound, "LINE_NOT_FOUND", "No cart line at that index")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	response.Success(c, http.StatusOK, line)
}

// Get handles GET /cart
func (h *Handler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, view)
}
