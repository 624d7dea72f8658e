package handlers

import (
	"net/http"

	"github.com/trunghai04/webmoi-sub001/internal/dto"
	"github.com/trunghai04/webmoi-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartHandler struct {
	cart service.CartService
	log  *zap.Logger
}

func NewCartHandler(cart service.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, log: log}
}

// List godoc
// @Summary Корзина
// @Description Позиции с текущими ценами и остатками
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CartResponse
// @Router /api/v1/cart [get]
func (h *CartHandler) List(c *gin.Context) {
	cart, err := h.cart.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

// Add godoc
// @Summary Добавить в корзину
// @Description Количество складывается с уже лежащим в корзине и не может превысить остаток
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AddCartItemRequest true "Товар и количество"
// @Success 200 {object} dto.CartItemResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные"
// @Failure 404 {object} dto.NotFoundErrorResponse "Товар не найден или недоступен"
// @Failure 409 {object} dto.InsufficientStockErrorResponse "Недостаточно товара"
// @Router /api/v1/cart/items [post]
func (h *CartHandler) Add(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid add to cart request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
		return
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		badRequest(c, "product_id", "must be a valid uuid")
		return
	}

	item, err := h.cart.Add(c.Request.Context(), pid, req.Quantity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.CartItemResponse{ProductID: item.ProductID.String(), Quantity: item.Quantity})
}

// SetQuantity godoc
// @Summary Изменить количество
// @Description quantity <= 0 удаляет позицию
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product_id path string true "ID товара"
// @Param body body dto.SetCartQuantityRequest true "Новое количество"
// @Success 200 {object} dto.CartItemResponse
// @Success 204 "Позиция удалена"
// @Failure 409 {object} dto.InsufficientStockErrorResponse "Недостаточно товара"
// @Router /api/v1/cart/items/{product_id} [put]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	pid, ok := productIDParam(c)
	if !ok {
		return
	}
	var req dto.SetCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid set quantity request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
		return
	}

	item, err := h.cart.SetQuantity(c.Request.Context(), pid, req.Quantity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if item == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.CartItemResponse{ProductID: item.ProductID.String(), Quantity: item.Quantity})
}

// Remove godoc
// @Summary Удалить позицию
// @Tags cart
// @Security BearerAuth
// @Param product_id path string true "ID товара"
// @Success 204 "Удалено"
// @Failure 404 {object} dto.NotFoundErrorResponse "Позиции нет в корзине"
// @Router /api/v1/cart/items/{product_id} [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	pid, ok := productIDParam(c)
	if !ok {
		return
	}
	if err := h.cart.Remove(c.Request.Context(), pid); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear godoc
// @Summary Очистить корзину
// @Tags cart
// @Security BearerAuth
// @Success 204 "Очищено"
// @Router /api/v1/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context()); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Validate godoc
// @Summary Проверка корзины перед оформлением
// @Description Ничего не меняет; перечисляет недоступные товары и нехватку остатков
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CartValidationResponse
// @Router /api/v1/cart/validate [get]
func (h *CartHandler) Validate(c *gin.Context) {
	v, err := h.cart.Validate(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toCartValidationResponse(v))
}

func productIDParam(c *gin.Context) (uuid.UUID, bool) {
	pid, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		badRequest(c, "product_id", "must be a valid uuid")
		return uuid.Nil, false
	}
	return pid, true
}
