package handlers

import (
	"net/http"
	"strconv"

	"github.com/trunghai04/webmoi-sub001/internal/dto"
	"github.com/trunghai04/webmoi-sub001/internal/models"
	"github.com/trunghai04/webmoi-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// CreateOrder godoc
// @Summary Оформление заказа
// @Description Атомарно создаёт заказ, списывает остатки и очищает купленные позиции корзины
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body dto.CreateOrderRequest true "Позиции, адрес и суммы"
// @Success 201 {object} dto.CreateOrderResponse "Заказ создан"
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Нет токена"
// @Failure 404 {object} dto.NotFoundErrorResponse "Товар не найден или недоступен"
// @Failure 409 {object} dto.InsufficientStockErrorResponse "Недостаточно товара"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid create order request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
		return
	}
	in, err := toPlaceOrderInput(req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	res, err := h.orders.PlaceOrder(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreateOrderResponse{
		OrderID:     res.OrderID.String(),
		OrderNumber: res.OrderNumber,
		Total:       res.Total,
	})
}

// ListOrders godoc
// @Summary Список заказов
// @Description Покупатель и partner видят свои заказы, admin может фильтровать по user_id
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param page query int false "Номер страницы (с 1)"
// @Param limit query int false "Размер страницы (до 100)"
// @Param status query string false "processing | shipping | delivered | cancelled"
// @Param user_id query string false "Фильтр по покупателю (только admin)"
// @Success 200 {object} dto.OrderListResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные параметры"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Нет токена"
// @Router /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var f service.ListFilter
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "page", "must be an integer")
			return
		}
		f.Page = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "limit", "must be an integer")
			return
		}
		f.Limit = n
	}
	if v := c.Query("status"); v != "" {
		st := models.OrderStatus(v)
		f.Status = &st
	}
	if v := c.Query("user_id"); v != "" {
		uid, err := uuid.Parse(v)
		if err != nil {
			badRequest(c, "user_id", "must be a valid uuid")
			return
		}
		f.UserID = &uid
	}

	page, err := h.orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toOrderListResponse(page))
}

// GetOrder godoc
// @Summary Детали заказа
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заказа"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}
	d, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(d.Order, &d.Address))
}

// CancelOrder godoc
// @Summary Отмена заказа
// @Description Возвращает остатки на склад ровно один раз; доступно из processing и shipping
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заказа"
// @Param body body dto.CancelOrderRequest false "Причина отмены"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Failure 409 {object} dto.ConflictErrorResponse "Заказ нельзя отменить"
// @Router /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}
	var req dto.CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.log.Warn("Invalid cancel order request", zap.Error(err))
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
			return
		}
	}

	o, err := h.orders.CancelOrder(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o, nil))
}

// UpdateStatus godoc
// @Summary Смена статуса заказа
// @Description Только admin/partner; переходы processing→shipping→delivered, отмена возвращает остатки
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заказа"
// @Param body body dto.UpdateOrderStatusRequest true "Новый статус"
// @Success 200 {object} dto.OrderResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse "Недостаточно прав"
// @Failure 409 {object} dto.ConflictErrorResponse "Недопустимый переход"
// @Router /api/v1/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid update status request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{
			{Field: "status", Message: "is required", Tag: "required"},
		}))
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), service.UpdateStatusInput{
		OrderID:        id,
		Status:         models.OrderStatus(req.Status),
		TrackingNumber: req.TrackingNumber,
		Note:           req.Note,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o, nil))
}

// Stats godoc
// @Summary Статистика заказов
// @Description Admin получает статистику по всем заказам, остальные по своим
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.OrderStatsResponse
// @Router /api/v1/orders/stats [get]
func (h *OrderHandler) Stats(c *gin.Context) {
	s, err := h.orders.Stats(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toStatsResponse(s))
}

func (h *OrderHandler) orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id", "must be a valid uuid")
		return uuid.Nil, false
	}
	return id, true
}
