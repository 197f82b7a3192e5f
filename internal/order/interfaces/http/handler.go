package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/inventoryorder/internal/order/application"
	"github.com/wyfcoding/inventoryorder/internal/order/domain"
	"github.com/wyfcoding/inventoryorder/pkg/logger"
	"github.com/wyfcoding/inventoryorder/pkg/response"
)

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	cmd   *application.OrderCommandService
	query *application.OrderQueryService
}

// NewOrderHandler 创建订单 HTTP 处理器
func NewOrderHandler(cmd *application.OrderCommandService, query *application.OrderQueryService) *OrderHandler {
	return &OrderHandler{cmd: cmd, query: query}
}

// RegisterRoutes 注册路由
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/orders")
	{
		api.POST("", h.CreateOrder)
		api.GET("/:id", h.GetOrder)
		api.PATCH("/:id/status", h.UpdateStatus)
	}
}

// OrderItemRequest 下单请求行
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required,gt=0"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemResponse 订单项响应
type OrderItemResponse struct {
	ID           uint   `json:"id"`
	ProductID    uint   `json:"product_id"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder string `json:"price_at_order"`
}

// OrderResponse 订单响应
type OrderResponse struct {
	ID        uint                `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	Status    domain.OrderStatus  `json:"status"`
	Items     []OrderItemResponse `json:"items"`
}

// CreateOrder 创建订单
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := application.CreateOrderCommand{
		Items: make([]application.OrderItemInput, len(req.Items)),
	}
	for i, item := range req.Items {
		cmd.Items[i] = application.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	order, err := h.cmd.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}

	response.Created(c, toOrderResponse(order))
}

// GetOrder 获取订单
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.query.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}

	response.Success(c, toOrderResponse(order))
}

// UpdateStatusRequest 更新订单状态请求
type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required,oneof=pending shipped cancelled"`
}

// UpdateStatus 更新订单状态
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.cmd.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}

	response.Success(c, toOrderResponse(order))
}

func (h *OrderHandler) orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid order id")
		return 0, false
	}
	return uint(id), true
}

// writeOrderError 将领域错误映射为稳定的 HTTP 状态
// 客户端错误 400、未找到 404、可重试的竞争冲突 409
func (h *OrderHandler) writeOrderError(c *gin.Context, err error) {
	var productNotFound *domain.ProductNotFoundError
	var orderNotFound *domain.OrderNotFoundError
	var insufficient *domain.InsufficientStockError
	var invalidTransition *domain.InvalidTransitionError
	var contention *domain.ContentionError

	switch {
	case errors.Is(err, domain.ErrEmptyOrder), errors.Is(err, domain.ErrInvalidQuantity):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &insufficient), errors.As(err, &invalidTransition):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &productNotFound), errors.As(err, &orderNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error())
	case errors.As(err, &contention):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error())
	default:
		logger.Error(c.Request.Context(), "Order operation failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal server error")
	}
}

func toOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder.StringFixed(2),
		}
	}
	return OrderResponse{
		ID:        order.ID,
		CreatedAt: order.CreatedAt,
		Status:    order.Status,
		Items:     items,
	}
}
