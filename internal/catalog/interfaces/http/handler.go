package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/inventoryorder/internal/catalog/application"
	"github.com/wyfcoding/inventoryorder/internal/catalog/domain"
	"github.com/wyfcoding/inventoryorder/pkg/config"
	"github.com/wyfcoding/inventoryorder/pkg/logger"
	"github.com/wyfcoding/inventoryorder/pkg/response"
)

// ProductHandler 商品 HTTP 处理器
type ProductHandler struct {
	svc        *application.CatalogService
	pagination config.PaginationConfig
}

// NewProductHandler 创建商品 HTTP 处理器
func NewProductHandler(svc *application.CatalogService, pagination config.PaginationConfig) *ProductHandler {
	return &ProductHandler{svc: svc, pagination: pagination}
}

// RegisterRoutes 注册路由
func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/products")
	{
		api.POST("", h.CreateProduct)
		api.GET("", h.ListProducts)
		api.GET("/:id", h.GetProduct)
		api.PATCH("/:id/price", h.UpdatePrice)
	}
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required,max=255"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" binding:"gte=0"`
}

// ProductResponse 商品响应
type ProductResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	StockQuantity int    `json:"stock_quantity"`
}

// ProductListResponse 分页商品列表响应
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int64             `json:"total"`
	Skip  int               `json:"skip"`
	Limit int               `json:"limit"`
}

// CreateProduct 创建商品
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), req.Name, req.Price, req.StockQuantity)
	if err != nil {
		var appErr *application.Error
		if errors.As(err, &appErr) {
			response.ErrorWithStatus(c, http.StatusBadRequest, appErr.Message)
			return
		}
		logger.Error(c.Request.Context(), "Failed to create product", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "failed to create product")
		return
	}

	response.Created(c, toProductResponse(product))
}

// ListProducts 分页列出商品
func (h *ProductHandler) ListProducts(c *gin.Context) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		response.ErrorWithStatus(c, http.StatusBadRequest, "skip must be a non-negative integer")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.pagination.DefaultPageSize)))
	if err != nil || limit < 1 || limit > h.pagination.MaxPageSize {
		response.ErrorWithStatus(c, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(h.pagination.MaxPageSize))
		return
	}

	products, total, err := h.svc.ListProducts(c.Request.Context(), skip, limit)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list products", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "failed to list products")
		return
	}

	items := make([]ProductResponse, len(products))
	for i, p := range products {
		items[i] = toProductResponse(p)
	}

	response.Success(c, ProductListResponse{
		Items: items,
		Total: total,
		Skip:  skip,
		Limit: limit,
	})
}

// GetProduct 获取单个商品
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get product", "product_id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "failed to get product")
		return
	}
	if product == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "product not found")
		return
	}

	response.Success(c, toProductResponse(product))
}

// UpdatePriceRequest 更新价格请求
type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// UpdatePrice 更新商品价格
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.svc.UpdatePrice(c.Request.Context(), id, req.Price)
	if err != nil {
		var appErr *application.Error
		if errors.As(err, &appErr) {
			response.ErrorWithStatus(c, http.StatusBadRequest, appErr.Message)
			return
		}
		logger.Error(c.Request.Context(), "Failed to update price", "product_id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "failed to update price")
		return
	}
	if product == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "product not found")
		return
	}

	response.Success(c, toProductResponse(product))
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.StockQuantity,
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

var errInvalidID = errors.New("invalid id")
