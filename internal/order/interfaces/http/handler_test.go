package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/wyfcoding/inventoryorder/internal/catalog/domain"
	catalogmessaging "github.com/wyfcoding/inventoryorder/internal/catalog/infrastructure/messaging"
	catalogmysql "github.com/wyfcoding/inventoryorder/internal/catalog/infrastructure/persistence/mysql"
	catalogredis "github.com/wyfcoding/inventoryorder/internal/catalog/infrastructure/persistence/redis"
	"github.com/wyfcoding/inventoryorder/internal/order/application"
	"github.com/wyfcoding/inventoryorder/internal/order/domain"
	ordermessaging "github.com/wyfcoding/inventoryorder/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/inventoryorder/internal/order/infrastructure/persistence/mysql"
	"github.com/wyfcoding/inventoryorder/pkg/db"
	"github.com/wyfcoding/inventoryorder/pkg/metrics"
	"github.com/wyfcoding/inventoryorder/pkg/response"
)

type handlerTestEnv struct {
	router   *gin.Engine
	products catalogdomain.ProductRepository
}

func newHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.Init(db.Config{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, database.AutoMigrate(
		&catalogdomain.Product{},
		&domain.Order{},
		&domain.OrderItem{},
	))

	products := catalogmysql.NewProductRepository(database.DB)
	orders := ordermysql.NewOrderRepository(database.DB)
	cmd := application.NewOrderCommandService(
		orders,
		products,
		catalogredis.NoopCache{},
		ordermessaging.NoopPublisher{},
		catalogmessaging.NoopPublisher{},
		metrics.NoopCollector{},
		database.DB,
	)
	query := application.NewOrderQueryService(orders)

	router := gin.New()
	NewOrderHandler(cmd, query).RegisterRoutes(router.Group(""))

	return &handlerTestEnv{router: router, products: products}
}

func (e *handlerTestEnv) createProduct(t *testing.T, price string, stock int) *catalogdomain.Product {
	t.Helper()
	p := &catalogdomain.Product{
		Name:          "widget",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, e.products.Save(context.Background(), p))
	return p
}

func (e *handlerTestEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) response.Body {
	t.Helper()
	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateOrderEndpoint(t *testing.T) {
	env := newHandlerTestEnv(t)
	p := env.createProduct(t, "9.99", 10)

	w := env.do(http.MethodPost, "/api/v1/orders",
		fmt.Sprintf(`{"items":[{"product_id":%d,"quantity":2}]}`, p.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var order OrderResponse
	require.NoError(t, json.Unmarshal(data, &order))
	assert.NotZero(t, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "9.99", order.Items[0].PriceAtOrder)
}

func TestCreateOrderEndpointErrors(t *testing.T) {
	env := newHandlerTestEnv(t)
	p := env.createProduct(t, "1.00", 3)

	t.Run("malformed body", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/orders", `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty items", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/orders", `{"items":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/orders",
			fmt.Sprintf(`{"items":[{"product_id":%d,"quantity":0}]}`, p.ID))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/orders",
			`{"items":[{"product_id":424242,"quantity":1}]}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/orders",
			fmt.Sprintf(`{"items":[{"product_id":%d,"quantity":99}]}`, p.ID))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody(t, w).Message, "insufficient stock")
	})
}

func TestGetOrderEndpoint(t *testing.T) {
	env := newHandlerTestEnv(t)
	p := env.createProduct(t, "5.00", 10)

	created := env.do(http.MethodPost, "/api/v1/orders",
		fmt.Sprintf(`{"items":[{"product_id":%d,"quantity":1}]}`, p.ID))
	require.Equal(t, http.StatusCreated, created.Code)

	var order OrderResponse
	data, _ := json.Marshal(decodeBody(t, created).Data)
	require.NoError(t, json.Unmarshal(data, &order))

	w := env.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)

	t.Run("not found", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/orders/424242", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/orders/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// 竞争冲突映射为 409，客户端据此重试
func TestOrderErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &OrderHandler{}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"contention", &domain.ContentionError{Cause: catalogdomain.ErrStockGuardFailed}, http.StatusConflict},
		{"empty order", domain.ErrEmptyOrder, http.StatusBadRequest},
		{"invalid quantity", domain.ErrInvalidQuantity, http.StatusBadRequest},
		{"insufficient stock", &domain.InsufficientStockError{ProductID: 1, Available: 0, Requested: 1}, http.StatusBadRequest},
		{"invalid transition", &domain.InvalidTransitionError{From: domain.OrderStatusShipped, To: domain.OrderStatusCancelled}, http.StatusBadRequest},
		{"product not found", &domain.ProductNotFoundError{ProductID: 1}, http.StatusNotFound},
		{"order not found", &domain.OrderNotFoundError{OrderID: 1}, http.StatusNotFound},
		{"unexpected", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)

			handler.writeOrderError(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	env := newHandlerTestEnv(t)
	p := env.createProduct(t, "5.00", 10)

	newOrderID := func(t *testing.T) uint {
		w := env.do(http.MethodPost, "/api/v1/orders",
			fmt.Sprintf(`{"items":[{"product_id":%d,"quantity":1}]}`, p.ID))
		require.Equal(t, http.StatusCreated, w.Code)
		var order OrderResponse
		data, _ := json.Marshal(decodeBody(t, w).Data)
		require.NoError(t, json.Unmarshal(data, &order))
		return order.ID
	}

	t.Run("ship pending order", func(t *testing.T) {
		id := newOrderID(t)
		w := env.do(http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", id),
			`{"status":"shipped"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var order OrderResponse
		data, _ := json.Marshal(decodeBody(t, w).Data)
		require.NoError(t, json.Unmarshal(data, &order))
		assert.Equal(t, domain.OrderStatusShipped, order.Status)
	})

	t.Run("invalid transition", func(t *testing.T) {
		id := newOrderID(t)
		w := env.do(http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", id),
			`{"status":"cancelled"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", id),
			`{"status":"shipped"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown status rejected by binding", func(t *testing.T) {
		id := newOrderID(t)
		w := env.do(http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", id),
			`{"status":"returned"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("order not found", func(t *testing.T) {
		w := env.do(http.MethodPatch, "/api/v1/orders/424242/status",
			`{"status":"shipped"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
