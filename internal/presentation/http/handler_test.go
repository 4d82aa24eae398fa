package httppresentation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appwarehouse "github.com/martingallagher/warehouse/internal/application/warehouse"
	"github.com/martingallagher/warehouse/internal/domain/identity"
	"github.com/martingallagher/warehouse/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	managerID  = "manager"
	customerID = "customer"
	strangerID = "other-customer"
)

func newTestHandler() http.Handler {
	svc := appwarehouse.NewService(
		identity.NewAccessControl(managerID),
		memory.NewCatalogRepository(),
		memory.NewOrderRepository(),
		nil,
		nil,
	)
	return NewHandler(svc, nil).Router()
}

func doJSON(t *testing.T, h http.Handler, method, target, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if caller != "" {
		req.Header.Set(headerCallerID, caller)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func TestAddProductAndGetProduct(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/product", managerID, map[string]any{
		"price": 1000000, "stock": 1, "name": "Widget A",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ProductID int64 `json:"product_id"`
	}
	decodeBody(t, rec, &created)
	assert.Equal(t, int64(0), created.ProductID)

	rec = doJSON(t, h, http.MethodGet, "/product?id=0", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var product struct {
		Price  int64  `json:"price"`
		Stock  int64  `json:"stock"`
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}
	decodeBody(t, rec, &product)
	assert.Equal(t, int64(1000000), product.Price)
	assert.Equal(t, int64(1), product.Stock)
	assert.Equal(t, "Widget A", product.Name)
	assert.True(t, product.Active)
}

func TestAddProductForbiddenForCustomer(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/product", customerID, map[string]any{
		"price": 700000, "stock": 1, "name": "Widget C",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "Only the warehouse manager can perform this function.", body.Error)
}

func TestSetProductStock(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/product", managerID, map[string]any{
		"price": 1000000, "stock": 1, "name": "Widget",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/product/stock", managerID, map[string]any{
		"product_id": 0, "stock": 99,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/product/stock", customerID, map[string]any{
		"product_id": 0, "stock": 1,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNewOrderFlow(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/product", managerID, map[string]any{
		"price": 10000, "stock": 10, "name": "Widget",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Underpayment.
	rec = doJSON(t, h, http.MethodPost, "/order", customerID, map[string]any{
		"product_id": 0, "payment": 1000,
	})
	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	// Exact payment.
	rec = doJSON(t, h, http.MethodPost, "/order", customerID, map[string]any{
		"product_id": 0, "payment": 10000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		OrderID int64 `json:"order_id"`
	}
	decodeBody(t, rec, &created)
	assert.Equal(t, int64(0), created.OrderID)

	// Another customer may not view the order.
	rec = doJSON(t, h, http.MethodGet, "/order?id=0", strangerID, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// The order's customer may.
	rec = doJSON(t, h, http.MethodGet, "/order?id=0", customerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var order struct {
		ProductID int64  `json:"product_id"`
		Customer  string `json:"customer"`
		Shipped   bool   `json:"shipped"`
	}
	decodeBody(t, rec, &order)
	assert.Equal(t, customerID, order.Customer)
	assert.False(t, order.Shipped)

	// Stock decremented; balance visible to the manager.
	rec = doJSON(t, h, http.MethodGet, "/product?id=0", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var product struct {
		Stock int64 `json:"stock"`
	}
	decodeBody(t, rec, &product)
	assert.Equal(t, int64(9), product.Stock)

	rec = doJSON(t, h, http.MethodGet, "/balance", managerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance struct {
		Held int64 `json:"held"`
	}
	decodeBody(t, rec, &balance)
	assert.Equal(t, int64(10000), balance.Held)

	rec = doJSON(t, h, http.MethodGet, "/balance", customerID, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNewOrderOutOfStock(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/product", managerID, map[string]any{
		"price": 10000, "stock": 0, "name": "Widget",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/order", customerID, map[string]any{
		"product_id": 0, "payment": 10000,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "Product is out of stock.", body.Error)
}

func TestShipOrder(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/product", managerID, map[string]any{
		"price": 10000, "stock": 10, "name": "Widget",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/order", customerID, map[string]any{
		"product_id": 0, "payment": 10000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/order/ship", customerID, map[string]any{
		"order_id": 0,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/order/ship", managerID, map[string]any{
		"order_id": 0,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/order?id=0", customerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var order struct {
		Shipped bool `json:"shipped"`
	}
	decodeBody(t, rec, &order)
	assert.True(t, order.Shipped)
}

func TestUnknownIDsReturnNotFound(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodGet, "/product?id=3", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/order?id=3", managerID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/order/ship", managerID, map[string]any{
		"order_id": 3,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodGet, "/product/stock", managerID, nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBadRequest(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodGet, "/product", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/product", bytes.NewBufferString("{not json"))
	req.Header.Set(headerCallerID, managerID)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	require.Equal(t, http.StatusBadRequest, rw.Code)

	rec = doJSON(t, h, http.MethodPost, "/product", managerID, map[string]any{
		"price": -1, "stock": 1, "name": "Widget",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestHandler()

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
