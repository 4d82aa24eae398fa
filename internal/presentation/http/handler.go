package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	appwarehouse "github.com/martingallagher/warehouse/internal/application/warehouse"
	domcatalog "github.com/martingallagher/warehouse/internal/domain/catalog"
	"github.com/martingallagher/warehouse/internal/domain/identity"
	domorder "github.com/martingallagher/warehouse/internal/domain/order"
	"github.com/martingallagher/warehouse/internal/domain/payment"
	"github.com/martingallagher/warehouse/internal/observability"
	"github.com/martingallagher/warehouse/internal/observability/logctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	headerCallerID       = "X-Caller-ID"
)

// Handler exposes the warehouse ledger over JSON. The caller identity of
// every request is taken from the X-Caller-ID header; the attached payment
// for order creation travels in the request body. Both stand in for the
// execution environment that supplies them to the ledger.
type Handler struct {
	service *appwarehouse.Service
	log     observability.Logger
	tel     observability.Telemetry
}

func NewHandler(service *appwarehouse.Service, tel observability.Telemetry) *Handler {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Handler{
		service: service,
		log:     tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:     tel,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// Wire each route with middlewares:
	// Trace → ObservabilityMiddleware (request logger) → Access log → Handler
	h.muxHandle(mux, "/product", map[string]http.HandlerFunc{
		http.MethodPost: h.handleAddProduct,
		http.MethodGet:  h.handleGetProduct,
	})
	h.muxHandle(mux, "/product/stock", map[string]http.HandlerFunc{
		http.MethodPost: h.handleSetProductStock,
	})
	h.muxHandle(mux, "/order", map[string]http.HandlerFunc{
		http.MethodPost: h.handleNewOrder,
		http.MethodGet:  h.handleGetOrder,
	})
	h.muxHandle(mux, "/order/ship", map[string]http.HandlerFunc{
		http.MethodPost: h.handleShipOrder,
	})
	h.muxHandle(mux, "/balance", map[string]http.HandlerFunc{
		http.MethodGet: h.handleBalance,
	})
	h.muxHandle(mux, "/health", map[string]http.HandlerFunc{
		http.MethodGet: h.handleHealth,
	})

	return mux
}

func (h *Handler) muxHandle(mux *http.ServeMux, route string, methods map[string]http.HandlerFunc) {
	mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		handler, ok := methods[r.Method]
		if !ok {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Store stable route template for low-cardinality labels
		ctx := contextWithRoute(r.Context(), route)
		r = r.WithContext(ctx)

		wrapped := h.withTrace(
			ObservabilityMiddleware(
				logctx.FromOr(ctx, h.log),
				func(r *http.Request) string {
					return r.Header.Get(headerRequestID)
				},
				h.tel,
			)(
				h.withAccessLog(handler),
			),
		)
		wrapped.ServeHTTP(w, r)
	})
}

func caller(r *http.Request) identity.Actor {
	return identity.Actor(r.Header.Get(headerCallerID))
}

type addProductRequest struct {
	Price int64  `json:"price"`
	Stock int64  `json:"stock"`
	Name  string `json:"name"`
}

type addProductResponse struct {
	ProductID int64 `json:"product_id"`
}

func (h *Handler) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := h.service.AddProduct(r.Context(), caller(r), req.Price, req.Stock, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, addProductResponse{ProductID: id})
}

type setProductStockRequest struct {
	ProductID int64 `json:"product_id"`
	Stock     int64 `json:"stock"`
}

func (h *Handler) handleSetProductStock(w http.ResponseWriter, r *http.Request) {
	var req setProductStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.service.SetProductStock(r.Context(), caller(r), req.ProductID, req.Stock); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type productResponse struct {
	ProductID int64  `json:"product_id"`
	Price     int64  `json:"price"`
	Stock     int64  `json:"stock"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productResponse{
		ProductID: product.ID,
		Price:     product.Price,
		Stock:     product.Stock,
		Name:      product.Name,
		Active:    product.Active,
	})
}

type newOrderRequest struct {
	ProductID int64 `json:"product_id"`
	Payment   int64 `json:"payment"`
}

type newOrderResponse struct {
	OrderID int64 `json:"order_id"`
}

func (h *Handler) handleNewOrder(w http.ResponseWriter, r *http.Request) {
	var req newOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := h.service.NewOrder(r.Context(), caller(r), req.ProductID, req.Payment)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newOrderResponse{OrderID: id})
}

type orderResponse struct {
	OrderID   int64  `json:"order_id"`
	ProductID int64  `json:"product_id"`
	Customer  string `json:"customer"`
	Shipped   bool   `json:"shipped"`
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entity, err := h.service.GetOrder(r.Context(), caller(r), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{
		OrderID:   entity.ID,
		ProductID: entity.ProductID,
		Customer:  entity.Customer.String(),
		Shipped:   entity.Shipped,
	})
}

type shipOrderRequest struct {
	OrderID int64 `json:"order_id"`
}

func (h *Handler) handleShipOrder(w http.ResponseWriter, r *http.Request) {
	var req shipOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.service.ShipOrder(r.Context(), caller(r), req.OrderID); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type balanceResponse struct {
	Held int64 `json:"held"`
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	if caller(r) != h.service.Manager() {
		writeError(w, http.StatusForbidden, identity.ErrManagerOnly)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Held: h.service.Balance()})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger already injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C propagation.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer("warehouse.http")
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		spanName := routeFromContext(parentCtx)
		if spanName == "unknown" {
			spanName = r.Method + " " + r.URL.Path
		}

		ctxWithSpan, span := tracer.Start(parentCtx,
			spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routeFromContext(parentCtx)),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctxWithSpan))
	})
}

func queryID(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, errors.New("http: id query parameter is required")
	}
	return strconv.ParseInt(raw, 10, 64)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrManagerOnly),
		errors.Is(err, domorder.ErrViewRestricted):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, domcatalog.ErrNotFound),
		errors.Is(err, domorder.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domcatalog.ErrOutOfStock):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, payment.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, err)
	case errors.Is(err, domcatalog.ErrNegativePrice),
		errors.Is(err, domcatalog.ErrNegativeStock),
		errors.Is(err, domcatalog.ErrEmptyName):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

type routeKey struct{}

// contextWithRoute stores the stable route template in the context so downstream
// metrics/logging can rely on low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
