package warehouse

import (
	"context"
	"sync"
	"time"

	domcatalog "github.com/martingallagher/warehouse/internal/domain/catalog"
	"github.com/martingallagher/warehouse/internal/domain/identity"
	domorder "github.com/martingallagher/warehouse/internal/domain/order"
	domoutbox "github.com/martingallagher/warehouse/internal/domain/outbox"
	"github.com/martingallagher/warehouse/internal/domain/payment"
	"github.com/martingallagher/warehouse/internal/observability"
	"github.com/martingallagher/warehouse/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	componentService = "warehouse_service"
	spanPrefix       = "UC."
	publishTimeout   = 300 * time.Millisecond

	useCaseAddProduct      = "warehouse.add_product"
	useCaseSetProductStock = "warehouse.set_product_stock"
	useCaseGetProduct      = "warehouse.get_product"
	useCaseNewOrder        = "warehouse.new_order"
	useCaseGetOrder        = "warehouse.get_order"
	useCaseShipOrder       = "warehouse.ship_order"
)

// Service is the single warehouse ledger: the product catalog, the order
// ledger, the manager identity, and the held balance, mutated only through
// its entry points. Each mutating entry point runs as one atomic unit under
// the service mutex; all preconditions are checked before any state changes.
type Service struct {
	mu        sync.Mutex
	access    *identity.AccessControl
	products  domcatalog.Repository
	orders    domorder.Repository
	balance   payment.Balance
	publisher domoutbox.Publisher
	log       observability.Logger
	tel       observability.Telemetry
}

func NewService(
	access *identity.AccessControl,
	products domcatalog.Repository,
	orders domorder.Repository,
	publisher domoutbox.Publisher,
	tel observability.Telemetry,
) *Service {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Service{
		access:    access,
		products:  products,
		orders:    orders,
		publisher: publisher,
		log:       tel.Logger().With(observability.F("component", componentService)),
		tel:       tel,
	}
}

// AddProduct appends a product to the catalog and returns its id.
// Manager only.
func (s *Service) AddProduct(ctx context.Context, caller identity.Actor, price, stock int64, name string) (_ int64, err error) {
	ctx, done := s.instrument(ctx, useCaseAddProduct,
		attribute.String("product.name", name),
	)
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.access.RequireManager(caller); err != nil {
		return 0, err
	}

	product, err := domcatalog.New(price, stock, name)
	if err != nil {
		return 0, err
	}

	id, err := s.products.Append(ctx, product)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, domcatalog.NewNewProductEvent(product))
	return id, nil
}

// SetProductStock replaces a product's stock count. Manager only.
func (s *Service) SetProductStock(ctx context.Context, caller identity.Actor, productID, stock int64) (err error) {
	ctx, done := s.instrument(ctx, useCaseSetProductStock,
		attribute.Int64("product.id", productID),
	)
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.access.RequireManager(caller); err != nil {
		return err
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return err
	}
	if err = product.SetStock(stock); err != nil {
		return err
	}

	return s.products.Update(ctx, product)
}

// GetProduct returns a product by id. Callable by anyone.
func (s *Service) GetProduct(ctx context.Context, productID int64) (_ *domcatalog.Product, err error) {
	ctx, done := s.instrument(ctx, useCaseGetProduct,
		attribute.Int64("product.id", productID),
	)
	defer func() { done(err) }()

	return s.products.Get(ctx, productID)
}

// NewOrder captures a payment against a product, decrements its stock by
// one, and appends a new unshipped order. Callable by anyone. Preconditions
// are checked in contract order: existence, stock, funds; nothing is
// persisted until all of them hold.
func (s *Service) NewOrder(ctx context.Context, caller identity.Actor, productID, attachedPayment int64) (_ int64, err error) {
	ctx, done := s.instrument(ctx, useCaseNewOrder,
		attribute.Int64("product.id", productID),
		attribute.Int64("order.attached_payment", attachedPayment),
	)
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return 0, err
	}
	if !product.Active {
		return 0, domcatalog.ErrNotFound
	}
	if err = product.Deduct(); err != nil {
		return 0, err
	}
	if err = payment.Verify(attachedPayment, product.Price); err != nil {
		return 0, err
	}

	entity := domorder.New(productID, caller, attachedPayment)
	id, err := s.orders.Append(ctx, entity)
	if err != nil {
		return 0, err
	}
	if err = s.products.Update(ctx, product); err != nil {
		return 0, err
	}
	s.balance.Capture(attachedPayment)

	if c := s.tel.Counter(observability.MLedgerBalanceCaptured); c != nil {
		c.Add(float64(attachedPayment))
	}

	s.publish(ctx, domorder.NewNewOrderEvent(entity))
	return id, nil
}

// GetOrder returns an order by id. Only the order's customer or the
// manager may view it.
func (s *Service) GetOrder(ctx context.Context, caller identity.Actor, orderID int64) (_ *domorder.Order, err error) {
	ctx, done := s.instrument(ctx, useCaseGetOrder,
		attribute.Int64("order.id", orderID),
	)
	defer func() { done(err) }()

	entity, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !entity.ViewableBy(caller, s.access) {
		return nil, domorder.ErrViewRestricted
	}
	return entity, nil
}

// ShipOrder marks an order as shipped. Manager only. Shipping an
// already-shipped order is a no-op; the transition is one-way.
func (s *Service) ShipOrder(ctx context.Context, caller identity.Actor, orderID int64) (err error) {
	ctx, done := s.instrument(ctx, useCaseShipOrder,
		attribute.Int64("order.id", orderID),
	)
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.access.RequireManager(caller); err != nil {
		return err
	}

	entity, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if entity.Shipped {
		return nil
	}

	entity.Ship()
	return s.orders.Update(ctx, entity)
}

// Balance reports the value held by the ledger: the sum of all captured
// payments. There is no withdrawal path.
func (s *Service) Balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance.Held()
}

// Manager exposes the configured manager identity for transports that
// need to label responses.
func (s *Service) Manager() identity.Actor {
	return s.access.Manager()
}

// instrument starts a use-case span and returns a completion callback
// recording span status, RED metrics, and the use-case log line.
func (s *Service) instrument(ctx context.Context, useCase string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCase))

	attrs = append(attrs, attribute.String("use_case", useCase))
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+useCase, attrs...)
	start := time.Now()

	return ctx, func(err error) {
		lat := time.Since(start).Seconds()
		outcome := "success"

		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		if c := s.tel.Counter(observability.MUsecaseRequests); c != nil {
			c.Add(1,
				observability.L("use_case", useCase),
				observability.L("outcome", outcome),
			)
		}
		if h := s.tel.Histogram(observability.MUsecaseDuration); h != nil {
			h.Observe(lat, observability.L("use_case", useCase))
		}

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("latency_seconds", lat),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}

		logger.Info("use_case_done", fields...)
	}
}

// publish hands an event to the bus with a bounded wait. Publish failures
// are logged and counted but never fail the already-committed operation.
func (s *Service) publish(ctx context.Context, e domoutbox.Event) {
	if s.publisher == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, e); err != nil {
		logctx.FromOr(ctx, s.log).Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err.Error()),
		)
		if c := s.tel.Counter(observability.MEventPublishFailures); c != nil {
			c.Add(1, observability.L("event", e.EventName()))
		}
	}
}
