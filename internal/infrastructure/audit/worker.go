package audit

import (
	"context"

	domcatalog "github.com/martingallagher/warehouse/internal/domain/catalog"
	domorder "github.com/martingallagher/warehouse/internal/domain/order"
	domoutbox "github.com/martingallagher/warehouse/internal/domain/outbox"
	"github.com/martingallagher/warehouse/internal/observability"
	"github.com/martingallagher/warehouse/internal/observability/logctx"
)

const componentAudit = "audit_worker"

// Worker is the external listener on the ledger's event side channel: it
// writes the observable event log and counts events by name.
type Worker struct {
	subscriber domoutbox.Subscriber
	log        observability.Logger
	tel        observability.Telemetry
}

func New(subscriber domoutbox.Subscriber, tel observability.Telemetry) *Worker {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Worker{
		subscriber: subscriber,
		log:        tel.Logger().With(observability.F("component", componentAudit)),
		tel:        tel,
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(domcatalog.NewProductEvent{}.EventName(), w.handleNewProduct)
	w.subscriber.Subscribe(domorder.NewOrderEvent{}.EventName(), w.handleNewOrder)
}

func (w *Worker) handleNewProduct(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domcatalog.NewProductEvent)
	if !ok {
		return nil
	}

	w.count(evt.EventName())
	logctx.FromOr(ctx, w.log).Info("new_product",
		observability.F("product_id", evt.ProductID),
		observability.F("name", evt.Name),
		observability.F("price", evt.Price),
		observability.F("stock", evt.Stock),
	)
	return nil
}

func (w *Worker) handleNewOrder(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.NewOrderEvent)
	if !ok {
		return nil
	}

	w.count(evt.EventName())
	logctx.FromOr(ctx, w.log).Info("new_order",
		observability.F("order_id", evt.OrderID),
		observability.F("customer", evt.Customer.String()),
		observability.F("product_id", evt.ProductID),
		observability.F("amount_paid", evt.AmountPaid),
	)
	return nil
}

func (w *Worker) count(event string) {
	if c := w.tel.Counter(observability.MLedgerEvents); c != nil {
		c.Add(1, observability.L("event", event))
	}
}
