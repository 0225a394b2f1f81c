package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

const tracerName = "github.com/Apurer/go-pos-backoffice/internal/domains/orders/adapters/observability/service"

// Service decorates the transaction engine with tracing, logging, and metrics.
type Service struct {
	inner   ordersports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core orders service.
func New(inner ordersports.Service, opts ...Option) ordersports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) CreateSale(ctx context.Context, a actor.Actor, input types.CreateSaleInput) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateSale", trace.WithAttributes(
		attribute.Int64("actor.id", a.ID),
		attribute.Int("sale.items", len(input.Items)),
		attribute.Bool("sale.hold", input.Hold)))
	defer span.End()

	result, err := s.inner.CreateSale(ctx, a, input)
	if err != nil {
		if errors.Is(err, application.ErrInsufficientStock) {
			s.metrics.recordStockRejection(ctx, ordersdomain.KindSale)
		}
		return nil, s.handleError(ctx, span, err, "failed to create sale", slog.Int64("actor_id", a.ID))
	}
	span.SetAttributes(attribute.Int64("sale.id", result.ID))
	s.metrics.recordCreated(ctx, result)
	s.logInfo(ctx, "sale created",
		slog.Int64("sale_id", result.ID),
		slog.String("status", string(result.Status)),
		slog.String("total", result.Total.StringFixed(2)))
	return result, nil
}

func (s *Service) CreatePurchase(ctx context.Context, a actor.Actor, input types.CreatePurchaseInput) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreatePurchase", trace.WithAttributes(attribute.Int64("actor.id", a.ID)))
	defer span.End()

	result, err := s.inner.CreatePurchase(ctx, a, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create purchase", slog.Int64("actor_id", a.ID))
	}
	s.metrics.recordCreated(ctx, result)
	s.logInfo(ctx, "purchase created", slog.Int64("purchase_id", result.ID))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, id int64) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", orderAttrs(kind, id))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, a, kind, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", kindAttr(kind), slog.Int64("order_id", id))
	}
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, input types.ListOrdersInput) ([]*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders", trace.WithAttributes(attribute.String("order.kind", string(kind))))
	defer span.End()

	result, err := s.inner.ListOrders(ctx, a, kind, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", kindAttr(kind))
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) UpdateOrder(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, id int64, input types.UpdateOrderInput) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateOrder", orderAttrs(kind, id))
	defer span.End()

	result, err := s.inner.UpdateOrder(ctx, a, kind, id, input)
	if err != nil {
		if errors.Is(err, application.ErrInsufficientStock) {
			s.metrics.recordStockRejection(ctx, kind)
		}
		return nil, s.handleError(ctx, span, err, "failed to update order", kindAttr(kind), slog.Int64("order_id", id))
	}
	s.metrics.recordUpdated(ctx, kind)
	s.logInfo(ctx, "order updated", kindAttr(kind), slog.Int64("order_id", id), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) DeleteOrder(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, id int64) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.DeleteOrder", orderAttrs(kind, id))
	defer span.End()

	if err := s.inner.DeleteOrder(ctx, a, kind, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete order", kindAttr(kind), slog.Int64("order_id", id))
	}
	s.metrics.recordDeleted(ctx, kind)
	s.logInfo(ctx, "order deleted", kindAttr(kind), slog.Int64("order_id", id))
	return nil
}

func (s *Service) BulkUpdateStatus(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, input types.BulkStatusInput) (types.BulkResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.BulkUpdateStatus", trace.WithAttributes(
		attribute.String("order.kind", string(kind)),
		attribute.Int("orders.requested", len(input.IDs)),
		attribute.String("order.status", string(input.Status))))
	defer span.End()

	result, err := s.inner.BulkUpdateStatus(ctx, a, kind, input)
	if err != nil {
		return result, s.handleError(ctx, span, err, "bulk status update failed", kindAttr(kind))
	}
	span.SetAttributes(attribute.Int("orders.updated", result.Updated), attribute.Int("orders.failed", result.Failed))
	s.logInfo(ctx, "bulk status update finished", kindAttr(kind), slog.Int("updated", result.Updated), slog.Int("failed", result.Failed))
	return result, nil
}

func (s *Service) AddItem(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, input types.AddItemInput) (*ordersdomain.LineItem, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.AddItem", trace.WithAttributes(
		attribute.String("order.kind", string(kind)),
		attribute.Int64("order.id", input.OrderID),
		attribute.Int64("inventory_record.id", input.InventoryRecordID)))
	defer span.End()

	result, err := s.inner.AddItem(ctx, a, kind, input)
	if err != nil {
		if errors.Is(err, application.ErrInsufficientStock) {
			s.metrics.recordStockRejection(ctx, kind)
		}
		return nil, s.handleError(ctx, span, err, "failed to add item", kindAttr(kind), slog.Int64("order_id", input.OrderID))
	}
	s.logInfo(ctx, "item added", kindAttr(kind), slog.Int64("order_id", input.OrderID), slog.Int64("item_id", result.ID))
	return result, nil
}

func (s *Service) UpdateItem(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, itemID int64, input types.UpdateItemInput) (*ordersdomain.LineItem, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateItem", itemAttrs(kind, itemID))
	defer span.End()

	result, err := s.inner.UpdateItem(ctx, a, kind, itemID, input)
	if err != nil {
		if errors.Is(err, application.ErrInsufficientStock) {
			s.metrics.recordStockRejection(ctx, kind)
		}
		return nil, s.handleError(ctx, span, err, "failed to update item", kindAttr(kind), slog.Int64("item_id", itemID))
	}
	return result, nil
}

func (s *Service) DeleteItem(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, itemID int64) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.DeleteItem", itemAttrs(kind, itemID))
	defer span.End()

	if err := s.inner.DeleteItem(ctx, a, kind, itemID); err != nil {
		return s.handleError(ctx, span, err, "failed to delete item", kindAttr(kind), slog.Int64("item_id", itemID))
	}
	s.logInfo(ctx, "item deleted", kindAttr(kind), slog.Int64("item_id", itemID))
	return nil
}

func (s *Service) GetItem(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, itemID int64) (*ordersdomain.LineItem, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetItem", itemAttrs(kind, itemID))
	defer span.End()

	result, err := s.inner.GetItem(ctx, a, kind, itemID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load item", kindAttr(kind), slog.Int64("item_id", itemID))
	}
	return result, nil
}

func (s *Service) ListItems(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, orderID *int64) ([]*ordersdomain.LineItem, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListItems", trace.WithAttributes(attribute.String("order.kind", string(kind))))
	defer span.End()

	result, err := s.inner.ListItems(ctx, a, kind, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list items", kindAttr(kind))
	}
	span.SetAttributes(attribute.Int("items.count", len(result)))
	return result, nil
}

func (s *Service) ValidatePayment(ctx context.Context, a actor.Actor, saleID int64, amount decimal.Decimal) (types.PaymentValidation, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ValidatePayment", orderAttrs(ordersdomain.KindSale, saleID))
	defer span.End()

	result, err := s.inner.ValidatePayment(ctx, a, saleID, amount)
	if err != nil {
		return result, s.handleError(ctx, span, err, "payment validation failed", slog.Int64("sale_id", saleID))
	}
	span.SetAttributes(attribute.Bool("payment.valid", result.Valid))
	return result, nil
}

func (s *Service) CustomerHistory(ctx context.Context, a actor.Actor, customerID int64) ([]*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CustomerHistory", trace.WithAttributes(attribute.Int64("customer.id", customerID)))
	defer span.End()

	result, err := s.inner.CustomerHistory(ctx, a, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load customer history", slog.Int64("customer_id", customerID))
	}
	return result, nil
}

func orderAttrs(kind ordersdomain.Kind, id int64) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String("order.kind", string(kind)), attribute.Int64("order.id", id))
}

func itemAttrs(kind ordersdomain.Kind, itemID int64) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String("order.kind", string(kind)), attribute.Int64("item.id", itemID))
}

func kindAttr(kind ordersdomain.Kind) slog.Attr {
	return slog.String("kind", string(kind))
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	ordersCreated   metric.Int64Counter
	ordersUpdated   metric.Int64Counter
	ordersDeleted   metric.Int64Counter
	stockRejections metric.Int64Counter
	revenue         metric.Float64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of sales and purchases created"))
	updated, _ := m.Int64Counter("orders.service.updated", metric.WithDescription("Number of order header updates"))
	deleted, _ := m.Int64Counter("orders.service.deleted", metric.WithDescription("Number of orders deleted"))
	rejections, _ := m.Int64Counter("orders.service.stock_rejections", metric.WithDescription("Number of writes rejected for insufficient stock"))
	revenue, _ := m.Float64Counter("orders.service.sale_revenue", metric.WithDescription("Total of sales completed at checkout"))
	return serviceMetrics{
		ordersCreated:   created,
		ordersUpdated:   updated,
		ordersDeleted:   deleted,
		stockRejections: rejections,
		revenue:         revenue,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, order *ordersdomain.Order) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1, metric.WithAttributes(
			attribute.String("order.kind", string(order.Kind)),
			attribute.String("order.status", string(order.Status))))
	}
	if m.revenue != nil && order.Kind == ordersdomain.KindSale && order.Status == ordersdomain.StatusCompleted {
		m.revenue.Add(ctx, order.Total.InexactFloat64(), metric.WithAttributes(attribute.String("payment.method", string(order.PaymentMethod))))
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context, kind ordersdomain.Kind) {
	if m.ordersUpdated != nil {
		m.ordersUpdated.Add(ctx, 1, metric.WithAttributes(attribute.String("order.kind", string(kind))))
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context, kind ordersdomain.Kind) {
	if m.ordersDeleted != nil {
		m.ordersDeleted.Add(ctx, 1, metric.WithAttributes(attribute.String("order.kind", string(kind))))
	}
}

func (m serviceMetrics) recordStockRejection(ctx context.Context, kind ordersdomain.Kind) {
	if m.stockRejections != nil {
		m.stockRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("order.kind", string(kind))))
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ordersports.Service = (*Service)(nil)
