package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	activitydomain "github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	activityports "github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// Service is the sale and purchase transaction engine. Every multi-entity
// write runs inside one Store transaction.
type Service struct {
	store      ports.Store
	directory  ports.Directory
	activities activityports.Sink
	now        func() time.Time
}

type Option func(*Service)

func WithActivitySink(sink activityports.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.activities = sink
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the engine with its data-access and directory collaborators.
func NewService(store ports.Store, directory ports.Directory, opts ...Option) *Service {
	s := &Service{
		store:      store,
		directory:  directory,
		activities: activityports.NoopSink,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateSale creates a sale with its items and, unless held, completes it so
// stock is debited once. Nothing is persisted when any line fails.
func (s *Service) CreateSale(ctx context.Context, a actor.Actor, input types.CreateSaleInput) (*domain.Order, error) {
	if input.ActorID == 0 {
		input.ActorID = a.ID
	}
	if err := domain.Authorize(a, domain.OpCreate, &domain.Order{Kind: domain.KindSale, ActorID: input.ActorID}); err != nil {
		return nil, mapError(err)
	}
	if len(input.Items) == 0 {
		return nil, mapError(domain.ErrEmptySale)
	}

	var fingerprint string
	key := strings.TrimSpace(input.IdempotencyKey)
	if key != "" {
		hash, err := FingerprintCreateSale(input)
		if err != nil {
			return nil, err
		}
		fingerprint = hash
		existing, err := s.store.GetIdempotencyRecord(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.replaySale(ctx, a, existing, fingerprint)
		}
	}

	if err := s.ensureActor(ctx, input.ActorID); err != nil {
		return nil, err
	}
	if input.CustomerID != nil {
		if err := s.ensureCounterparty(ctx, domain.KindSale, *input.CustomerID); err != nil {
			return nil, err
		}
	}
	order, err := domain.NewOrder(domain.KindSale, input.ActorID, input.CustomerID, input.PaymentMethod)
	if err != nil {
		return nil, mapError(err)
	}

	var created *domain.Order
	var claimedBy *ports.IdempotencyRecord
	err = s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		saved, err := repo.CreateOrder(ctx, order)
		if err != nil {
			return err
		}
		for _, line := range input.Items {
			if _, err := s.addItem(ctx, repo, saved, line.InventoryRecordID, line.Quantity, line.UnitPrice); err != nil {
				return err
			}
		}
		if !input.Hold {
			if _, err := s.transition(ctx, repo, saved, domain.StatusCompleted); err != nil {
				return err
			}
		}
		if fingerprint != "" {
			existing, err := repo.ClaimIdempotencyKey(ctx, ports.IdempotencyRecord{Key: key, RequestHash: fingerprint, OrderID: saved.ID})
			if errors.Is(err, ports.ErrIdempotencyKeyTaken) {
				claimedBy = existing
			}
			if err != nil {
				return err
			}
		}
		created = saved
		return nil
	})
	if claimedBy != nil {
		// A concurrent checkout with the same key committed first; this one rolled back.
		return s.replaySale(ctx, a, claimedBy, fingerprint)
	}
	if err != nil {
		return nil, mapError(err)
	}

	s.record(ctx, a, domain.KindSale, "CREATED", &created.ID, map[string]any{
		"total":         created.Total.StringFixed(2),
		"itemCount":     len(created.Items),
		"status":        string(created.Status),
		"paymentMethod": string(created.PaymentMethod),
	})
	return created, nil
}

// replaySale answers a reused idempotency key with the sale it first produced,
// provided the payload matches.
func (s *Service) replaySale(ctx context.Context, a actor.Actor, record *ports.IdempotencyRecord, fingerprint string) (*domain.Order, error) {
	if record.RequestHash != fingerprint {
		return nil, mapError(ports.ErrIdempotencyConflict)
	}
	return s.loadVisible(ctx, a, domain.KindSale, record.OrderID)
}

// CreatePurchase opens an empty pending purchase for a supplier.
func (s *Service) CreatePurchase(ctx context.Context, a actor.Actor, input types.CreatePurchaseInput) (*domain.Order, error) {
	if input.ActorID == 0 {
		input.ActorID = a.ID
	}
	if err := domain.Authorize(a, domain.OpCreate, &domain.Order{Kind: domain.KindPurchase, ActorID: input.ActorID}); err != nil {
		return nil, mapError(err)
	}
	if input.SupplierID == nil {
		return nil, mapError(domain.ErrCounterpartyRequired)
	}
	if err := s.ensureActor(ctx, input.ActorID); err != nil {
		return nil, err
	}
	if err := s.ensureCounterparty(ctx, domain.KindPurchase, *input.SupplierID); err != nil {
		return nil, err
	}
	order, err := domain.NewOrder(domain.KindPurchase, input.ActorID, input.SupplierID, "")
	if err != nil {
		return nil, mapError(err)
	}
	created, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	s.record(ctx, a, domain.KindPurchase, "CREATED", &created.ID, map[string]any{"supplierId": *input.SupplierID})
	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, a actor.Actor, kind domain.Kind, id int64) (*domain.Order, error) {
	order, err := s.loadVisible(ctx, a, kind, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, a, kind, "VIEWED", &order.ID, nil)
	return order, nil
}

// ListOrders returns the orders the caller may see, narrowed by input.
func (s *Service) ListOrders(ctx context.Context, a actor.Actor, kind domain.Kind, input types.ListOrdersInput) ([]*domain.Order, error) {
	if err := domain.Authorize(a, domain.OpList, nil); err != nil {
		return nil, mapError(err)
	}
	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		return nil, fmt.Errorf("%w: end date must not be before start date", ErrInvalidInput)
	}
	scope := domain.ListScope(a)
	orders, err := s.store.ListOrders(ctx, kind, ports.ListFilter{
		ActorID:        scope.ActorID,
		CounterpartyID: input.CounterpartyID,
		Status:         input.Status,
		From:           input.From,
		To:             input.To,
	})
	if err != nil {
		return nil, mapError(err)
	}
	details := map[string]any{"count": len(orders)}
	if input.From != nil || input.To != nil {
		details["from"], details["to"] = formatTime(input.From), formatTime(input.To)
	}
	s.activities.Record(ctx, s.entry(a, listAction(kind), kind, nil, details))
	return orders, nil
}

// CustomerHistory lists the caller-visible sales of one customer.
func (s *Service) CustomerHistory(ctx context.Context, a actor.Actor, customerID int64) ([]*domain.Order, error) {
	if err := s.ensureCounterparty(ctx, domain.KindSale, customerID); err != nil {
		return nil, err
	}
	scope := domain.ListScope(a)
	orders, err := s.store.ListOrders(ctx, domain.KindSale, ports.ListFilter{ActorID: scope.ActorID, CounterpartyID: &customerID})
	if err != nil {
		return nil, mapError(err)
	}
	s.activities.Record(ctx, s.entry(a, "CUSTOMER_SALES_HISTORY_VIEWED", domain.KindSale, nil, map[string]any{
		"customerId": customerID,
		"count":      len(orders),
	}))
	return orders, nil
}

// UpdateOrder patches header fields and applies a status transition, moving
// stock in the same transaction as the status write.
func (s *Service) UpdateOrder(ctx context.Context, a actor.Actor, kind domain.Kind, id int64, input types.UpdateOrderInput) (*domain.Order, error) {
	updated, from, err := s.updateOrder(ctx, a, kind, id, input)
	if err != nil {
		return nil, mapError(err)
	}
	details := map[string]any{"status": string(updated.Status)}
	if from != updated.Status {
		details["previousStatus"] = string(from)
	}
	s.record(ctx, a, kind, "UPDATED", &updated.ID, details)
	return updated, nil
}

func (s *Service) updateOrder(ctx context.Context, a actor.Actor, kind domain.Kind, id int64, input types.UpdateOrderInput) (*domain.Order, domain.Status, error) {
	var (
		updated *domain.Order
		from    domain.Status
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		order, err := repo.GetOrder(ctx, kind, id)
		if err != nil {
			return err
		}
		from = order.Status
		if err := domain.Authorize(a, domain.OpUpdate, order); err != nil {
			return err
		}
		dirty := false
		if input.ActorID != nil && *input.ActorID != order.ActorID {
			if a.Role == actor.RoleCashier {
				return domain.ErrForbidden
			}
			if err := s.ensureActor(ctx, *input.ActorID); err != nil {
				return err
			}
			order.ActorID = *input.ActorID
			dirty = true
		}
		if input.CounterpartyID != nil && (order.CounterpartyID == nil || *order.CounterpartyID != *input.CounterpartyID) {
			if err := s.ensureCounterparty(ctx, kind, *input.CounterpartyID); err != nil {
				return err
			}
			counterparty := *input.CounterpartyID
			order.CounterpartyID = &counterparty
			dirty = true
		}
		if input.PaymentMethod != nil && *input.PaymentMethod != order.PaymentMethod {
			if err := order.ChangePaymentMethod(*input.PaymentMethod); err != nil {
				return err
			}
			dirty = true
		}
		if input.Status != nil {
			changed, err := s.transition(ctx, repo, order, *input.Status)
			if err != nil {
				return err
			}
			if changed {
				dirty = false
			}
		}
		if dirty {
			if err := repo.UpdateOrder(ctx, order); err != nil {
				return err
			}
		}
		updated = order
		return nil
	})
	return updated, from, err
}

// DeleteOrder reverses a completed order's stock effect and removes it with its items.
func (s *Service) DeleteOrder(ctx context.Context, a actor.Actor, kind domain.Kind, id int64) error {
	if err := domain.Authorize(a, domain.OpDelete, nil); err != nil {
		return mapError(err)
	}
	var deleted *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		order, err := repo.GetOrder(ctx, kind, id)
		if err != nil {
			return err
		}
		if err := s.applyStock(ctx, repo, domain.RemovalEffect(order)); err != nil {
			return err
		}
		if err := repo.DeleteOrder(ctx, kind, id); err != nil {
			return err
		}
		deleted = order
		return nil
	})
	if err != nil {
		return mapError(err)
	}
	s.record(ctx, a, kind, "DELETED", &id, map[string]any{
		"total":  deleted.Total.StringFixed(2),
		"status": string(deleted.Status),
	})
	return nil
}

// BulkUpdateStatus applies the single-order update to each id in order.
// Per-id failures are counted, never returned.
func (s *Service) BulkUpdateStatus(ctx context.Context, a actor.Actor, kind domain.Kind, input types.BulkStatusInput) (types.BulkResult, error) {
	if err := domain.Authorize(a, domain.OpBulkUpdate, nil); err != nil {
		return types.BulkResult{}, mapError(err)
	}
	if !input.Status.Valid() {
		return types.BulkResult{}, mapError(domain.ErrInvalidStatus)
	}
	if len(input.IDs) == 0 {
		return types.BulkResult{}, fmt.Errorf("%w: at least one id is required", ErrInvalidInput)
	}
	var result types.BulkResult
	status := input.Status
	for _, id := range input.IDs {
		if _, _, err := s.updateOrder(ctx, a, kind, id, types.UpdateOrderInput{Status: &status}); err != nil {
			result.Failed++
			continue
		}
		result.Updated++
	}
	s.activities.Record(ctx, s.entry(a, bulkAction(kind), kind, nil, map[string]any{
		"ids":     input.IDs,
		"status":  string(status),
		"updated": result.Updated,
		"failed":  result.Failed,
	}))
	return result, nil
}

// ValidatePayment checks a tendered amount against a pending sale.
func (s *Service) ValidatePayment(ctx context.Context, a actor.Actor, saleID int64, amount decimal.Decimal) (types.PaymentValidation, error) {
	if amount.IsNegative() {
		return types.PaymentValidation{}, fmt.Errorf("%w: payment amount must not be negative", ErrInvalidInput)
	}
	order, err := s.loadVisible(ctx, a, domain.KindSale, saleID)
	if err != nil {
		return types.PaymentValidation{}, err
	}
	var result types.PaymentValidation
	switch {
	case order.Status == domain.StatusCompleted:
		result = types.PaymentValidation{Message: "Sale is already completed"}
	case order.Status == domain.StatusCancelled:
		result = types.PaymentValidation{Message: "Sale is cancelled"}
	case amount.LessThan(order.Total):
		result = types.PaymentValidation{Message: fmt.Sprintf("Insufficient payment. Required: %s, Received: %s", order.Total.StringFixed(2), amount.StringFixed(2))}
	default:
		change := amount.Sub(order.Total)
		result = types.PaymentValidation{Valid: true, Change: change, Message: "Payment accepted. No change required."}
		if change.IsPositive() {
			result.Message = "Payment accepted. Change: " + change.StringFixed(2)
		}
	}
	s.record(ctx, a, domain.KindSale, "PAYMENT_VALIDATED", &order.ID, map[string]any{
		"amount": amount.StringFixed(2),
		"valid":  result.Valid,
	})
	return result, nil
}

func (s *Service) loadVisible(ctx context.Context, a actor.Actor, kind domain.Kind, id int64) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, kind, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := domain.Authorize(a, domain.OpView, order); err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// transition moves order to status and applies the stock effect before the
// status is written. It reports false for same-status requests.
func (s *Service) transition(ctx context.Context, repo ports.Repository, order *domain.Order, status domain.Status) (bool, error) {
	from := order.Status
	changed, err := order.TransitionTo(status)
	if err != nil || !changed {
		return false, err
	}
	if err := s.applyStock(ctx, repo, domain.StockEffect(order, from, status)); err != nil {
		order.Status = from
		return false, err
	}
	if err := repo.UpdateOrder(ctx, order); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) applyStock(ctx context.Context, repo ports.Repository, adjustments []domain.StockAdjustment) error {
	for _, adj := range adjustments {
		record, err := repo.GetInventoryRecord(ctx, adj.InventoryRecordID)
		if err != nil {
			return err
		}
		if err := record.AdjustStock(adj.Delta); err != nil {
			return insufficientStock(record.ID, record.Stock, -adj.Delta)
		}
		if err := repo.SaveStock(ctx, record.ID, record.Stock); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ensureActor(ctx context.Context, id int64) error {
	if id <= 0 {
		return mapError(domain.ErrInvalidActor)
	}
	if s.directory == nil {
		return nil
	}
	ok, err := s.directory.ActorExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ports.ErrActorNotFound
	}
	return nil
}

func (s *Service) ensureCounterparty(ctx context.Context, kind domain.Kind, id int64) error {
	if s.directory == nil {
		return nil
	}
	ok, err := s.directory.CounterpartyExists(ctx, kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return ports.ErrCounterpartyNotFound
	}
	return nil
}

func (s *Service) record(ctx context.Context, a actor.Actor, kind domain.Kind, verb string, entityID *int64, details map[string]any) {
	s.activities.Record(ctx, s.entry(a, kind.Entity()+"_"+verb, kind, entityID, details))
}

func (s *Service) entry(a actor.Actor, action string, kind domain.Kind, entityID *int64, details map[string]any) activitydomain.Activity {
	return activitydomain.Activity{
		UserID:     a.ID,
		UserName:   a.Name,
		UserRole:   string(a.Role),
		Action:     action,
		EntityType: strings.ToLower(kind.Entity()),
		EntityID:   entityID,
		Details:    details,
		Timestamp:  s.now(),
	}
}

func listAction(kind domain.Kind) string {
	return kind.Entity() + "S_LIST_VIEWED"
}

func bulkAction(kind domain.Kind) string {
	return "BULK_" + kind.Entity() + "S_UPDATE"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

var _ ports.Service = (*Service)(nil)
