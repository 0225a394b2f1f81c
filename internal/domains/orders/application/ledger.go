package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// AddItem appends a line to a pending order and persists the item with the
// new total.
func (s *Service) AddItem(ctx context.Context, a actor.Actor, kind domain.Kind, input types.AddItemInput) (*domain.LineItem, error) {
	var added *domain.LineItem
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		order, err := repo.GetOrder(ctx, kind, input.OrderID)
		if err != nil {
			return err
		}
		if err := domain.Authorize(a, domain.OpEditItems, order); err != nil {
			return err
		}
		added, err = s.addItem(ctx, repo, order, input.InventoryRecordID, input.Quantity, input.UnitPrice)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.record(ctx, a, kind, "ITEM_ADDED", &added.ID, map[string]any{
		"orderId":           added.OrderID,
		"inventoryRecordId": added.InventoryRecordID,
		"quantity":          added.Quantity,
	})
	return added, nil
}

// UpdateItem changes quantity, and for purchases unit cost, of a pending line.
func (s *Service) UpdateItem(ctx context.Context, a actor.Actor, kind domain.Kind, itemID int64, input types.UpdateItemInput) (*domain.LineItem, error) {
	var (
		revised *domain.LineItem
		changed bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		current, err := repo.GetItem(ctx, kind, itemID)
		if err != nil {
			return err
		}
		order, err := repo.GetOrder(ctx, kind, current.OrderID)
		if err != nil {
			return err
		}
		if err := domain.Authorize(a, domain.OpEditItems, order); err != nil {
			return err
		}
		if err := order.EnsureEditable(); err != nil {
			return err
		}
		if input.UnitPrice != nil && kind.ChecksStock() {
			return domain.ErrPriceLocked
		}
		if input.Quantity != nil && kind.ChecksStock() && *input.Quantity > current.Quantity {
			record, err := repo.GetInventoryRecord(ctx, current.InventoryRecordID)
			if err != nil {
				return err
			}
			if available := domain.QuantityAvailable(record.Stock, current.Quantity); *input.Quantity > available {
				return insufficientStock(record.ID, available, *input.Quantity)
			}
		}
		item, ok, err := order.ReviseItem(itemID, input.Quantity, input.UnitPrice)
		if err != nil {
			return err
		}
		changed = ok
		copied := *item
		revised = &copied
		if !changed {
			return nil
		}
		if err := repo.UpdateItem(ctx, kind, revised); err != nil {
			return err
		}
		return repo.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, mapError(err)
	}
	if changed {
		s.record(ctx, a, kind, "ITEM_UPDATED", &revised.ID, map[string]any{
			"orderId":  revised.OrderID,
			"quantity": revised.Quantity,
		})
	}
	return revised, nil
}

// DeleteItem removes a pending line and subtracts its total from the order.
func (s *Service) DeleteItem(ctx context.Context, a actor.Actor, kind domain.Kind, itemID int64) error {
	var removed domain.LineItem
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		current, err := repo.GetItem(ctx, kind, itemID)
		if err != nil {
			return err
		}
		order, err := repo.GetOrder(ctx, kind, current.OrderID)
		if err != nil {
			return err
		}
		if err := domain.Authorize(a, domain.OpEditItems, order); err != nil {
			return err
		}
		removed, err = order.RemoveItem(itemID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItem(ctx, kind, itemID); err != nil {
			return err
		}
		return repo.UpdateOrder(ctx, order)
	})
	if err != nil {
		return mapError(err)
	}
	s.record(ctx, a, kind, "ITEM_DELETED", &itemID, map[string]any{
		"orderId":           removed.OrderID,
		"inventoryRecordId": removed.InventoryRecordID,
	})
	return nil
}

func (s *Service) GetItem(ctx context.Context, a actor.Actor, kind domain.Kind, itemID int64) (*domain.LineItem, error) {
	item, err := s.store.GetItem(ctx, kind, itemID)
	if err != nil {
		return nil, mapError(err)
	}
	if _, err := s.loadVisible(ctx, a, kind, item.OrderID); err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems lists lines visible to the caller, optionally for one order.
func (s *Service) ListItems(ctx context.Context, a actor.Actor, kind domain.Kind, orderID *int64) ([]*domain.LineItem, error) {
	if orderID != nil {
		if _, err := s.loadVisible(ctx, a, kind, *orderID); err != nil {
			return nil, err
		}
	}
	scope := domain.ListScope(a)
	items, err := s.store.ListItems(ctx, kind, ports.ItemFilter{OrderID: orderID, ActorID: scope.ActorID})
	if err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

// addItem applies the ledger rules for one new line on an already loaded
// order. The caller owns the transaction.
func (s *Service) addItem(ctx context.Context, repo ports.Repository, order *domain.Order, recordID int64, quantity int, unitPrice *decimal.Decimal) (*domain.LineItem, error) {
	if err := order.EnsureEditable(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if order.HasItemFor(recordID) {
		return nil, domain.ErrDuplicateItem
	}
	record, err := repo.GetInventoryRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	var price decimal.Decimal
	switch {
	case unitPrice != nil:
		price = *unitPrice
	case order.Kind.RequiresExplicitPrice():
		return nil, domain.ErrPriceRequired
	default:
		price = record.Price
	}
	if order.Kind.ChecksStock() && quantity > record.Stock {
		return nil, insufficientStock(record.ID, record.Stock, quantity)
	}
	line, err := domain.NewLineItem(record.ID, quantity, price)
	if err != nil {
		return nil, err
	}
	stored, err := order.AddItem(line)
	if err != nil {
		return nil, err
	}
	created, err := repo.CreateItem(ctx, order.Kind, stored)
	if err != nil {
		return nil, err
	}
	stored.ID = created.ID
	if err := repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	out := *stored
	return &out, nil
}
