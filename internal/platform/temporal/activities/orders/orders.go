package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	activitydomain "github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	activityports "github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

const (
	// UpdateStatusActivityName moves one order to a new status.
	UpdateStatusActivityName = "orders.activities.UpdateStatus"
	// RecordBulkResultActivityName writes the audit entry for a finished bulk update.
	RecordBulkResultActivityName = "orders.activities.RecordBulkResult"

	// RejectedErrorType marks business rejections, which are never retried.
	RejectedErrorType = "OrderRejected"
)

// StatusChange is the payload of one UpdateStatus activity.
type StatusChange struct {
	Actor   actor.Actor
	Kind    ordersdomain.Kind
	OrderID int64
	Status  ordersdomain.Status
}

// BulkOutcome is the payload of RecordBulkResult.
type BulkOutcome struct {
	Actor  actor.Actor
	Kind   ordersdomain.Kind
	IDs    []int64
	Status ordersdomain.Status
	Result types.BulkResult
}

// Activities groups the order operations a bulk workflow drives.
type Activities struct {
	service ordersports.Service
	sink    activityports.Sink
}

func NewActivities(service ordersports.Service, sink activityports.Sink) *Activities {
	if sink == nil {
		sink = activityports.NoopSink
	}
	return &Activities{service: service, sink: sink}
}

// UpdateStatus applies a single status change through the transaction engine.
func (a *Activities) UpdateStatus(ctx context.Context, change StatusChange) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order status activity not initialized", "orderId", change.OrderID)
		return errors.New("order status activity not initialized")
	}
	status := change.Status
	_, err := a.service.UpdateOrder(ctx, change.Actor, change.Kind, change.OrderID, types.UpdateOrderInput{Status: &status})
	if err != nil {
		if rejected(err) {
			logger.Warn("UpdateStatus rejected", "orderId", change.OrderID, "status", string(status), "error", err)
			return temporal.NewNonRetryableApplicationError(err.Error(), RejectedErrorType, err)
		}
		logger.Error("UpdateStatus failed", "orderId", change.OrderID, "error", err)
		return err
	}
	logger.Info("UpdateStatus completed", "orderId", change.OrderID, "status", string(status))
	return nil
}

// RecordBulkResult emits the bulk audit entry once all ids were attempted.
func (a *Activities) RecordBulkResult(ctx context.Context, outcome BulkOutcome) error {
	a.sink.Record(ctx, activitydomain.Activity{
		UserID:     outcome.Actor.ID,
		UserName:   outcome.Actor.Name,
		UserRole:   string(outcome.Actor.Role),
		Action:     "BULK_" + outcome.Kind.Entity() + "S_UPDATE",
		EntityType: string(outcome.Kind),
		Details: map[string]any{
			"ids":     outcome.IDs,
			"status":  string(outcome.Status),
			"updated": outcome.Result.Updated,
			"failed":  outcome.Result.Failed,
		},
		Timestamp: activity.GetInfo(ctx).StartedTime,
	})
	return nil
}

func rejected(err error) bool {
	return errors.Is(err, application.ErrInvalidInput) ||
		errors.Is(err, application.ErrInvalidState) ||
		errors.Is(err, application.ErrConflict) ||
		errors.Is(err, application.ErrInsufficientStock) ||
		errors.Is(err, application.ErrForbidden) ||
		ordersports.IsNotFound(err)
}
