package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/go-pos-backoffice/internal/platform/temporal/activities/orders"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// RunBulkStatusSequence updates each order in turn. A failed id is counted
// and the sequence moves on; only the audit step may not fail the run.
func RunBulkStatusSequence(ctx workflow.Context, a actor.Actor, kind ordersdomain.Kind, input types.BulkStatusInput) (types.BulkResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("bulk status sequence started", "kind", string(kind), "count", len(input.IDs))
	updateOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{orderactivities.RejectedErrorType},
		},
	}
	recordOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	}

	var result types.BulkResult
	updateCtx := workflow.WithActivityOptions(ctx, updateOptions)
	for _, id := range input.IDs {
		change := orderactivities.StatusChange{Actor: a, Kind: kind, OrderID: id, Status: input.Status}
		if err := workflow.ExecuteActivity(updateCtx, orderactivities.UpdateStatusActivityName, change).Get(ctx, nil); err != nil {
			logger.Warn("bulk status update skipped order", "orderId", id, "error", err)
			result.Failed++
			continue
		}
		result.Updated++
	}

	outcome := orderactivities.BulkOutcome{Actor: a, Kind: kind, IDs: input.IDs, Status: input.Status, Result: result}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, recordOptions), orderactivities.RecordBulkResultActivityName, outcome).Get(ctx, nil); err != nil {
		logger.Warn("bulk status audit failed", "error", err)
	}
	logger.Info("bulk status sequence finished", "updated", result.Updated, "failed", result.Failed)
	return result, nil
}
