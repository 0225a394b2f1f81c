package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/platform/temporal/sequences"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

const (
	// BulkStatusWorkflowName is the public identifier for registering the workflow.
	BulkStatusWorkflowName = "orders.workflows.BulkStatus"
	// BulkStatusTaskQueue is the queue consumed by the order worker.
	BulkStatusTaskQueue = "ORDER_BULK_STATUS"
)

type BulkStatusWorkflowInput struct {
	Actor   actor.Actor
	Kind    ordersdomain.Kind
	Command types.BulkStatusInput
	TraceID string
}

// BulkStatusWorkflow durably applies one status to many orders.
func BulkStatusWorkflow(ctx workflow.Context, input BulkStatusWorkflowInput) (types.BulkResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("BulkStatusWorkflow started", withTraceID(input.TraceID, "kind", string(input.Kind), "status", string(input.Command.Status))...)
	result, err := sequences.RunBulkStatusSequence(ctx, input.Actor, input.Kind, input.Command)
	if err != nil {
		logger.Error("BulkStatusWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return result, err
	}
	logger.Info("BulkStatusWorkflow completed", withTraceID(input.TraceID, "updated", result.Updated, "failed", result.Failed)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
