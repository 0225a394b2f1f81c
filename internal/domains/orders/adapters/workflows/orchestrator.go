package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/go-pos-backoffice/internal/platform/temporal/workflows/orders"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineOrderWorkflows)(nil)
)

// TemporalOrderWorkflows starts order workflows on a Temporal cluster.
type TemporalOrderWorkflows struct {
	client    client.Client
	taskQueue string
	timeout   time.Duration
}

// NewTemporalOrderWorkflows wires a Temporal client into the orchestrator.
func NewTemporalOrderWorkflows(c client.Client) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.BulkStatusTaskQueue, timeout: 5 * time.Minute}
}

// BulkUpdateStatus validates the request, then runs the bulk workflow and
// waits for its counts. Rejections are reported before anything is started.
func (o *TemporalOrderWorkflows) BulkUpdateStatus(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, input types.BulkStatusInput) (types.BulkResult, error) {
	if o == nil || o.client == nil {
		return types.BulkResult{}, errors.New("temporal order workflows not configured")
	}
	if err := validateBulk(a, input); err != nil {
		return types.BulkResult{}, err
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := fmt.Sprintf("order-bulk-status-%s-%s", kind, traceComponent)
	options := client.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                o.taskQueue,
		WorkflowExecutionTimeout: o.timeout,
	}
	run, err := o.client.ExecuteWorkflow(ctx, options, orderworkflows.BulkStatusWorkflow, orderworkflows.BulkStatusWorkflowInput{
		Actor:   a,
		Kind:    kind,
		Command: input,
		TraceID: traceComponent,
	})
	if err != nil {
		// A retried request within the same trace attaches to the running batch.
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return types.BulkResult{}, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result types.BulkResult
	if err := run.Get(ctx, &result); err != nil {
		return types.BulkResult{}, err
	}
	return result, nil
}

// InlineOrderWorkflows runs the bulk update in-process, for tests or when
// Temporal is disabled.
type InlineOrderWorkflows struct {
	service ports.Service
}

func NewInlineOrderWorkflows(service ports.Service) *InlineOrderWorkflows {
	return &InlineOrderWorkflows{service: service}
}

func (o *InlineOrderWorkflows) BulkUpdateStatus(ctx context.Context, a actor.Actor, kind ordersdomain.Kind, input types.BulkStatusInput) (types.BulkResult, error) {
	if o == nil || o.service == nil {
		return types.BulkResult{}, errors.New("inline order workflows not configured")
	}
	return o.service.BulkUpdateStatus(ctx, a, kind, input)
}

func validateBulk(a actor.Actor, input types.BulkStatusInput) error {
	if err := ordersdomain.Authorize(a, ordersdomain.OpBulkUpdate, nil); err != nil {
		return fmt.Errorf("%w: %w", application.ErrForbidden, err)
	}
	if !input.Status.Valid() {
		return fmt.Errorf("%w: %w", application.ErrInvalidInput, ordersdomain.ErrInvalidStatus)
	}
	if len(input.IDs) == 0 {
		return fmt.Errorf("%w: at least one id is required", application.ErrInvalidInput)
	}
	return nil
}

func workflowTraceComponent(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() && spanCtx.TraceID().IsValid() {
		return spanCtx.TraceID().String()
	}
	return "fallback-" + uuid.NewString()
}
