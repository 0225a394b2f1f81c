package ports

import (
	"context"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// WorkflowOrchestrator runs long order operations, durably when Temporal is available.
type WorkflowOrchestrator interface {
	BulkUpdateStatus(ctx context.Context, a actor.Actor, kind domain.Kind, input types.BulkStatusInput) (types.BulkResult, error)
}
