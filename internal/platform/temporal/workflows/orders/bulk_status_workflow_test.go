package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	activitydomain "github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-pos-backoffice/internal/platform/temporal/activities/orders"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// statusService completes orders 1 and 2 and rejects everything else.
type statusService struct {
	ordersports.Service
	calls map[int64]int
}

func (s *statusService) UpdateOrder(_ context.Context, _ actor.Actor, kind ordersdomain.Kind, id int64, input types.UpdateOrderInput) (*ordersdomain.Order, error) {
	s.calls[id]++
	if id > 2 {
		return nil, fmt.Errorf("%w: order %d is cancelled", application.ErrInvalidState, id)
	}
	return &ordersdomain.Order{ID: id, Kind: kind, Status: *input.Status}, nil
}

type captureSink struct{ entries []activitydomain.Activity }

func (c *captureSink) Record(_ context.Context, entry activitydomain.Activity) {
	c.entries = append(c.entries, entry)
}

func TestBulkStatusWorkflow_CountsRejectionsWithoutRetrying(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	service := &statusService{calls: map[int64]int{}}
	sink := &captureSink{}
	acts := orderactivities.NewActivities(service, sink)
	env.RegisterActivityWithOptions(acts.UpdateStatus, activity.RegisterOptions{Name: orderactivities.UpdateStatusActivityName})
	env.RegisterActivityWithOptions(acts.RecordBulkResult, activity.RegisterOptions{Name: orderactivities.RecordBulkResultActivityName})

	manager := actor.Actor{ID: 2, Role: actor.RoleManager, Name: "Max"}
	env.ExecuteWorkflow(BulkStatusWorkflow, BulkStatusWorkflowInput{
		Actor:   manager,
		Kind:    ordersdomain.KindSale,
		Command: types.BulkStatusInput{IDs: []int64{1, 2, 3}, Status: ordersdomain.StatusCompleted},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result types.BulkResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, types.BulkResult{Updated: 2, Failed: 1}, result)
	require.Equal(t, 1, service.calls[3])

	require.Len(t, sink.entries, 1)
	require.Equal(t, "BULK_SALES_UPDATE", sink.entries[0].Action)
	require.Equal(t, 2, sink.entries[0].Details["updated"])
}
