package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/mocks"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

func TestValidateBulk(t *testing.T) {
	manager := actor.Actor{ID: 2, Role: actor.RoleManager}
	cashier := actor.Actor{ID: 7, Role: actor.RoleCashier}
	valid := types.BulkStatusInput{IDs: []int64{1}, Status: ordersdomain.StatusCompleted}

	require.NoError(t, validateBulk(manager, valid))
	require.ErrorIs(t, validateBulk(cashier, valid), application.ErrForbidden)
	require.ErrorIs(t, validateBulk(manager, types.BulkStatusInput{IDs: []int64{1}, Status: "shipped"}), application.ErrInvalidInput)
	require.ErrorIs(t, validateBulk(manager, types.BulkStatusInput{Status: ordersdomain.StatusCompleted}), application.ErrInvalidInput)
}

func TestTemporalOrderWorkflows_RequiresClient(t *testing.T) {
	var o *TemporalOrderWorkflows
	_, err := o.BulkUpdateStatus(context.Background(), actor.Actor{ID: 1, Role: actor.RoleAdmin}, ordersdomain.KindSale, types.BulkStatusInput{})
	require.Error(t, err)
}

func TestTemporalOrderWorkflows_AttachesToStartedRun(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "req-1", "run-1"))
	c.On("GetWorkflow", mock.Anything, mock.Anything, "run-1").Return(run)
	run.On("Get", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(1).(*types.BulkResult) = types.BulkResult{Updated: 2, Failed: 1}
		}).
		Return(nil)

	o := NewTemporalOrderWorkflows(c)
	result, err := o.BulkUpdateStatus(context.Background(), actor.Actor{ID: 2, Role: actor.RoleManager}, ordersdomain.KindSale,
		types.BulkStatusInput{IDs: []int64{1, 2, 3}, Status: ordersdomain.StatusCompleted})

	require.NoError(t, err)
	require.Equal(t, types.BulkResult{Updated: 2, Failed: 1}, result)
	c.AssertExpectations(t)
	run.AssertExpectations(t)
}

func TestTemporalOrderWorkflows_RejectsBeforeStarting(t *testing.T) {
	c := &mocks.Client{}
	o := NewTemporalOrderWorkflows(c)

	_, err := o.BulkUpdateStatus(context.Background(), actor.Actor{ID: 7, Role: actor.RoleCashier}, ordersdomain.KindSale,
		types.BulkStatusInput{IDs: []int64{1}, Status: ordersdomain.StatusCompleted})

	require.ErrorIs(t, err, application.ErrForbidden)
	c.AssertNotCalled(t, "ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
