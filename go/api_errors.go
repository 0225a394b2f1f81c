package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	activityapp "github.com/Apurer/go-pos-backoffice/internal/domains/activity/application"
	catalogapp "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/ports"
	dashboardapp "github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/application"
	ordersapp "github.com/Apurer/go-pos-backoffice/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	partyapp "github.com/Apurer/go-pos-backoffice/internal/domains/parties/application"
	partyports "github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
	userapp "github.com/Apurer/go-pos-backoffice/internal/domains/users/application"
	userdomain "github.com/Apurer/go-pos-backoffice/internal/domains/users/domain"
	userports "github.com/Apurer/go-pos-backoffice/internal/domains/users/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
	apierrors "github.com/Apurer/go-pos-backoffice/internal/shared/errors"
)

// problems maps every bounded context's error kinds onto RFC 7807 responses.
var problems = apierrors.NewChainedResponder("",
	apierrors.Match(apierrors.ErrInsufficientStock, ordersapp.ErrInsufficientStock),
	apierrors.Match(apierrors.ErrInvalidState, ordersapp.ErrInvalidState),
	apierrors.Match(apierrors.ErrNotFound,
		ordersports.ErrNotFound,
		ordersports.ErrItemNotFound,
		ordersports.ErrInventoryRecordNotFound,
		ordersports.ErrActorNotFound,
		ordersports.ErrCounterpartyNotFound,
		catalogports.ErrNotFound,
		catalogports.ErrCategoryNotFound,
		partyports.ErrNotFound,
		userports.ErrNotFound,
	),
	apierrors.Match(apierrors.ErrConflict,
		ordersapp.ErrConflict,
		catalogports.ErrConflict,
		partyports.ErrConflict,
		userapp.ErrConflict,
		userports.ErrConflict,
	),
	apierrors.Match(apierrors.ErrForbidden,
		ordersapp.ErrForbidden,
		dashboardapp.ErrForbidden,
		activityapp.ErrForbidden,
	),
	apierrors.Match(apierrors.ErrUnauthorized, userapp.ErrAuthentication),
	apierrors.Match(apierrors.ErrValidation,
		ordersapp.ErrInvalidInput,
		catalogapp.ErrInvalidInput,
		partyapp.ErrInvalidInput,
		userapp.ErrInvalidInput,
		dashboardapp.ErrInvalidInput,
		activityapp.ErrInvalidInput,
		ordersdomain.ErrInvalidStatus,
		ordersdomain.ErrInvalidPayment,
		userdomain.ErrInvalidRole,
		actor.ErrInvalidRole,
	),
)

// respondError answers transport-level failures such as malformed bodies.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusUnauthorized:
		problem = apierrors.ErrUnauthorized.WithDetail(err.Error())
	case http.StatusForbidden:
		problem = apierrors.ErrForbidden.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal
	}
	problems.Respond(c, problem)
}

// respondServiceError answers errors returned by the application services.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problems.RespondError(c, err)
}
