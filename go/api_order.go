package posserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-pos-backoffice/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

const idempotencyHeader = "Idempotency-Key"

// OrderAPI serves one order kind: sales or purchases, with their line items.
type OrderAPI struct {
	service   ordersports.Service
	workflows ordersports.WorkflowOrchestrator
	kind      ordersdomain.Kind
}

// NewOrderAPI builds the handlers for kind. Bulk status updates go through
// workflows so they survive restarts when Temporal is configured.
func NewOrderAPI(service ordersports.Service, workflows ordersports.WorkflowOrchestrator, kind ordersdomain.Kind) OrderAPI {
	return OrderAPI{service: service, workflows: workflows, kind: kind}
}

// Post /api/v1/sales, /api/v1/purchases
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()
	a := currentActor(c)

	var (
		order *ordersdomain.Order
		err   error
	)
	switch api.kind {
	case ordersdomain.KindSale:
		var payload orderhttpmapper.CreateSale
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		input, mapErr := orderhttpmapper.ToCreateSaleInput(payload, c.GetHeader(idempotencyHeader))
		if mapErr != nil {
			respondServiceError(c, mapErr)
			return
		}
		order, err = api.service.CreateSale(ctx, a, input)
	default:
		var payload orderhttpmapper.CreatePurchase
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		order, err = api.service.CreatePurchase(ctx, a, types.CreatePurchaseInput{SupplierID: payload.SupplierID})
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}

// Get /api/v1/sales, /api/v1/purchases
// Optional query: status, counterpartyId, from, to
func (api *OrderAPI) ListOrders(c *gin.Context) {
	var input types.ListOrdersInput
	if raw := c.Query("status"); raw != "" {
		status, err := ordersdomain.ParseStatus(raw)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		input.Status = &status
	}
	if raw := c.Query("counterpartyId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, errInvalidID("counterpartyId"))
			return
		}
		input.CounterpartyID = &id
	}
	var ok bool
	if input.From, ok = queryTime(c, "from", false); !ok {
		return
	}
	if input.To, ok = queryTime(c, "to", true); !ok {
		return
	}
	orders, err := api.service.ListOrders(c.Request.Context(), currentActor(c), api.kind, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), currentActor(c), api.kind, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

func (api *OrderAPI) UpdateOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload orderhttpmapper.UpdateOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input, err := orderhttpmapper.ToUpdateOrderInput(payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	order, err := api.service.UpdateOrder(c.Request.Context(), currentActor(c), api.kind, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

func (api *OrderAPI) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteOrder(c.Request.Context(), currentActor(c), api.kind, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /api/v1/sales/bulk-status, /api/v1/purchases/bulk-status
// Per-id failures are counted, not reported as an error.
func (api *OrderAPI) BulkUpdateStatus(c *gin.Context) {
	var payload orderhttpmapper.BulkStatus
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input, err := orderhttpmapper.ToBulkStatusInput(payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	result, err := api.bulkUpdateStatus(c.Request.Context(), currentActor(c), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (api *OrderAPI) bulkUpdateStatus(ctx context.Context, a actor.Actor, input types.BulkStatusInput) (types.BulkResult, error) {
	if api.workflows != nil {
		return api.workflows.BulkUpdateStatus(ctx, a, api.kind, input)
	}
	return api.service.BulkUpdateStatus(ctx, a, api.kind, input)
}

// Post /api/v1/sale-items, /api/v1/purchase-items
func (api *OrderAPI) AddItem(c *gin.Context) {
	var payload orderhttpmapper.AddItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := api.service.AddItem(c.Request.Context(), currentActor(c), api.kind, orderhttpmapper.ToAddItemInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainItem(item))
}

// Get /api/v1/sale-items, /api/v1/purchase-items
// Optional query: orderId
func (api *OrderAPI) ListItems(c *gin.Context) {
	var orderID *int64
	if raw := c.Query("orderId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, errInvalidID("orderId"))
			return
		}
		orderID = &id
	}
	items, err := api.service.ListItems(c.Request.Context(), currentActor(c), api.kind, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainItems(items))
}

func (api *OrderAPI) GetItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := api.service.GetItem(c.Request.Context(), currentActor(c), api.kind, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainItem(item))
}

func (api *OrderAPI) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload orderhttpmapper.UpdateItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := api.service.UpdateItem(c.Request.Context(), currentActor(c), api.kind, id, orderhttpmapper.ToUpdateItemInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainItem(item))
}

func (api *OrderAPI) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteItem(c.Request.Context(), currentActor(c), api.kind, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /api/v1/sales/validate-payment
func (api *OrderAPI) ValidatePayment(c *gin.Context) {
	var payload orderhttpmapper.ValidatePayment
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	result, err := api.service.ValidatePayment(c.Request.Context(), currentActor(c), payload.SaleID, payload.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromPaymentValidation(result))
}

// Get /api/v1/sales/customer/:id
func (api *OrderAPI) CustomerHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	orders, err := api.service.CustomerHistory(c.Request.Context(), currentActor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// queryTime reads an optional date or RFC 3339 timestamp. A bare date used as
// an upper bound covers the whole day.
func queryTime(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", name))
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}
