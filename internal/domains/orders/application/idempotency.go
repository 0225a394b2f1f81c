package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
)

type normalizedSale struct {
	ActorID       int64            `json:"actorId"`
	CustomerID    *int64           `json:"customerId"`
	PaymentMethod string           `json:"paymentMethod"`
	Hold          bool             `json:"hold"`
	Items         []normalizedLine `json:"items"`
}

type normalizedLine struct {
	InventoryRecordID int64   `json:"inventoryRecordId"`
	Quantity          int     `json:"quantity"`
	UnitPrice         *string `json:"unitPrice"`
}

// FingerprintCreateSale hashes the checkout payload, excluding the idempotency
// key, so replays can be told apart from key reuse. Line order does not matter.
func FingerprintCreateSale(input types.CreateSaleInput) (string, error) {
	normalized := normalizedSale{
		ActorID:       input.ActorID,
		CustomerID:    input.CustomerID,
		PaymentMethod: string(input.PaymentMethod),
		Hold:          input.Hold,
		Items:         make([]normalizedLine, 0, len(input.Items)),
	}
	for _, item := range input.Items {
		line := normalizedLine{InventoryRecordID: item.InventoryRecordID, Quantity: item.Quantity}
		if item.UnitPrice != nil {
			price := item.UnitPrice.StringFixed(2)
			line.UnitPrice = &price
		}
		normalized.Items = append(normalized.Items, line)
	}
	sort.Slice(normalized.Items, func(i, j int) bool {
		return normalized.Items[i].InventoryRecordID < normalized.Items[j].InventoryRecordID
	})
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
