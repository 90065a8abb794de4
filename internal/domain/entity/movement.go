package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementDirection is the stock direction of an inventory movement.
type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"
	MovementOut MovementDirection = "OUT"
)

// InventoryMovement is a stock movement materialized from a document by
// a movement-creating transition, keyed by the source document number so
// a movement-reversing transition can remove the whole batch.
type InventoryMovement struct {
	ID             string            `json:"id"` // uuid
	SourceDocument string            `json:"source_document"`
	ProductCode    string            `json:"product_code"`
	Quantity       decimal.Decimal   `json:"quantity"`
	Direction      MovementDirection `json:"direction"`
	CreatedAt      time.Time         `json:"created_at"`
}
