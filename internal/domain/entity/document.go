package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location kinds. Purchasing documents require a warehouse-class location.
const (
	LocationWarehouse = "WAREHOUSE"
	LocationStore     = "STORE"
	LocationOffice    = "OFFICE"
)

// Quality states for received lines.
const (
	QualityAccepted = "ACCEPTED"
	QualityRejected = "REJECTED"
)

// DocumentLine is a single line item. The engine reads lines for
// business-rule validation and movement creation only; line CRUD is
// owned by the caller.
type DocumentLine struct {
	ID               int64            `json:"id"`
	DocumentID       int64            `json:"document_id"`
	ProductCode      string           `json:"product_code"`
	Description      string           `json:"description"`
	Quantity         decimal.Decimal  `json:"quantity"`
	ReceivedQuantity *decimal.Decimal `json:"received_quantity,omitempty"`
	QualityState     string           `json:"quality_state,omitempty"`
	IssueType        string           `json:"issue_type,omitempty"`
}

// Document is a business document with one authoritative status field.
// Status is mutated exclusively through the transition engine; Version
// is the optimistic concurrency token bumped on every committed
// transition.
type Document struct {
	ID             int64  `json:"id"`
	Number         string `json:"number"`
	DocumentTypeID int64  `json:"document_type_id"`
	TypeCode       string `json:"type_code"`
	Status         string `json:"status"`

	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`

	LocationID   int64  `json:"location_id"`
	LocationKind string `json:"location_kind"`

	DeliveryDate *time.Time `json:"delivery_date,omitempty"`

	Owner      string     `json:"owner"`
	ApprovedBy *string    `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	Version int64 `json:"version"`

	Lines []DocumentLine `json:"lines,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasDocumentType reports whether the document carries a type reference.
func (d *Document) HasDocumentType() bool {
	return d.DocumentTypeID != 0 && d.TypeCode != ""
}
