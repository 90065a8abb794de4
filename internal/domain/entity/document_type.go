package entity

// Document type codes for the purchasing workflow
const (
	TypePurchaseRequest = "PURCHASE_REQUEST"
	TypePurchaseOrder   = "PURCHASE_ORDER"
	TypeDeliveryReceipt = "DELIVERY_RECEIPT"
)

// DocumentType identifies a class of business document with its own
// status and approval configuration. Identity is immutable once live
// documents reference it.
type DocumentType struct {
	ID                int64  `json:"id"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	RequiresApproval  bool   `json:"requires_approval"`
	AffectsInventory  bool   `json:"affects_inventory"`
	DefaultStatusCode string `json:"default_status_code"`
	IsActive          bool   `json:"is_active"`
}
