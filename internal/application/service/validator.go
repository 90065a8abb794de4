package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/domain/entity"
	"github.com/ledgerline/docflow/internal/domain/workflow"
)

// CheckFunc is one business rule for a document type. target is the
// status config of the transition target.
type CheckFunc func(ctx context.Context, doc *entity.Document, target *entity.StatusConfig) error

// PermissionSummary aggregates the effective permissions of an actor
// on a document in its current status.
type PermissionSummary struct {
	CanEdit      bool     `json:"can_edit"`
	EditReason   string   `json:"edit_reason,omitempty"`
	CanDelete    bool     `json:"can_delete"`
	DeleteReason string   `json:"delete_reason,omitempty"`
	NextStatuses []string `json:"next_statuses"`
}

// DocumentValidator dispatches type-specific business rules plus
// universal checks before a transition commits. Unknown document types
// only run the universal checks.
type DocumentValidator interface {
	Register(typeCode string, checks ...CheckFunc)
	Validate(ctx context.Context, doc *entity.Document, target *entity.StatusConfig) error
	CanEdit(doc *entity.Document, current *entity.StatusConfig, actor *entity.Actor) (bool, string)
	CanDelete(doc *entity.Document, current *entity.StatusConfig, actor *entity.Actor) (bool, string)
}

type documentValidator struct {
	checks    map[string][]CheckFunc
	universal []CheckFunc
	logger    *zap.Logger
}

// NewDocumentValidator creates a validator with the built-in purchasing
// rule sets registered.
func NewDocumentValidator(logger *zap.Logger) DocumentValidator {
	v := &documentValidator{
		checks: make(map[string][]CheckFunc),
		logger: logger,
	}

	v.universal = append(v.universal, checkLocationCompatible)

	v.Register(entity.TypePurchaseRequest, checkRequestHasLines, checkRequestLinesQuantified)
	v.Register(entity.TypePurchaseOrder, checkOrderDeliveryDate)
	v.Register(entity.TypeDeliveryReceipt, checkReceiptLinesReceived, checkReceiptRejectionsTyped)

	return v
}

// Register adds business rules for a document type code.
func (v *documentValidator) Register(typeCode string, checks ...CheckFunc) {
	v.checks[typeCode] = append(v.checks[typeCode], checks...)
}

// Validate runs universal checks then type-specific rules, returning
// the first failure.
func (v *documentValidator) Validate(ctx context.Context, doc *entity.Document, target *entity.StatusConfig) error {
	for _, check := range v.universal {
		if err := check(ctx, doc, target); err != nil {
			return err
		}
	}
	for _, check := range v.checks[doc.TypeCode] {
		if err := check(ctx, doc, target); err != nil {
			return err
		}
	}
	return nil
}

// CanEdit is status-config-driven first, then escalates to permission
// and ownership checks.
func (v *documentValidator) CanEdit(doc *entity.Document, current *entity.StatusConfig, actor *entity.Actor) (bool, string) {
	if current == nil {
		return false, "current status is not configured for this document type"
	}
	if !current.AllowsEditing {
		if current.IsFinal && actor != nil && actor.HasPermission(entity.PermEditCompleted) {
			return true, "final-status editing granted by permission"
		}
		return false, "status " + current.StatusCode + " does not allow editing"
	}
	if actor == nil {
		return false, "no acting user"
	}
	if actor.ID == doc.Owner || actor.HasPermission(entity.PermEditAnyDocument) {
		return true, ""
	}
	return false, "only the owner may edit this document"
}

// CanDelete mirrors CanEdit for deletion; there is no final-status
// override for deletes.
func (v *documentValidator) CanDelete(doc *entity.Document, current *entity.StatusConfig, actor *entity.Actor) (bool, string) {
	if current == nil {
		return false, "current status is not configured for this document type"
	}
	if !current.AllowsDeletion {
		return false, "status " + current.StatusCode + " does not allow deletion"
	}
	if actor == nil {
		return false, "no acting user"
	}
	if actor.ID == doc.Owner || actor.HasPermission(entity.PermDeleteAnyDocument) {
		return true, ""
	}
	return false, "only the owner may delete this document"
}

// checkLocationCompatible is the universal rule: purchasing documents
// move stock, so they require a warehouse-class location.
func checkLocationCompatible(_ context.Context, doc *entity.Document, _ *entity.StatusConfig) error {
	switch doc.TypeCode {
	case entity.TypePurchaseRequest, entity.TypePurchaseOrder, entity.TypeDeliveryReceipt:
		if doc.LocationKind != entity.LocationWarehouse {
			return workflow.NewError(workflow.CodeBusinessRuleViolation,
				"document %s requires a warehouse location, got %s", doc.Number, doc.LocationKind)
		}
	}
	return nil
}

// checkRequestHasLines blocks leaving the initial status with an empty
// request.
func checkRequestHasLines(_ context.Context, doc *entity.Document, target *entity.StatusConfig) error {
	if target.IsCancellation {
		return nil
	}
	if len(doc.Lines) == 0 {
		return workflow.NewError(workflow.CodeBusinessRuleViolation,
			"purchase request %s must have at least one line before submission", doc.Number)
	}
	return nil
}

// checkRequestLinesQuantified requires quantities on every line before
// a completion-stage transition.
func checkRequestLinesQuantified(_ context.Context, doc *entity.Document, target *entity.StatusConfig) error {
	if target.SemanticType != entity.SemanticCompletion && !target.IsFinal {
		return nil
	}
	for _, line := range doc.Lines {
		if line.Quantity.IsZero() {
			return workflow.NewError(workflow.CodeBusinessRuleViolation,
				"purchase request %s line %s has no quantity", doc.Number, line.ProductCode)
		}
	}
	return nil
}

// checkOrderDeliveryDate requires a delivery date before any
// movement-creating transition.
func checkOrderDeliveryDate(_ context.Context, doc *entity.Document, target *entity.StatusConfig) error {
	if !target.CreatesInventoryMovements {
		return nil
	}
	if doc.DeliveryDate == nil {
		return workflow.NewError(workflow.CodeBusinessRuleViolation,
			"purchase order %s needs a delivery date before %s", doc.Number, target.StatusCode)
	}
	return nil
}

// checkReceiptLinesReceived requires a received quantity on every line
// before completion.
func checkReceiptLinesReceived(_ context.Context, doc *entity.Document, target *entity.StatusConfig) error {
	if !target.IsFinal && target.SemanticType != entity.SemanticCompletion {
		return nil
	}
	for _, line := range doc.Lines {
		if line.ReceivedQuantity == nil {
			return workflow.NewError(workflow.CodeBusinessRuleViolation,
				"delivery receipt %s line %s has no received quantity", doc.Number, line.ProductCode)
		}
	}
	return nil
}

// checkReceiptRejectionsTyped requires an issue type on every
// quality-rejected line.
func checkReceiptRejectionsTyped(_ context.Context, doc *entity.Document, _ *entity.StatusConfig) error {
	for _, line := range doc.Lines {
		if line.QualityState == entity.QualityRejected && line.IssueType == "" {
			return workflow.NewError(workflow.CodeBusinessRuleViolation,
				"delivery receipt %s line %s is rejected without an issue type", doc.Number, line.ProductCode)
		}
	}
	return nil
}
