package port

import (
	"context"

	"github.com/ledgerline/docflow/internal/domain/entity"
)

// InventoryService is the inventory collaborator invoked by
// post-transition actions. Movement rows are keyed by the source
// document number.
type InventoryService interface {
	CreateMovementsForDocument(ctx context.Context, doc *entity.Document) error

	// DeleteMovementsBySourceDocument removes every movement created
	// from the document and returns the count. Zero remaining is not
	// an error; reversal is idempotent.
	DeleteMovementsBySourceDocument(ctx context.Context, number string) (int64, error)
}

// Notifier delivers best-effort status-change notifications. Failures
// are reported as side-effect warnings, never as transition errors.
type Notifier interface {
	NotifyStatusChanged(ctx context.Context, doc *entity.Document, fromStatus, toStatus, actorID string) error
}

// FiscalHook is triggered when a document reaches a final status.
// The fiscal integration is an external collaborator; the engine only
// signals it.
type FiscalHook interface {
	OnDocumentFinalized(ctx context.Context, doc *entity.Document) error
}
