package port

import (
	"context"
	"time"

	"github.com/ledgerline/docflow/internal/domain/entity"
)

// DocumentTypeRepository reads document type configuration.
// Type rows are administrative data; the engine never writes them.
type DocumentTypeRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.DocumentType, error)
	GetByID(ctx context.Context, id int64) (*entity.DocumentType, error)
}

// StatusConfigRepository reads per-type status configuration and
// explicit transition edges. Returns rows in sort order.
type StatusConfigRepository interface {
	ListByDocumentType(ctx context.Context, documentTypeID int64) ([]*entity.StatusConfig, error)
	ListEdges(ctx context.Context, documentTypeID int64) ([]*entity.TransitionEdge, error)

	// StatusExists reports whether a status code exists at all,
	// configured for the type or not. Distinguishes INVALID_STATUS
	// from STATUS_NOT_CONFIGURED.
	StatusExists(ctx context.Context, code string) (bool, error)
}

// ApprovalRuleRepository reads and creates approval rules. Create must
// reject rules whose amount range overlaps an existing active rule for
// the same (document_type, from_status, to_status, level).
type ApprovalRuleRepository interface {
	ListForTransition(ctx context.Context, documentTypeID int64, fromStatus, toStatus string) ([]*entity.ApprovalRule, error)
	Create(ctx context.Context, rule *entity.ApprovalRule) error
}

// DocumentRepository loads documents and commits status changes.
type DocumentRepository interface {
	GetByNumber(ctx context.Context, number string) (*entity.Document, error)

	// CommitStatus sets doc.Status to toStatus under an optimistic
	// version check. When approvedBy is non-nil the approval columns
	// are stamped as well. Returns a CONCURRENT_MODIFICATION workflow
	// error when the stored version no longer matches doc.Version.
	CommitStatus(ctx context.Context, doc *entity.Document, toStatus string, approvedBy *string, at time.Time) error
}

// AuditRepository appends and queries the immutable transition log.
type AuditRepository interface {
	Create(ctx context.Context, e *entity.AuditEntry) error
	ListByDocument(ctx context.Context, number string) ([]*entity.AuditEntry, error)
	List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error)

	// HasApprovalAtLevel reports whether an approval-kind entry exists
	// for the document citing a rule at the given level. Used by the
	// rule matcher for requires_previous_level checks.
	HasApprovalAtLevel(ctx context.Context, number string, documentTypeID int64, level int) (bool, error)
}

// TransactionManager executes a function within a database transaction.
// It attaches the transaction to the context so nested repository calls
// participate.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
