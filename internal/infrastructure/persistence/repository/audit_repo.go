package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/application/port"
	"github.com/ledgerline/docflow/internal/domain/entity"
	"github.com/ledgerline/docflow/internal/infrastructure/persistence/sqlite"
)

// AuditRepository implements port.AuditRepository. The audit table is
// append-only; there are no update or delete paths.
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) port.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an audit entry
func (r *AuditRepository) Create(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (
			id, document_number, from_status, to_status,
			actor_id, rule_id, kind, comments, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		e.ID,
		e.DocumentNumber,
		e.FromStatus,
		e.ToStatus,
		e.ActorID,
		e.RuleID,
		string(e.Kind),
		e.Comments,
		e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create audit entry",
			zap.String("document", e.DocumentNumber), zap.Error(err))
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

const auditColumns = `
	id, document_number, from_status, to_status,
	actor_id, rule_id, kind, comments, created_at
`

// ListByDocument returns the full trail for one document, oldest first
func (r *AuditRepository) ListByDocument(ctx context.Context, number string) ([]*entity.AuditEntry, error) {
	query := `SELECT` + auditColumns + `
		FROM audit_entries
		WHERE document_number = ?
		ORDER BY created_at ASC, id ASC
	`
	return r.queryEntries(ctx, query, number)
}

// List returns a page of entries across all documents, newest first
func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	query := `SELECT` + auditColumns + `
		FROM audit_entries
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	return r.queryEntries(ctx, query, limit, offset)
}

// HasApprovalAtLevel reports whether the document already carries an
// approval entry citing a rule at the given level. Satisfies
// requires_previous_level checks without a separate progress table.
func (r *AuditRepository) HasApprovalAtLevel(ctx context.Context, number string, documentTypeID int64, level int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM audit_entries ae
			JOIN approval_rules ar ON ar.id = ae.rule_id
			WHERE ae.document_number = ?
				AND ae.kind = ?
				AND ar.document_type_id = ?
				AND ar.approval_level = ?
		)
	`

	var exists bool
	err := r.getExecutor(ctx).QueryRowContext(ctx, query,
		number, string(entity.AuditKindApproval), documentTypeID, level,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check approval level: %w", err)
	}
	return exists, nil
}

func (r *AuditRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*entity.AuditEntry, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query audit entries", zap.Error(err))
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.AuditEntry
	for rows.Next() {
		var (
			e        entity.AuditEntry
			ruleID   sql.NullInt64
			kind     string
			comments sql.NullString
		)
		if err := rows.Scan(
			&e.ID,
			&e.DocumentNumber,
			&e.FromStatus,
			&e.ToStatus,
			&e.ActorID,
			&ruleID,
			&kind,
			&comments,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if ruleID.Valid {
			e.RuleID = &ruleID.Int64
		}
		e.Kind = entity.AuditKind(kind)
		e.Comments = comments.String
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *AuditRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFromContext(ctx, r.db)
}

// Verify interface compliance
var _ port.AuditRepository = (*AuditRepository)(nil)
