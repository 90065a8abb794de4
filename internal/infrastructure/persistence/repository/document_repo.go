package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/application/port"
	"github.com/ledgerline/docflow/internal/domain/entity"
	"github.com/ledgerline/docflow/internal/domain/workflow"
	"github.com/ledgerline/docflow/internal/infrastructure/persistence/sqlite"
)

// DocumentRepository implements port.DocumentRepository
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// GetByNumber retrieves a document and its lines by document number.
// Returns nil without error when the document does not exist.
func (r *DocumentRepository) GetByNumber(ctx context.Context, number string) (*entity.Document, error) {
	query := `
		SELECT d.id, d.number, d.document_type_id, dt.code, d.status,
			d.total_amount, d.currency,
			d.location_id, d.location_kind, d.delivery_date,
			d.owner, d.approved_by, d.approved_at,
			d.version, d.created_at, d.updated_at
		FROM documents d
		LEFT JOIN document_types dt ON dt.id = d.document_type_id
		WHERE d.number = ?
	`

	var (
		doc          entity.Document
		typeCode     sql.NullString
		totalAmount  string
		deliveryDate sql.NullTime
		approvedBy   sql.NullString
		approvedAt   sql.NullTime
	)
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, number).Scan(
		&doc.ID,
		&doc.Number,
		&doc.DocumentTypeID,
		&typeCode,
		&doc.Status,
		&totalAmount,
		&doc.Currency,
		&doc.LocationID,
		&doc.LocationKind,
		&deliveryDate,
		&doc.Owner,
		&approvedBy,
		&approvedAt,
		&doc.Version,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.String("number", number), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.TypeCode = typeCode.String
	amount, err := decimal.NewFromString(totalAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid total_amount for document %s: %w", number, err)
	}
	doc.TotalAmount = amount
	if deliveryDate.Valid {
		doc.DeliveryDate = &deliveryDate.Time
	}
	if approvedBy.Valid {
		doc.ApprovedBy = &approvedBy.String
	}
	if approvedAt.Valid {
		doc.ApprovedAt = &approvedAt.Time
	}

	lines, err := r.listLines(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines

	return &doc, nil
}

// CommitStatus updates the document's status under an optimistic version
// check. A zero-row update means another writer committed first.
func (r *DocumentRepository) CommitStatus(ctx context.Context, doc *entity.Document, toStatus string, approvedBy *string, at time.Time) error {
	query := `
		UPDATE documents
		SET status = ?,
			approved_by = COALESCE(?, approved_by),
			approved_at = COALESCE(?, approved_at),
			version = version + 1,
			updated_at = ?
		WHERE id = ? AND version = ?
	`

	var approvedAt interface{}
	if approvedBy != nil {
		approvedAt = at
	}
	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		toStatus, approvedBy, approvedAt, at, doc.ID, doc.Version,
	)
	if err != nil {
		r.logger.Error("Failed to commit status", zap.String("number", doc.Number), zap.Error(err))
		return fmt.Errorf("failed to commit status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return workflow.NewError(workflow.CodeConcurrentModification,
			"document %s was modified concurrently", doc.Number)
	}

	doc.Status = toStatus
	doc.Version++
	doc.UpdatedAt = at
	if approvedBy != nil {
		doc.ApprovedBy = approvedBy
		doc.ApprovedAt = &at
	}
	return nil
}

func (r *DocumentRepository) listLines(ctx context.Context, documentID int64) ([]entity.DocumentLine, error) {
	query := `
		SELECT id, document_id, product_code, description,
			quantity, received_quantity, quality_state, issue_type
		FROM document_lines
		WHERE document_id = ?
		ORDER BY id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document lines: %w", err)
	}
	defer rows.Close()

	var lines []entity.DocumentLine
	for rows.Next() {
		var (
			line         entity.DocumentLine
			quantity     string
			receivedQty  sql.NullString
			qualityState sql.NullString
			issueType    sql.NullString
		)
		if err := rows.Scan(
			&line.ID,
			&line.DocumentID,
			&line.ProductCode,
			&line.Description,
			&quantity,
			&receivedQty,
			&qualityState,
			&issueType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document line: %w", err)
		}

		qty, err := decimal.NewFromString(quantity)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity for line %d: %w", line.ID, err)
		}
		line.Quantity = qty
		if receivedQty.Valid {
			recv, err := decimal.NewFromString(receivedQty.String)
			if err != nil {
				return nil, fmt.Errorf("invalid received_quantity for line %d: %w", line.ID, err)
			}
			line.ReceivedQuantity = &recv
		}
		line.QualityState = qualityState.String
		line.IssueType = issueType.String

		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *DocumentRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFromContext(ctx, r.db)
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
