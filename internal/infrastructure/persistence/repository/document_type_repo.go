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

// DocumentTypeRepository implements port.DocumentTypeRepository
type DocumentTypeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentTypeRepository creates a new document type repository
func NewDocumentTypeRepository(db *sql.DB, logger *zap.Logger) port.DocumentTypeRepository {
	return &DocumentTypeRepository{
		db:     db,
		logger: logger,
	}
}

const documentTypeColumns = `
	id, code, name, requires_approval, affects_inventory,
	default_status_code, is_active
`

// GetByCode retrieves a document type by its code
func (r *DocumentTypeRepository) GetByCode(ctx context.Context, code string) (*entity.DocumentType, error) {
	query := `SELECT` + documentTypeColumns + `FROM document_types WHERE code = ?`
	return r.scanOne(r.getExecutor(ctx).QueryRowContext(ctx, query, code))
}

// GetByID retrieves a document type by ID
func (r *DocumentTypeRepository) GetByID(ctx context.Context, id int64) (*entity.DocumentType, error) {
	query := `SELECT` + documentTypeColumns + `FROM document_types WHERE id = ?`
	return r.scanOne(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
}

func (r *DocumentTypeRepository) scanOne(row *sql.Row) (*entity.DocumentType, error) {
	var dt entity.DocumentType
	err := row.Scan(
		&dt.ID,
		&dt.Code,
		&dt.Name,
		&dt.RequiresApproval,
		&dt.AffectsInventory,
		&dt.DefaultStatusCode,
		&dt.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to scan document type", zap.Error(err))
		return nil, fmt.Errorf("failed to get document type: %w", err)
	}
	return &dt, nil
}

// getExecutor returns appropriate executor based on context
func (r *DocumentTypeRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFromContext(ctx, r.db)
}

// Verify interface compliance
var _ port.DocumentTypeRepository = (*DocumentTypeRepository)(nil)
