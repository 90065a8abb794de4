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

// StatusConfigRepository implements port.StatusConfigRepository
type StatusConfigRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStatusConfigRepository creates a new status config repository
func NewStatusConfigRepository(db *sql.DB, logger *zap.Logger) port.StatusConfigRepository {
	return &StatusConfigRepository{
		db:     db,
		logger: logger,
	}
}

// ListByDocumentType returns the status configuration rows for a
// document type in sort order, joined with the shared status catalog
// for the denormalized status code.
func (r *StatusConfigRepository) ListByDocumentType(ctx context.Context, documentTypeID int64) ([]*entity.StatusConfig, error) {
	query := `
		SELECT sc.id, sc.document_type_id, sc.status_id, s.code,
			sc.sort_order,
			sc.is_initial, sc.is_final, sc.is_cancellation,
			sc.allows_editing, sc.allows_deletion,
			sc.creates_inventory_movements, sc.reverses_inventory_movements,
			sc.semantic_type, sc.is_active
		FROM status_configs sc
		JOIN statuses s ON s.id = sc.status_id
		WHERE sc.document_type_id = ?
		ORDER BY sc.sort_order ASC, sc.id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, documentTypeID)
	if err != nil {
		r.logger.Error("Failed to list status configs", zap.Error(err))
		return nil, fmt.Errorf("failed to list status configs: %w", err)
	}
	defer rows.Close()

	var configs []*entity.StatusConfig
	for rows.Next() {
		var cfg entity.StatusConfig
		var semanticType string
		if err := rows.Scan(
			&cfg.ID,
			&cfg.DocumentTypeID,
			&cfg.StatusID,
			&cfg.StatusCode,
			&cfg.SortOrder,
			&cfg.IsInitial,
			&cfg.IsFinal,
			&cfg.IsCancellation,
			&cfg.AllowsEditing,
			&cfg.AllowsDeletion,
			&cfg.CreatesInventoryMovements,
			&cfg.ReversesInventoryMovements,
			&semanticType,
			&cfg.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan status config: %w", err)
		}
		cfg.SemanticType = entity.SemanticType(semanticType)
		configs = append(configs, &cfg)
	}

	return configs, rows.Err()
}

// ListEdges returns the explicit transition edges for a document type
func (r *StatusConfigRepository) ListEdges(ctx context.Context, documentTypeID int64) ([]*entity.TransitionEdge, error) {
	query := `
		SELECT id, document_type_id, from_status, to_status
		FROM transition_edges
		WHERE document_type_id = ?
		ORDER BY id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, documentTypeID)
	if err != nil {
		r.logger.Error("Failed to list transition edges", zap.Error(err))
		return nil, fmt.Errorf("failed to list transition edges: %w", err)
	}
	defer rows.Close()

	var edges []*entity.TransitionEdge
	for rows.Next() {
		var edge entity.TransitionEdge
		if err := rows.Scan(&edge.ID, &edge.DocumentTypeID, &edge.FromStatus, &edge.ToStatus); err != nil {
			return nil, fmt.Errorf("failed to scan transition edge: %w", err)
		}
		edges = append(edges, &edge)
	}

	return edges, rows.Err()
}

// StatusExists reports whether a status code exists in the shared
// catalog, configured for any type or not.
func (r *StatusConfigRepository) StatusExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM statuses WHERE code = ?)`, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check status existence: %w", err)
	}
	return exists, nil
}

// getExecutor returns appropriate executor based on context
func (r *StatusConfigRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFromContext(ctx, r.db)
}

// Verify interface compliance
var _ port.StatusConfigRepository = (*StatusConfigRepository)(nil)
