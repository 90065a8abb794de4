package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/application/port"
	"github.com/ledgerline/docflow/internal/domain/entity"
	"github.com/ledgerline/docflow/internal/infrastructure/persistence/sqlite"
)

// MovementStore materializes inventory movements from documents. It is
// the built-in port.InventoryService; deployments integrating a full
// stock system swap in their own implementation.
type MovementStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMovementStore creates a sqlite-backed movement store
func NewMovementStore(db *sql.DB, logger *zap.Logger) *MovementStore {
	return &MovementStore{
		db:     db,
		logger: logger,
	}
}

// CreateMovementsForDocument writes one IN movement per received line.
// Lines without a received quantity, and rejected lines, move no stock.
func (s *MovementStore) CreateMovementsForDocument(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO inventory_movements (
			id, source_document, product_code, quantity, direction, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	created := 0
	for _, line := range doc.Lines {
		if line.ReceivedQuantity == nil || line.ReceivedQuantity.IsZero() {
			continue
		}
		if line.QualityState == entity.QualityRejected {
			continue
		}
		_, err := s.getExecutor(ctx).ExecContext(ctx, query,
			uuid.NewString(),
			doc.Number,
			line.ProductCode,
			line.ReceivedQuantity.String(),
			string(entity.MovementIn),
			now,
		)
		if err != nil {
			s.logger.Error("Failed to create inventory movement",
				zap.String("document", doc.Number),
				zap.String("product", line.ProductCode),
				zap.Error(err))
			return fmt.Errorf("failed to create inventory movement: %w", err)
		}
		created++
	}

	s.logger.Info("Created inventory movements",
		zap.String("document", doc.Number), zap.Int("count", created))
	return nil
}

// DeleteMovementsBySourceDocument removes every movement keyed to the
// document. Deleting zero rows is fine; reversal is idempotent.
func (s *MovementStore) DeleteMovementsBySourceDocument(ctx context.Context, number string) (int64, error) {
	result, err := s.getExecutor(ctx).ExecContext(ctx,
		`DELETE FROM inventory_movements WHERE source_document = ?`, number,
	)
	if err != nil {
		s.logger.Error("Failed to delete inventory movements",
			zap.String("document", number), zap.Error(err))
		return 0, fmt.Errorf("failed to delete inventory movements: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// ListBySourceDocument returns the movements created from a document
func (s *MovementStore) ListBySourceDocument(ctx context.Context, number string) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, source_document, product_code, quantity, direction, created_at
		FROM inventory_movements
		WHERE source_document = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.getExecutor(ctx).QueryContext(ctx, query, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory movements: %w", err)
	}
	defer rows.Close()

	var movements []*entity.InventoryMovement
	for rows.Next() {
		var (
			m         entity.InventoryMovement
			quantity  string
			direction string
		)
		if err := rows.Scan(&m.ID, &m.SourceDocument, &m.ProductCode, &quantity, &direction, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory movement: %w", err)
		}
		qty, err := decimal.NewFromString(quantity)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity for movement %s: %w", m.ID, err)
		}
		m.Quantity = qty
		m.Direction = entity.MovementDirection(direction)
		movements = append(movements, &m)
	}

	return movements, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (s *MovementStore) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFromContext(ctx, s.db)
}

// Verify interface compliance
var _ port.InventoryService = (*MovementStore)(nil)
