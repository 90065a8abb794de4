package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/application/port"
	"github.com/ledgerline/docflow/internal/domain/entity"
	"github.com/ledgerline/docflow/internal/domain/workflow"
	"github.com/ledgerline/docflow/internal/infrastructure/persistence/sqlite"
)

// ApprovalRuleRepository implements port.ApprovalRuleRepository.
// Amounts are stored as TEXT to keep decimal precision exact in SQLite.
type ApprovalRuleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApprovalRuleRepository creates a new approval rule repository
func NewApprovalRuleRepository(db *sql.DB, logger *zap.Logger) port.ApprovalRuleRepository {
	return &ApprovalRuleRepository{
		db:     db,
		logger: logger,
	}
}

const approvalRuleColumns = `
	id, document_type_id, from_status, to_status, approval_level,
	min_amount, max_amount, currency,
	approver_type, approver_user_id, approver_role, approver_permission,
	requires_previous_level, rejection_allowed, sort_order, is_active
`

// ListForTransition returns every rule configured for the transition,
// active or not, ordered by level then sort order.
func (r *ApprovalRuleRepository) ListForTransition(ctx context.Context, documentTypeID int64, fromStatus, toStatus string) ([]*entity.ApprovalRule, error) {
	query := `SELECT` + approvalRuleColumns + `
		FROM approval_rules
		WHERE document_type_id = ? AND from_status = ? AND to_status = ?
		ORDER BY approval_level ASC, sort_order ASC, id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, documentTypeID, fromStatus, toStatus)
	if err != nil {
		r.logger.Error("Failed to list approval rules", zap.Error(err))
		return nil, fmt.Errorf("failed to list approval rules: %w", err)
	}
	defer rows.Close()

	var rules []*entity.ApprovalRule
	for rows.Next() {
		rule, err := scanApprovalRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// Create inserts a rule after checking its amount range against every
// existing active rule for the same transition and level. Overlapping
// ranges are rejected so matching stays deterministic.
func (r *ApprovalRuleRepository) Create(ctx context.Context, rule *entity.ApprovalRule) error {
	existing, err := r.ListForTransition(ctx, rule.DocumentTypeID, rule.FromStatus, rule.ToStatus)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if !other.IsActive || other.ApprovalLevel != rule.ApprovalLevel {
			continue
		}
		if rule.Overlaps(other) {
			return workflow.NewError(workflow.CodeRuleOverlap,
				"amount range of new rule overlaps rule %d at level %d", other.ID, other.ApprovalLevel)
		}
	}

	query := `
		INSERT INTO approval_rules (
			document_type_id, from_status, to_status, approval_level,
			min_amount, max_amount, currency,
			approver_type, approver_user_id, approver_role, approver_permission,
			requires_previous_level, rejection_allowed, sort_order, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var maxAmount sql.NullString
	if rule.MaxAmount != nil {
		maxAmount = sql.NullString{String: rule.MaxAmount.String(), Valid: true}
	}

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		rule.DocumentTypeID,
		rule.FromStatus,
		rule.ToStatus,
		rule.ApprovalLevel,
		rule.MinAmount.String(),
		maxAmount,
		rule.Currency,
		string(rule.ApproverType),
		rule.ApproverUserID,
		rule.ApproverRole,
		rule.ApproverPermission,
		rule.RequiresPreviousLevel,
		rule.RejectionAllowed,
		rule.SortOrder,
		rule.IsActive,
	)
	if err != nil {
		r.logger.Error("Failed to create approval rule", zap.Error(err))
		return fmt.Errorf("failed to create approval rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rule.ID = id
	return nil
}

func scanApprovalRule(rows *sql.Rows) (*entity.ApprovalRule, error) {
	var (
		rule         entity.ApprovalRule
		minAmount    string
		maxAmount    sql.NullString
		approverType string
	)
	if err := rows.Scan(
		&rule.ID,
		&rule.DocumentTypeID,
		&rule.FromStatus,
		&rule.ToStatus,
		&rule.ApprovalLevel,
		&minAmount,
		&maxAmount,
		&rule.Currency,
		&approverType,
		&rule.ApproverUserID,
		&rule.ApproverRole,
		&rule.ApproverPermission,
		&rule.RequiresPreviousLevel,
		&rule.RejectionAllowed,
		&rule.SortOrder,
		&rule.IsActive,
	); err != nil {
		return nil, fmt.Errorf("failed to scan approval rule: %w", err)
	}

	min, err := decimal.NewFromString(minAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid min_amount for rule %d: %w", rule.ID, err)
	}
	rule.MinAmount = min
	if maxAmount.Valid {
		max, err := decimal.NewFromString(maxAmount.String)
		if err != nil {
			return nil, fmt.Errorf("invalid max_amount for rule %d: %w", rule.ID, err)
		}
		rule.MaxAmount = &max
	}
	rule.ApproverType = entity.ApproverType(approverType)

	return &rule, nil
}

// getExecutor returns appropriate executor based on context
func (r *ApprovalRuleRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFromContext(ctx, r.db)
}

// Verify interface compliance
var _ port.ApprovalRuleRepository = (*ApprovalRuleRepository)(nil)
