package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/application/port"
	"github.com/ledgerline/docflow/internal/domain/entity"
	"github.com/ledgerline/docflow/internal/domain/workflow"
)

// Authorization is the successful outcome of rule matching, carried
// forward to the audit entry.
type Authorization struct {
	RuleID       int64               `json:"rule_id"`
	ApproverType entity.ApproverType `json:"approver_type"`
	Level        int                 `json:"level"`
}

// RuleMatcher selects the single applicable approval rule for a
// transition and checks the acting user against its approver
// specification.
type RuleMatcher interface {
	Match(ctx context.Context, doc *entity.Document, toStatus string, actor *entity.Actor) (*Authorization, error)
}

type ruleMatcher struct {
	ruleRepo  port.ApprovalRuleRepository
	auditRepo port.AuditRepository
	logger    *zap.Logger
}

// NewRuleMatcher creates a matcher backed by the rule and audit
// repositories. Audit lookups satisfy requires_previous_level checks;
// there is no separate approval-progress table.
func NewRuleMatcher(ruleRepo port.ApprovalRuleRepository, auditRepo port.AuditRepository, logger *zap.Logger) RuleMatcher {
	return &ruleMatcher{
		ruleRepo:  ruleRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Match finds the applicable rule for (doc.Status -> toStatus) at the
// document's amount. Among amount matches the first by sort order wins;
// overlap is rejected at rule creation, so in a consistent configuration
// at most one rule matches per level.
func (m *ruleMatcher) Match(ctx context.Context, doc *entity.Document, toStatus string, actor *entity.Actor) (*Authorization, error) {
	rules, err := m.ruleRepo.ListForTransition(ctx, doc.DocumentTypeID, doc.Status, toStatus)
	if err != nil {
		return nil, fmt.Errorf("list approval rules: %w", err)
	}

	candidates := make([]*entity.ApprovalRule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsActive && rule.Contains(doc.TotalAmount) {
			candidates = append(candidates, rule)
		}
	}
	if len(candidates) == 0 {
		return nil, workflow.NewError(workflow.CodeApprovalDenied,
			"no approval rule matches %s -> %s at amount %s",
			doc.Status, toStatus, doc.TotalAmount.String())
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ApprovalLevel != candidates[j].ApprovalLevel {
			return candidates[i].ApprovalLevel < candidates[j].ApprovalLevel
		}
		return candidates[i].SortOrder < candidates[j].SortOrder
	})
	rule := candidates[0]

	if rule.RequiresPreviousLevel && rule.ApprovalLevel > 1 {
		satisfied, err := m.auditRepo.HasApprovalAtLevel(ctx, doc.Number, doc.DocumentTypeID, rule.ApprovalLevel-1)
		if err != nil {
			return nil, fmt.Errorf("check previous approval level: %w", err)
		}
		if !satisfied {
			return nil, workflow.NewError(workflow.CodeApprovalDenied,
				"level %d approval for document %s requires a satisfied level %d rule",
				rule.ApprovalLevel, doc.Number, rule.ApprovalLevel-1)
		}
	}

	if !rule.Authorizes(actor) {
		m.logger.Info("Approval denied",
			zap.String("document", doc.Number),
			zap.Int64("rule_id", rule.ID),
			zap.String("approver_type", rule.ApproverType.String()),
			zap.String("actor", actorID(actor)))
		return nil, workflow.NewError(workflow.CodePermissionDenied,
			"user %s does not satisfy %s approver requirement of rule %d",
			actorID(actor), rule.ApproverType, rule.ID)
	}

	return &Authorization{
		RuleID:       rule.ID,
		ApproverType: rule.ApproverType,
		Level:        rule.ApprovalLevel,
	}, nil
}

func actorID(actor *entity.Actor) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}
