package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/application/port"
	"github.com/ledgerline/docflow/internal/domain/entity"
	"github.com/ledgerline/docflow/internal/domain/workflow"
)

// SideEffectWarning reports a failed post-transition action. The status
// change itself is authoritative; side effects are fire-and-report.
type SideEffectWarning struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// TransitionResult is the outcome of a committed (or idempotent)
// transition.
type TransitionResult struct {
	Document   *entity.Document    `json:"document"`
	FromStatus string              `json:"from_status"`
	ToStatus   string              `json:"to_status"`
	RuleID     *int64              `json:"rule_id,omitempty"`
	Idempotent bool                `json:"idempotent"`
	Warnings   []SideEffectWarning `json:"warnings,omitempty"`
}

// TransitionEngine orchestrates a single status transition: validate,
// authorize, commit, log, then fire configuration-driven post-transition
// actions.
type TransitionEngine interface {
	Transition(ctx context.Context, number, toStatus string, actor *entity.Actor, comments string) (*TransitionResult, error)
	NextStatuses(ctx context.Context, doc *entity.Document) ([]string, error)
	NextStatusesByNumber(ctx context.Context, number string) ([]string, error)
	EffectivePermissions(ctx context.Context, number string, actor *entity.Actor) (*PermissionSummary, error)
}

type transitionEngine struct {
	docRepo   port.DocumentRepository
	typeRepo  port.DocumentTypeRepository
	cfgRepo   port.StatusConfigRepository
	auditRepo port.AuditRepository
	txManager port.TransactionManager

	resolver  StatusResolver
	matcher   RuleMatcher
	validator DocumentValidator

	inventory port.InventoryService
	notifier  port.Notifier
	fiscal    port.FiscalHook

	logger *zap.Logger
}

// NewTransitionEngine wires the engine. notifier and fiscal may be nil;
// the corresponding hooks are skipped.
func NewTransitionEngine(
	docRepo port.DocumentRepository,
	typeRepo port.DocumentTypeRepository,
	cfgRepo port.StatusConfigRepository,
	auditRepo port.AuditRepository,
	txManager port.TransactionManager,
	resolver StatusResolver,
	matcher RuleMatcher,
	validator DocumentValidator,
	inventory port.InventoryService,
	notifier port.Notifier,
	fiscal port.FiscalHook,
	logger *zap.Logger,
) TransitionEngine {
	return &transitionEngine{
		docRepo:   docRepo,
		typeRepo:  typeRepo,
		cfgRepo:   cfgRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		resolver:  resolver,
		matcher:   matcher,
		validator: validator,
		inventory: inventory,
		notifier:  notifier,
		fiscal:    fiscal,
		logger:    logger,
	}
}

// Transition moves a document to toStatus. Validation and authorization
// failures abort before any write; once the status update commits, audit
// and side-effect failures degrade to warnings.
func (e *transitionEngine) Transition(ctx context.Context, number, toStatus string, actor *entity.Actor, comments string) (*TransitionResult, error) {
	var (
		result    *TransitionResult
		targetCfg *entity.StatusConfig
	)

	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		// Reload under the transaction; in-memory copies may be stale.
		doc, err := e.docRepo.GetByNumber(txCtx, number)
		if err != nil {
			return fmt.Errorf("load document %s: %w", number, err)
		}
		if doc == nil {
			return workflow.NewError(workflow.CodeNotFound, "document %s not found", number)
		}

		// Idempotence: transitioning to the current status is a no-op.
		if doc.Status == toStatus {
			result = &TransitionResult{
				Document:   doc,
				FromStatus: doc.Status,
				ToStatus:   toStatus,
				Idempotent: true,
			}
			return nil
		}

		if !doc.HasDocumentType() {
			return workflow.NewError(workflow.CodeNoDocumentType, "document %s has no document type", number)
		}
		dt, err := e.typeRepo.GetByID(txCtx, doc.DocumentTypeID)
		if err != nil {
			return fmt.Errorf("load document type %d: %w", doc.DocumentTypeID, err)
		}
		if dt == nil {
			return workflow.NewError(workflow.CodeConfigurationMissing,
				"document type %d of document %s does not exist", doc.DocumentTypeID, number)
		}

		configs, err := e.resolver.Configs(txCtx, dt.ID)
		if err != nil {
			return err
		}
		if len(configs) == 0 {
			return workflow.NewError(workflow.CodeConfigurationMissing,
				"document type %s has no status configuration", dt.Code)
		}

		targetCfg, err = e.checkStructural(txCtx, configs, doc, toStatus)
		if err != nil {
			return err
		}

		// Non-approval types take the simple path: any structurally
		// legal transition is permitted, cancellation in particular.
		var ruleID *int64
		if dt.RequiresApproval {
			auth, err := e.matcher.Match(txCtx, doc, toStatus, actor)
			if err != nil {
				return err
			}
			ruleID = &auth.RuleID
		}

		if err := e.validator.Validate(txCtx, doc, targetCfg); err != nil {
			return err
		}

		// Commit point. From here the transition succeeds or the whole
		// transaction rolls back with a persistence error.
		now := time.Now()
		var approvedBy *string
		if dt.RequiresApproval && ruleID != nil && actor != nil {
			approvedBy = &actor.ID
		}
		fromStatus := doc.Status
		if err := e.docRepo.CommitStatus(txCtx, doc, toStatus, approvedBy, now); err != nil {
			return err
		}

		result = &TransitionResult{
			Document:   doc,
			FromStatus: fromStatus,
			ToStatus:   toStatus,
			RuleID:     ruleID,
		}

		// Audit is best effort: a logging failure must not roll back a
		// committed status change.
		kind := entity.AuditKindTransition
		if dt.RequiresApproval {
			kind = entity.AuditKindApproval
		}
		auditEntry := &entity.AuditEntry{
			ID:             uuid.NewString(),
			DocumentNumber: doc.Number,
			FromStatus:     fromStatus,
			ToStatus:       toStatus,
			ActorID:        actorID(actor),
			RuleID:         ruleID,
			Kind:           kind,
			Comments:       comments,
			CreatedAt:      now,
		}
		if err := e.auditRepo.Create(txCtx, auditEntry); err != nil {
			e.logger.Error("Failed to write audit entry",
				zap.String("document", doc.Number), zap.Error(err))
			result.Warnings = append(result.Warnings, SideEffectWarning{
				Stage:   "audit",
				Message: err.Error(),
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Idempotent {
		return result, nil
	}

	e.logger.Info("Document transitioned",
		zap.String("document", number),
		zap.String("from", result.FromStatus),
		zap.String("to", result.ToStatus),
		zap.String("actor", actorID(actor)))

	e.runPostTransitionActions(ctx, result, targetCfg, actor)
	return result, nil
}

// checkStructural validates the transition against the status
// configuration alone: target configured and active, current not final,
// target not initial.
func (e *transitionEngine) checkStructural(ctx context.Context, configs []*entity.StatusConfig, doc *entity.Document, toStatus string) (*entity.StatusConfig, error) {
	var targetCfg, currentCfg *entity.StatusConfig
	for _, c := range configs {
		switch c.StatusCode {
		case toStatus:
			targetCfg = c
		case doc.Status:
			currentCfg = c
		}
	}

	if targetCfg == nil || !targetCfg.IsActive {
		exists, err := e.cfgRepo.StatusExists(ctx, toStatus)
		if err != nil {
			return nil, fmt.Errorf("check status %s: %w", toStatus, err)
		}
		if !exists {
			return nil, workflow.NewError(workflow.CodeInvalidStatus, "status %s does not exist", toStatus)
		}
		return nil, workflow.NewError(workflow.CodeStatusNotConfigured,
			"status %s is not configured for document %s", toStatus, doc.Number)
	}

	if currentCfg != nil && currentCfg.IsFinal {
		return nil, workflow.NewError(workflow.CodeFromFinalStatus,
			"document %s is in final status %s", doc.Number, doc.Status)
	}
	if targetCfg.IsInitial {
		return nil, workflow.NewError(workflow.CodeToInitialStatus,
			"cannot transition document %s back to initial status %s", doc.Number, toStatus)
	}

	return targetCfg, nil
}

// runPostTransitionActions fires the side effects driven by the target
// status's configuration flags. Failures are collected as warnings and
// never fail the committed transition.
func (e *transitionEngine) runPostTransitionActions(ctx context.Context, result *TransitionResult, target *entity.StatusConfig, actor *entity.Actor) {
	doc := result.Document

	warn := func(stage string, err error) {
		e.logger.Error("Post-transition action failed",
			zap.String("document", doc.Number),
			zap.String("stage", stage),
			zap.Error(err))
		result.Warnings = append(result.Warnings, SideEffectWarning{Stage: stage, Message: err.Error()})
	}

	if target.CreatesInventoryMovements && e.inventory != nil {
		if err := e.inventory.CreateMovementsForDocument(ctx, doc); err != nil {
			warn("inventory_create", err)
		}
	}
	if target.ReversesInventoryMovements && e.inventory != nil {
		deleted, err := e.inventory.DeleteMovementsBySourceDocument(ctx, doc.Number)
		if err != nil {
			warn("inventory_reverse", err)
		} else {
			e.logger.Info("Reversed inventory movements",
				zap.String("document", doc.Number), zap.Int64("deleted", deleted))
		}
	}
	if target.IsFinal {
		e.logger.Info("Document finalized",
			zap.String("document", doc.Number),
			zap.Duration("cycle_time", time.Since(doc.CreatedAt)))
		if e.fiscal != nil {
			if err := e.fiscal.OnDocumentFinalized(ctx, doc); err != nil {
				warn("fiscal", err)
			}
		}
	}
	if (target.IsFinal || target.IsCancellation) && e.notifier != nil {
		if err := e.notifier.NotifyStatusChanged(ctx, doc, result.FromStatus, result.ToStatus, actorID(actor)); err != nil {
			warn("notification", err)
		}
	}
}

// NextStatuses computes the legal target statuses for a document,
// explicit edges first, linear sort-order fallback otherwise.
func (e *transitionEngine) NextStatuses(ctx context.Context, doc *entity.Document) ([]string, error) {
	if !doc.HasDocumentType() {
		return []string{}, nil
	}
	configs, err := e.resolver.Configs(ctx, doc.DocumentTypeID)
	if err != nil {
		return nil, err
	}
	edges, err := e.resolver.Edges(ctx, doc.DocumentTypeID)
	if err != nil {
		return nil, err
	}
	return workflow.NextStatuses(configs, edges, doc.Status), nil
}

// NextStatusesByNumber is NextStatuses for callers holding only the
// document number.
func (e *transitionEngine) NextStatusesByNumber(ctx context.Context, number string) ([]string, error) {
	doc, err := e.docRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", number, err)
	}
	if doc == nil {
		return nil, workflow.NewError(workflow.CodeNotFound, "document %s not found", number)
	}
	return e.NextStatuses(ctx, doc)
}

// EffectivePermissions aggregates edit/delete capability and the legal
// next statuses for an actor on a document.
func (e *transitionEngine) EffectivePermissions(ctx context.Context, number string, actor *entity.Actor) (*PermissionSummary, error) {
	doc, err := e.docRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", number, err)
	}
	if doc == nil {
		return nil, workflow.NewError(workflow.CodeNotFound, "document %s not found", number)
	}

	currentCfg, err := e.resolver.ConfigFor(ctx, doc.DocumentTypeID, doc.Status)
	if err != nil {
		return nil, err
	}

	next, err := e.NextStatuses(ctx, doc)
	if err != nil {
		return nil, err
	}

	canEdit, editReason := e.validator.CanEdit(doc, currentCfg, actor)
	canDelete, deleteReason := e.validator.CanDelete(doc, currentCfg, actor)

	return &PermissionSummary{
		CanEdit:      canEdit,
		EditReason:   editReason,
		CanDelete:    canDelete,
		DeleteReason: deleteReason,
		NextStatuses: next,
	}, nil
}
