package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/domain/entity"
	"github.com/ledgerline/docflow/internal/domain/workflow"
)

// engineFixture wires a TransitionEngine over mocks configured with the
// delivery receipt workflow: draft(initial) -> received(creates
// movements) -> completed(final), cancellation cancelled(reverses
// movements).
type engineFixture struct {
	docRepo   *mockDocumentRepo
	typeRepo  *mockDocumentTypeRepo
	cfgRepo   *mockStatusConfigRepo
	auditRepo *mockAuditRepo
	inventory *mockInventory
	notifier  *mockNotifier
	fiscal    *mockFiscal
	matcher   *mockMatcher

	engine TransitionEngine
}

func receiptType() *entity.DocumentType {
	return &entity.DocumentType{
		ID: 3, Code: entity.TypeDeliveryReceipt, Name: "Delivery Receipt",
		AffectsInventory: true, DefaultStatusCode: "draft", IsActive: true,
	}
}

func receiptDocument(status string) *entity.Document {
	recv := amount("5")
	return &entity.Document{
		ID: 1, Number: "DR-001", DocumentTypeID: 3, TypeCode: entity.TypeDeliveryReceipt,
		Status:       status,
		TotalAmount:  amount("250"),
		Currency:     "EUR",
		LocationID:   1,
		LocationKind: entity.LocationWarehouse,
		Owner:        "u-owner",
		Version:      1,
		Lines: []entity.DocumentLine{
			{ProductCode: "SKU-1", Quantity: amount("5"), ReceivedQuantity: &recv, QualityState: entity.QualityAccepted},
		},
		CreatedAt: time.Now().Add(-time.Hour),
	}
}

func receiptWorkflowConfigs() []*entity.StatusConfig {
	return []*entity.StatusConfig{
		{DocumentTypeID: 3, StatusCode: "draft", SortOrder: 10, IsInitial: true, AllowsEditing: true, AllowsDeletion: true, IsActive: true},
		{DocumentTypeID: 3, StatusCode: "received", SortOrder: 20, CreatesInventoryMovements: true, IsActive: true},
		{DocumentTypeID: 3, StatusCode: "completed", SortOrder: 30, IsFinal: true, SemanticType: entity.SemanticCompletion, IsActive: true},
		{DocumentTypeID: 3, StatusCode: "cancelled", SortOrder: 40, IsCancellation: true, ReversesInventoryMovements: true, IsActive: true},
	}
}

func newEngineFixture(doc *entity.Document, dt *entity.DocumentType) *engineFixture {
	f := &engineFixture{
		docRepo: &mockDocumentRepo{
			getByNumberFunc: func(ctx context.Context, number string) (*entity.Document, error) {
				if doc != nil && number == doc.Number {
					return doc, nil
				}
				return nil, nil
			},
		},
		typeRepo: &mockDocumentTypeRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.DocumentType, error) {
				if dt != nil && id == dt.ID {
					return dt, nil
				}
				return nil, nil
			},
		},
		cfgRepo: &mockStatusConfigRepo{
			listFunc: func(ctx context.Context, typeID int64) ([]*entity.StatusConfig, error) {
				return receiptWorkflowConfigs(), nil
			},
			existsFunc: func(ctx context.Context, code string) (bool, error) {
				known := map[string]bool{"draft": true, "received": true, "completed": true, "cancelled": true, "archived": true}
				return known[code], nil
			},
		},
		auditRepo: &mockAuditRepo{},
		inventory: &mockInventory{},
		notifier:  &mockNotifier{},
		fiscal:    &mockFiscal{},
		matcher:   &mockMatcher{},
	}

	logger := zap.NewNop()
	resolver := NewStatusResolver(f.cfgRepo, time.Hour, logger)
	validator := NewDocumentValidator(logger)

	f.engine = NewTransitionEngine(
		f.docRepo, f.typeRepo, f.cfgRepo, f.auditRepo, &mockTxManager{},
		resolver, f.matcher, validator,
		f.inventory, f.notifier, f.fiscal,
		logger,
	)
	return f
}

func TestEngine_TransitionCommitsAndAudits(t *testing.T) {
	doc := receiptDocument("draft")
	f := newEngineFixture(doc, receiptType())

	res, err := f.engine.Transition(context.Background(), "DR-001", "received", &entity.Actor{ID: "u-1"}, "goods arrived")
	require.NoError(t, err)

	assert.Equal(t, "draft", res.FromStatus)
	assert.Equal(t, "received", res.ToStatus)
	assert.False(t, res.Idempotent)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "received", doc.Status)
	assert.Equal(t, int64(2), doc.Version, "commit bumps the version token")

	require.Len(t, f.auditRepo.created, 1)
	entry := f.auditRepo.created[0]
	assert.Equal(t, "draft", entry.FromStatus)
	assert.Equal(t, "received", entry.ToStatus)
	assert.Equal(t, "u-1", entry.ActorID)
	assert.Equal(t, entity.AuditKindTransition, entry.Kind)
	assert.Equal(t, "goods arrived", entry.Comments)
	assert.NotEmpty(t, entry.ID)
}

func TestEngine_IdempotentTransition(t *testing.T) {
	doc := receiptDocument("received")
	f := newEngineFixture(doc, receiptType())

	res, err := f.engine.Transition(context.Background(), "DR-001", "received", &entity.Actor{ID: "u-1"}, "")
	require.NoError(t, err)

	assert.True(t, res.Idempotent)
	assert.Empty(t, f.auditRepo.created, "idempotent call writes no audit entry")
	assert.Zero(t, f.docRepo.commitCalls)
	assert.Zero(t, f.inventory.createCalls)
	assert.Zero(t, f.inventory.deleteCalls)
	assert.Zero(t, f.notifier.calls)
}

func TestEngine_ToInitialStatusFails(t *testing.T) {
	doc := receiptDocument("received")
	f := newEngineFixture(doc, receiptType())

	_, err := f.engine.Transition(context.Background(), "DR-001", "draft", &entity.Actor{ID: "u-1"}, "")
	require.Error(t, err)
	assert.Equal(t, workflow.CodeToInitialStatus, workflow.CodeOf(err))
	assert.Zero(t, f.docRepo.commitCalls)
}

func TestEngine_FromFinalStatusFails(t *testing.T) {
	doc := receiptDocument("completed")
	f := newEngineFixture(doc, receiptType())

	_, err := f.engine.Transition(context.Background(), "DR-001", "cancelled", &entity.Actor{ID: "u-1"}, "")
	require.Error(t, err)
	assert.Equal(t, workflow.CodeFromFinalStatus, workflow.CodeOf(err))
	assert.Zero(t, f.docRepo.commitCalls)
	assert.Zero(t, f.inventory.deleteCalls)
}

func TestEngine_UnknownStatusDistinguishedFromUnconfigured(t *testing.T) {
	doc := receiptDocument("draft")
	f := newEngineFixture(doc, receiptType())

	_, err := f.engine.Transition(context.Background(), "DR-001", "no-such-status", &entity.Actor{ID: "u-1"}, "")
	require.Error(t, err)
	assert.Equal(t, workflow.CodeInvalidStatus, workflow.CodeOf(err))

	// archived exists globally but is not configured for receipts.
	_, err = f.engine.Transition(context.Background(), "DR-001", "archived", &entity.Actor{ID: "u-1"}, "")
	require.Error(t, err)
	assert.Equal(t, workflow.CodeStatusNotConfigured, workflow.CodeOf(err))
}

func TestEngine_DocumentWithoutTypeFails(t *testing.T) {
	doc := receiptDocument("draft")
	doc.DocumentTypeID = 0
	doc.TypeCode = ""
	f := newEngineFixture(doc, receiptType())

	_, err := f.engine.Transition(context.Background(), "DR-001", "received", &entity.Actor{ID: "u-1"}, "")
	require.Error(t, err)
	assert.Equal(t, workflow.CodeNoDocumentType, workflow.CodeOf(err))
}

func TestEngine_MissingDocumentFails(t *testing.T) {
	f := newEngineFixture(nil, receiptType())

	_, err := f.engine.Transition(context.Background(), "DR-404", "received", &entity.Actor{ID: "u-1"}, "")
	require.Error(t, err)
	assert.Equal(t, workflow.CodeNotFound, workflow.CodeOf(err))
}

func TestEngine_MovementCreationOnTargetFlag(t *testing.T) {
	doc := receiptDocument("draft")
	f := newEngineFixture(doc, receiptType())

	_, err := f.engine.Transition(context.Background(), "DR-001", "received", &entity.Actor{ID: "u-1"}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.inventory.createCalls, "exactly one creation per committed transition")
	assert.Zero(t, f.inventory.deleteCalls)
}

func TestEngine_NoMovementsOnFailedValidation(t *testing.T) {
	doc := receiptDocument("draft")
	doc.LocationKind = entity.LocationOffice // universal check fails
	f := newEngineFixture(doc, receiptType())

	_, err := f.engine.Transition(context.Background(), "DR-001", "received", &entity.Actor{ID: "u-1"}, "")
	require.Error(t, err)
	assert.Equal(t, workflow.CodeBusinessRuleViolation, workflow.CodeOf(err))
	assert.Zero(t, f.inventory.createCalls)
	assert.Zero(t, f.docRepo.commitCalls)
	assert.Empty(t, f.auditRepo.created)
}

func TestEngine_MovementReversalOnCancellation(t *testing.T) {
	doc := receiptDocument("received")
	f := newEngineFixture(doc, receiptType())
	f.inventory.deleteCount = 3

	res, err := f.engine.Transition(context.Background(), "DR-001", "cancelled", &entity.Actor{ID: "u-1"}, "wrong shipment")
	require.NoError(t, err)
	assert.Equal(t, 1, f.inventory.deleteCalls)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1, f.notifier.calls, "cancellation notifies")
}

func TestEngine_ReversalIdempotentWhenNothingLeft(t *testing.T) {
	doc := receiptDocument("received")
	f := newEngineFixture(doc, receiptType())
	f.inventory.deleteCount = 0 // nothing to delete anymore

	res, err := f.engine.Transition(context.Background(), "DR-001", "cancelled", &entity.Actor{ID: "u-1"}, "")
	require.NoError(t, err)
	assert.Empty(t, res.Warnings, "deleting zero movements is not an error")
}

func TestEngine_FinalTransitionFiresHooks(t *testing.T) {
	doc := receiptDocument("received")
	f := newEngineFixture(doc, receiptType())

	_, err := f.engine.Transition(context.Background(), "DR-001", "completed", &entity.Actor{ID: "u-1"}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.fiscal.calls)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestEngine_SideEffectFailureYieldsWarningNotError(t *testing.T) {
	doc := receiptDocument("draft")
	f := newEngineFixture(doc, receiptType())
	f.inventory.createErr = errors.New("stock service unreachable")

	res, err := f.engine.Transition(context.Background(), "DR-001", "received", &entity.Actor{ID: "u-1"}, "")
	require.NoError(t, err, "the committed status change is authoritative")
	assert.Equal(t, "received", doc.Status)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "inventory_create", res.Warnings[0].Stage)
	assert.Contains(t, res.Warnings[0].Message, "unreachable")
}

func TestEngine_AuditFailureYieldsWarningNotError(t *testing.T) {
	doc := receiptDocument("draft")
	f := newEngineFixture(doc, receiptType())
	f.auditRepo.createFunc = func(ctx context.Context, e *entity.AuditEntry) error {
		return errors.New("audit table locked")
	}

	res, err := f.engine.Transition(context.Background(), "DR-001", "received", &entity.Actor{ID: "u-1"}, "")
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "audit", res.Warnings[0].Stage)
}

func TestEngine_ConcurrentModificationSurfaced(t *testing.T) {
	doc := receiptDocument("draft")
	f := newEngineFixture(doc, receiptType())
	f.docRepo.commitStatusFunc = func(ctx context.Context, d *entity.Document, toStatus string, approvedBy *string, at time.Time) error {
		return workflow.NewError(workflow.CodeConcurrentModification,
			"document %s was modified concurrently", d.Number)
	}

	_, err := f.engine.Transition(context.Background(), "DR-001", "received", &entity.Actor{ID: "u-1"}, "")
	require.Error(t, err)
	assert.Equal(t, workflow.CodeConcurrentModification, workflow.CodeOf(err))
	assert.Zero(t, f.inventory.createCalls, "losers fire no side effects")
}

func TestEngine_ApprovalPathStampsApprover(t *testing.T) {
	dt := receiptType()
	dt.RequiresApproval = true
	doc := receiptDocument("draft")
	f := newEngineFixture(doc, dt)
	ruleID := int64(42)
	f.matcher.auth = &Authorization{RuleID: ruleID, ApproverType: entity.ApproverRole, Level: 1}

	res, err := f.engine.Transition(context.Background(), "DR-001", "received", &entity.Actor{ID: "u-appr"}, "")
	require.NoError(t, err)

	require.NotNil(t, res.RuleID)
	assert.Equal(t, ruleID, *res.RuleID)
	require.NotNil(t, doc.ApprovedBy)
	assert.Equal(t, "u-appr", *doc.ApprovedBy)
	assert.NotNil(t, doc.ApprovedAt)

	require.Len(t, f.auditRepo.created, 1)
	assert.Equal(t, entity.AuditKindApproval, f.auditRepo.created[0].Kind)
	require.NotNil(t, f.auditRepo.created[0].RuleID)
	assert.Equal(t, ruleID, *f.auditRepo.created[0].RuleID)
}

func TestEngine_ApprovalDenialAborts(t *testing.T) {
	dt := receiptType()
	dt.RequiresApproval = true
	doc := receiptDocument("draft")
	f := newEngineFixture(doc, dt)
	f.matcher.err = workflow.NewError(workflow.CodePermissionDenied, "not an approver")

	_, err := f.engine.Transition(context.Background(), "DR-001", "received", &entity.Actor{ID: "u-x"}, "")
	require.Error(t, err)
	assert.Equal(t, workflow.CodePermissionDenied, workflow.CodeOf(err))
	assert.Zero(t, f.docRepo.commitCalls)
	assert.Empty(t, f.auditRepo.created)
}

func TestEngine_NextStatusesScenario(t *testing.T) {
	f := newEngineFixture(receiptDocument("draft"), receiptType())
	ctx := context.Background()

	next, err := f.engine.NextStatuses(ctx, receiptDocument("draft"))
	require.NoError(t, err)
	assert.Equal(t, []string{"received", "cancelled"}, next)

	next, err = f.engine.NextStatuses(ctx, receiptDocument("received"))
	require.NoError(t, err)
	assert.Equal(t, []string{"completed", "cancelled"}, next)

	next, err = f.engine.NextStatuses(ctx, receiptDocument("completed"))
	require.NoError(t, err)
	assert.Empty(t, next, "final statuses offer nothing, not even cancellation")
}

func TestEngine_EffectivePermissions(t *testing.T) {
	doc := receiptDocument("draft")
	f := newEngineFixture(doc, receiptType())

	owner := &entity.Actor{ID: "u-owner"}
	sum, err := f.engine.EffectivePermissions(context.Background(), "DR-001", owner)
	require.NoError(t, err)

	assert.True(t, sum.CanEdit)
	assert.True(t, sum.CanDelete)
	assert.Equal(t, []string{"received", "cancelled"}, sum.NextStatuses)

	stranger := &entity.Actor{ID: "u-x"}
	sum, err = f.engine.EffectivePermissions(context.Background(), "DR-001", stranger)
	require.NoError(t, err)
	assert.False(t, sum.CanEdit)
	assert.NotEmpty(t, sum.EditReason)
}
