package service

import (
	"context"
	"time"

	"github.com/ledgerline/docflow/internal/domain/entity"
)

// Func-field mocks for the ports. Zero-value behavior is a benign
// default; tests override only what they assert on.

type mockStatusConfigRepo struct {
	listFunc   func(ctx context.Context, typeID int64) ([]*entity.StatusConfig, error)
	edgesFunc  func(ctx context.Context, typeID int64) ([]*entity.TransitionEdge, error)
	existsFunc func(ctx context.Context, code string) (bool, error)

	listCalls int
}

func (m *mockStatusConfigRepo) ListByDocumentType(ctx context.Context, typeID int64) ([]*entity.StatusConfig, error) {
	m.listCalls++
	if m.listFunc != nil {
		return m.listFunc(ctx, typeID)
	}
	return nil, nil
}

func (m *mockStatusConfigRepo) ListEdges(ctx context.Context, typeID int64) ([]*entity.TransitionEdge, error) {
	if m.edgesFunc != nil {
		return m.edgesFunc(ctx, typeID)
	}
	return nil, nil
}

func (m *mockStatusConfigRepo) StatusExists(ctx context.Context, code string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, code)
	}
	return true, nil
}

type mockDocumentTypeRepo struct {
	getByCodeFunc func(ctx context.Context, code string) (*entity.DocumentType, error)
	getByIDFunc   func(ctx context.Context, id int64) (*entity.DocumentType, error)
}

func (m *mockDocumentTypeRepo) GetByCode(ctx context.Context, code string) (*entity.DocumentType, error) {
	if m.getByCodeFunc != nil {
		return m.getByCodeFunc(ctx, code)
	}
	return nil, nil
}

func (m *mockDocumentTypeRepo) GetByID(ctx context.Context, id int64) (*entity.DocumentType, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

type mockApprovalRuleRepo struct {
	listFunc   func(ctx context.Context, typeID int64, from, to string) ([]*entity.ApprovalRule, error)
	createFunc func(ctx context.Context, rule *entity.ApprovalRule) error
}

func (m *mockApprovalRuleRepo) ListForTransition(ctx context.Context, typeID int64, from, to string) ([]*entity.ApprovalRule, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, typeID, from, to)
	}
	return nil, nil
}

func (m *mockApprovalRuleRepo) Create(ctx context.Context, rule *entity.ApprovalRule) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rule)
	}
	return nil
}

type mockDocumentRepo struct {
	getByNumberFunc  func(ctx context.Context, number string) (*entity.Document, error)
	commitStatusFunc func(ctx context.Context, doc *entity.Document, toStatus string, approvedBy *string, at time.Time) error

	commitCalls int
}

func (m *mockDocumentRepo) GetByNumber(ctx context.Context, number string) (*entity.Document, error) {
	if m.getByNumberFunc != nil {
		return m.getByNumberFunc(ctx, number)
	}
	return nil, nil
}

func (m *mockDocumentRepo) CommitStatus(ctx context.Context, doc *entity.Document, toStatus string, approvedBy *string, at time.Time) error {
	m.commitCalls++
	if m.commitStatusFunc != nil {
		return m.commitStatusFunc(ctx, doc, toStatus, approvedBy, at)
	}
	doc.Status = toStatus
	doc.Version++
	if approvedBy != nil {
		doc.ApprovedBy = approvedBy
		doc.ApprovedAt = &at
	}
	return nil
}

type mockAuditRepo struct {
	createFunc   func(ctx context.Context, e *entity.AuditEntry) error
	byDocFunc    func(ctx context.Context, number string) ([]*entity.AuditEntry, error)
	listFunc     func(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error)
	hasLevelFunc func(ctx context.Context, number string, typeID int64, level int) (bool, error)

	created []*entity.AuditEntry
}

func (m *mockAuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, e)
	}
	m.created = append(m.created, e)
	return nil
}

func (m *mockAuditRepo) ListByDocument(ctx context.Context, number string) ([]*entity.AuditEntry, error) {
	if m.byDocFunc != nil {
		return m.byDocFunc(ctx, number)
	}
	return nil, nil
}

func (m *mockAuditRepo) List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockAuditRepo) HasApprovalAtLevel(ctx context.Context, number string, typeID int64, level int) (bool, error) {
	if m.hasLevelFunc != nil {
		return m.hasLevelFunc(ctx, number, typeID, level)
	}
	return false, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockInventory struct {
	createErr   error
	deleteErr   error
	deleteCount int64

	createCalls int
	deleteCalls int
}

func (m *mockInventory) CreateMovementsForDocument(ctx context.Context, doc *entity.Document) error {
	m.createCalls++
	return m.createErr
}

func (m *mockInventory) DeleteMovementsBySourceDocument(ctx context.Context, number string) (int64, error) {
	m.deleteCalls++
	return m.deleteCount, m.deleteErr
}

type mockNotifier struct {
	err   error
	calls int
}

func (m *mockNotifier) NotifyStatusChanged(ctx context.Context, doc *entity.Document, from, to, actorID string) error {
	m.calls++
	return m.err
}

type mockFiscal struct {
	err   error
	calls int
}

func (m *mockFiscal) OnDocumentFinalized(ctx context.Context, doc *entity.Document) error {
	m.calls++
	return m.err
}

// mockMatcher lets engine tests stub authorization outcomes directly.
type mockMatcher struct {
	auth *Authorization
	err  error
}

func (m *mockMatcher) Match(ctx context.Context, doc *entity.Document, toStatus string, actor *entity.Actor) (*Authorization, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.auth != nil {
		return m.auth, nil
	}
	return &Authorization{RuleID: 1, ApproverType: entity.ApproverAnyUser, Level: 1}, nil
}
