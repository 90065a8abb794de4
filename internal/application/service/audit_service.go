package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/application/port"
	"github.com/ledgerline/docflow/internal/domain/entity"
)

const auditSheetName = "Audit Trail"

// AuditService queries the transition log and exports it for the back
// office. The log itself is written only by the transition engine.
type AuditService interface {
	Trail(ctx context.Context, number string) ([]*entity.AuditEntry, error)
	List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error)
	ExportXLSX(ctx context.Context, limit int) ([]byte, error)
}

type auditService struct {
	auditRepo port.AuditRepository
	logger    *zap.Logger
}

// NewAuditService creates an audit query service.
func NewAuditService(auditRepo port.AuditRepository, logger *zap.Logger) AuditService {
	return &auditService{auditRepo: auditRepo, logger: logger}
}

// Trail returns the full transition history of one document, oldest
// first.
func (s *auditService) Trail(ctx context.Context, number string) ([]*entity.AuditEntry, error) {
	entries, err := s.auditRepo.ListByDocument(ctx, number)
	if err != nil {
		s.logger.Error("Failed to load audit trail", zap.String("document", number), zap.Error(err))
		return nil, fmt.Errorf("load audit trail: %w", err)
	}
	return entries, nil
}

// List returns a page of the global transition log, newest first.
func (s *auditService) List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.auditRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list audit entries", zap.Error(err))
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// ExportXLSX renders up to limit recent entries as a spreadsheet for
// accountants and auditors.
func (s *auditService) ExportXLSX(ctx context.Context, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = 1000
	}
	entries, err := s.auditRepo.List(ctx, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("load audit entries for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(auditSheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Timestamp", "Document", "From", "To", "Actor", "Kind", "Rule ID", "Comments"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(auditSheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for row, e := range entries {
		ruleID := ""
		if e.RuleID != nil {
			ruleID = fmt.Sprintf("%d", *e.RuleID)
		}
		values := []interface{}{
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.DocumentNumber,
			e.FromStatus,
			e.ToStatus,
			e.ActorID,
			string(e.Kind),
			ruleID,
			e.Comments,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(auditSheetName, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	s.logger.Info("Exported audit trail", zap.Int("entries", len(entries)))
	return buf.Bytes(), nil
}
