package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
	"doc-governance/repositories"
	"doc-governance/workflow"
)

// AuditSink appends audit entries. Entries are never updated.
type AuditSink interface {
	Record(ctx context.Context, entry workflow.RecordAudit) error
}

type AuditService interface {
	AuditSink
	GetAuditLogs(ctx context.Context, projectID uint, params models.AuditListParams, userID uint) ([]models.AuditLog, int64, error)
	// ExportXLSX renders the project's audit trail as a workbook.
	ExportXLSX(ctx context.Context, projectID, userID uint) ([]byte, error)
}

type auditService struct {
	auditRepo repositories.AuditLogRepository
	projects  ProjectService
	log       *logger.Logger
}

func NewAuditService(auditRepo repositories.AuditLogRepository, projects ProjectService, baseLog *logger.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		projects:  projects,
		log:       baseLog.With("service", "AuditService"),
	}
}

func (s *auditService) Record(ctx context.Context, entry workflow.RecordAudit) error {
	before, err := jsonColumn(entry.Before)
	if err != nil {
		return err
	}
	after, err := jsonColumn(entry.After)
	if err != nil {
		return err
	}
	meta := RequestMetaFrom(ctx)
	return s.auditRepo.Create(dbctx.New(ctx), &models.AuditLog{
		ProjectID:  entry.ProjectID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		BeforeJSON: before,
		AfterJSON:  after,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
}

func (s *auditService) GetAuditLogs(ctx context.Context, projectID uint, params models.AuditListParams, userID uint) ([]models.AuditLog, int64, error) {
	if err := s.projects.EnsureAccess(ctx, projectID, userID); err != nil {
		return nil, 0, err
	}
	return s.auditRepo.GetList(dbctx.New(ctx), projectID, params)
}

var auditExportHeader = []interface{}{"Timestamp", "Actor ID", "Action", "Entity Type", "Entity ID", "Before", "After", "IP", "User Agent"}

func (s *auditService) ExportXLSX(ctx context.Context, projectID, userID uint) ([]byte, error) {
	if err := s.projects.EnsureAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}
	entries, err := s.auditRepo.GetAll(dbctx.New(ctx), projectID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn("close workbook", "error", err)
		}
	}()

	const sheet = "Audit"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &auditExportHeader); err != nil {
		return nil, err
	}
	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			e.ActorID,
			e.Action,
			e.EntityType,
			e.EntityID,
			string(e.BeforeJSON),
			string(e.AfterJSON),
			e.IP,
			e.UserAgent,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func jsonColumn(v map[string]interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
