package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
)

// AuditLogRepository is append-only.
type AuditLogRepository interface {
	Create(dbc dbctx.Context, entry *models.AuditLog) error
	GetList(dbc dbctx.Context, projectID uint, params models.AuditListParams) ([]models.AuditLog, int64, error)
	GetAll(dbc dbctx.Context, projectID uint) ([]models.AuditLog, error)
}

type auditLogRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepository(db *gorm.DB, baseLog *logger.Logger) AuditLogRepository {
	return &auditLogRepository{db: db, log: baseLog.With("repo", "AuditLogRepository")}
}

func (r *auditLogRepository) Create(dbc dbctx.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(entry).Error
}

func (r *auditLogRepository) GetList(dbc dbctx.Context, projectID uint, params models.AuditListParams) ([]models.AuditLog, int64, error) {
	var entries []models.AuditLog
	var total int64

	query := dbc.DB(r.db).Model(&models.AuditLog{}).Where("project_id = ?", projectID)
	if params.Action != "" {
		query = query.Where("action = ?", params.Action)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}
	offset := (params.Page - 1) * params.Limit
	err := query.Order("created_at desc").Offset(offset).Limit(params.Limit).Find(&entries).Error
	return entries, total, err
}

func (r *auditLogRepository) GetAll(dbc dbctx.Context, projectID uint) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := dbc.DB(r.db).
		Where("project_id = ?", projectID).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}
