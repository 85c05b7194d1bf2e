package repositories

import (
	"time"

	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
)

type ApprovalRepository interface {
	CreateBatch(dbc dbctx.Context, approvals []models.Approval) error
	GetByRound(dbc dbctx.Context, versionID uint, round int) ([]models.Approval, error)
	GetByVersion(dbc dbctx.Context, versionID uint) ([]models.Approval, error)
	// Decide moves a PENDING approval to status. Zero rows affected means
	// somebody else decided it first.
	Decide(dbc dbctx.Context, id uint, status models.ApprovalStatus, approverUserID *uint, comment string, decidedAt time.Time) (int64, error)
}

type approvalRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApprovalRepository(db *gorm.DB, baseLog *logger.Logger) ApprovalRepository {
	return &approvalRepository{db: db, log: baseLog.With("repo", "ApprovalRepository")}
}

func (r *approvalRepository) CreateBatch(dbc dbctx.Context, approvals []models.Approval) error {
	if len(approvals) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&approvals).Error
}

func (r *approvalRepository) GetByRound(dbc dbctx.Context, versionID uint, round int) ([]models.Approval, error) {
	var approvals []models.Approval
	err := dbc.DB(r.db).
		Where("version_id = ? AND review_round = ?", versionID, round).
		Order("step_no asc").
		Find(&approvals).Error
	return approvals, err
}

func (r *approvalRepository) GetByVersion(dbc dbctx.Context, versionID uint) ([]models.Approval, error) {
	var approvals []models.Approval
	err := dbc.DB(r.db).
		Where("version_id = ?", versionID).
		Order("review_round asc, step_no asc").
		Find(&approvals).Error
	return approvals, err
}

func (r *approvalRepository) Decide(dbc dbctx.Context, id uint, status models.ApprovalStatus, approverUserID *uint, comment string, decidedAt time.Time) (int64, error) {
	res := dbc.DB(r.db).Model(&models.Approval{}).
		Where("id = ? AND status = ?", id, models.ApprovalPending).
		Updates(map[string]interface{}{
			"status":           status,
			"approver_user_id": approverUserID,
			"comment":          comment,
			"decided_at":       decidedAt,
		})
	return res.RowsAffected, res.Error
}
