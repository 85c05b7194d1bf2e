package repositories

import (
	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
)

type ReviewCommentRepository interface {
	Create(dbc dbctx.Context, comment *models.ReviewComment) error
	GetByVersion(dbc dbctx.Context, versionID uint) ([]models.ReviewComment, error)
}

type reviewCommentRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewCommentRepository(db *gorm.DB, baseLog *logger.Logger) ReviewCommentRepository {
	return &reviewCommentRepository{db: db, log: baseLog.With("repo", "ReviewCommentRepository")}
}

func (r *reviewCommentRepository) Create(dbc dbctx.Context, comment *models.ReviewComment) error {
	return dbc.DB(r.db).Create(comment).Error
}

func (r *reviewCommentRepository) GetByVersion(dbc dbctx.Context, versionID uint) ([]models.ReviewComment, error) {
	var comments []models.ReviewComment
	err := dbc.DB(r.db).
		Where("version_id = ?", versionID).
		Order("created_at asc, id asc").
		Find(&comments).Error
	return comments, err
}
