package repositories

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
)

type DocumentVersionRepository interface {
	Create(dbc dbctx.Context, version *models.DocumentVersion) error
	GetByID(dbc dbctx.Context, id uint) (*models.DocumentVersion, error)
	// LockByID reads the version with SELECT ... FOR UPDATE. Callers must pass
	// a transaction.
	LockByID(dbc dbctx.Context, id uint) (*models.DocumentVersion, error)
	GetVersions(dbc dbctx.Context, documentID uint) ([]models.DocumentVersion, error)
	CountByDocument(dbc dbctx.Context, documentID uint) (int64, error)
	CountOpenByDocument(dbc dbctx.Context, documentID uint) (int64, error)
	// ApplyState writes the workflow fields of version, guarded on the row
	// still being in fromState and unlocked. It returns the rows affected.
	ApplyState(dbc dbctx.Context, version *models.DocumentVersion, fromState models.DocumentState) (int64, error)
	// UpdateContent replaces the content of an unlocked DRAFT version.
	UpdateContent(dbc dbctx.Context, id uint, content datatypes.JSON) (int64, error)
}

type documentVersionRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentVersionRepository(db *gorm.DB, baseLog *logger.Logger) DocumentVersionRepository {
	return &documentVersionRepository{db: db, log: baseLog.With("repo", "DocumentVersionRepository")}
}

func (r *documentVersionRepository) Create(dbc dbctx.Context, version *models.DocumentVersion) error {
	return dbc.DB(r.db).Create(version).Error
}

func (r *documentVersionRepository) GetByID(dbc dbctx.Context, id uint) (*models.DocumentVersion, error) {
	var version models.DocumentVersion
	err := dbc.DB(r.db).First(&version, id).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *documentVersionRepository) LockByID(dbc dbctx.Context, id uint) (*models.DocumentVersion, error) {
	var version models.DocumentVersion
	err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&version, id).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *documentVersionRepository) GetVersions(dbc dbctx.Context, documentID uint) ([]models.DocumentVersion, error) {
	var versions []models.DocumentVersion
	err := dbc.DB(r.db).
		Where("document_id = ?", documentID).
		Order("id desc").
		Find(&versions).Error
	return versions, err
}

func (r *documentVersionRepository) CountByDocument(dbc dbctx.Context, documentID uint) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&models.DocumentVersion{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}

func (r *documentVersionRepository) CountOpenByDocument(dbc dbctx.Context, documentID uint) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&models.DocumentVersion{}).
		Where("document_id = ? AND state IN ?", documentID, []models.DocumentState{models.StateDraft, models.StateInReview}).
		Count(&count).Error
	return count, err
}

func (r *documentVersionRepository) ApplyState(dbc dbctx.Context, version *models.DocumentVersion, fromState models.DocumentState) (int64, error) {
	res := dbc.DB(r.db).Model(&models.DocumentVersion{}).
		Where("id = ? AND state = ? AND locked_at IS NULL", version.ID, fromState).
		Updates(map[string]interface{}{
			"state":        version.State,
			"review_round": version.ReviewRound,
			"submitted_at": version.SubmittedAt,
			"locked_at":    version.LockedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *documentVersionRepository) UpdateContent(dbc dbctx.Context, id uint, content datatypes.JSON) (int64, error) {
	res := dbc.DB(r.db).Model(&models.DocumentVersion{}).
		Where("id = ? AND state = ? AND locked_at IS NULL", id, models.StateDraft).
		Update("content_json", content)
	return res.RowsAffected, res.Error
}
