package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
)

type DocumentRepository interface {
	Create(dbc dbctx.Context, document *models.Document) error
	GetByID(dbc dbctx.Context, id uint) (*models.Document, error)
	// LockByID reads the document with SELECT ... FOR UPDATE so version
	// creation for one document is serialized. Callers must pass a transaction.
	LockByID(dbc dbctx.Context, id uint) (*models.Document, error)
	GetList(dbc dbctx.Context, projectID uint, params models.DocumentListParams) ([]models.Document, error)
	SetCurrentVersion(dbc dbctx.Context, documentID, versionID uint) error
}

type documentRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepository(db *gorm.DB, baseLog *logger.Logger) DocumentRepository {
	return &documentRepository{db: db, log: baseLog.With("repo", "DocumentRepository")}
}

func (r *documentRepository) Create(dbc dbctx.Context, document *models.Document) error {
	return dbc.DB(r.db).Create(document).Error
}

func (r *documentRepository) GetByID(dbc dbctx.Context, id uint) (*models.Document, error) {
	var document models.Document
	err := dbc.DB(r.db).Preload("CurrentVersion").First(&document, id).Error
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) LockByID(dbc dbctx.Context, id uint) (*models.Document, error) {
	var document models.Document
	err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&document, id).Error
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) GetList(dbc dbctx.Context, projectID uint, params models.DocumentListParams) ([]models.Document, error) {
	var documents []models.Document
	query := dbc.DB(r.db).Model(&models.Document{}).
		Preload("CurrentVersion").
		Where("project_id = ?", projectID)
	if params.DocType != "" {
		query = query.Where("doc_type = ?", params.DocType)
	}
	err := query.Order("created_at desc").Find(&documents).Error
	return documents, err
}

// SetCurrentVersion points the document at its newest approved version.
func (r *documentRepository) SetCurrentVersion(dbc dbctx.Context, documentID, versionID uint) error {
	res := dbc.DB(r.db).Model(&models.Document{}).
		Where("id = ?", documentID).
		Update("current_version_id", versionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
