package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
)

type DocumentTypeRepository interface {
	Create(dbc dbctx.Context, docType *models.DocumentType) error
	// EnsureExists inserts docType unless its code is already registered.
	EnsureExists(dbc dbctx.Context, docType *models.DocumentType) error
	GetByCode(dbc dbctx.Context, code string) (*models.DocumentType, error)
	GetAll(dbc dbctx.Context) ([]models.DocumentType, error)
}

type documentTypeRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentTypeRepository(db *gorm.DB, baseLog *logger.Logger) DocumentTypeRepository {
	return &documentTypeRepository{db: db, log: baseLog.With("repo", "DocumentTypeRepository")}
}

func (r *documentTypeRepository) Create(dbc dbctx.Context, docType *models.DocumentType) error {
	return dbc.DB(r.db).Create(docType).Error
}

func (r *documentTypeRepository) EnsureExists(dbc dbctx.Context, docType *models.DocumentType) error {
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(docType).Error
}

func (r *documentTypeRepository) GetByCode(dbc dbctx.Context, code string) (*models.DocumentType, error) {
	var docType models.DocumentType
	err := dbc.DB(r.db).Where("code = ?", code).First(&docType).Error
	if err != nil {
		return nil, err
	}
	return &docType, nil
}

func (r *documentTypeRepository) GetAll(dbc dbctx.Context) ([]models.DocumentType, error) {
	var docTypes []models.DocumentType
	err := dbc.DB(r.db).Order("code asc").Find(&docTypes).Error
	return docTypes, err
}
