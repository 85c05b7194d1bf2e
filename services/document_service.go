package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
	"doc-governance/repositories"
	"doc-governance/workflow"
)

type DocumentService interface {
	// CreateDocument creates the document together with its first DRAFT
	// version.
	CreateDocument(ctx context.Context, projectID uint, req models.CreateDocumentRequest, userID uint) (*models.Document, error)
	GetDocuments(ctx context.Context, projectID uint, params models.DocumentListParams, userID uint) ([]models.Document, error)
	GetDocument(ctx context.Context, id, userID uint) (*models.Document, error)
	CreateVersion(ctx context.Context, documentID uint, req models.CreateVersionRequest, userID uint) (*models.DocumentVersion, error)
	GetVersions(ctx context.Context, documentID, userID uint) ([]models.DocumentVersion, error)
	GetVersion(ctx context.Context, versionID, userID uint) (*models.DocumentVersion, error)
	UpdateVersionContent(ctx context.Context, versionID uint, req models.UpdateVersionRequest, userID uint) (*models.DocumentVersion, error)
}

type documentService struct {
	db           *gorm.DB
	documentRepo repositories.DocumentRepository
	versionRepo  repositories.DocumentVersionRepository
	approvalRepo repositories.ApprovalRepository
	docTypeRepo  repositories.DocumentTypeRepository
	projects     ProjectService
	log          *logger.Logger
}

func NewDocumentService(
	db *gorm.DB,
	documentRepo repositories.DocumentRepository,
	versionRepo repositories.DocumentVersionRepository,
	approvalRepo repositories.ApprovalRepository,
	docTypeRepo repositories.DocumentTypeRepository,
	projects ProjectService,
	baseLog *logger.Logger,
) DocumentService {
	return &documentService{
		db:           db,
		documentRepo: documentRepo,
		versionRepo:  versionRepo,
		approvalRepo: approvalRepo,
		docTypeRepo:  docTypeRepo,
		projects:     projects,
		log:          baseLog.With("service", "DocumentService"),
	}
}

func (s *documentService) CreateDocument(ctx context.Context, projectID uint, req models.CreateDocumentRequest, userID uint) (*models.Document, error) {
	if err := s.projects.EnsureAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}
	docType := normalizeDocType(req.DocType)
	if _, err := s.docTypeRepo.GetByCode(dbctx.New(ctx), docType); err != nil {
		return nil, notFound(err, fmt.Errorf("%w: %s", workflow.ErrUnknownDocumentType, docType))
	}

	document := &models.Document{
		ProjectID: projectID,
		DocType:   docType,
		Title:     req.Title,
		CreatedBy: userID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.documentRepo.Create(dbc, document); err != nil {
			return err
		}
		return s.versionRepo.Create(dbc, &models.DocumentVersion{
			DocumentID:    document.ID,
			VersionString: versionString(1),
			AuthorID:      userID,
			State:         models.StateDraft,
			ContentJSON:   datatypes.JSON("{}"),
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("document created", "document_id", document.ID, "project_id", projectID, "doc_type", docType)
	return s.documentRepo.GetByID(dbctx.New(ctx), document.ID)
}

func (s *documentService) GetDocuments(ctx context.Context, projectID uint, params models.DocumentListParams, userID uint) ([]models.Document, error) {
	if err := s.projects.EnsureAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}
	params.DocType = normalizeDocType(params.DocType)
	return s.documentRepo.GetList(dbctx.New(ctx), projectID, params)
}

func (s *documentService) GetDocument(ctx context.Context, id, userID uint) (*models.Document, error) {
	document, err := s.documentRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	if err := s.projects.EnsureAccess(ctx, document.ProjectID, userID); err != nil {
		return nil, err
	}
	return document, nil
}

// CreateVersion starts the next draft. Only one version per document may be
// DRAFT or IN_REVIEW at a time.
func (s *documentService) CreateVersion(ctx context.Context, documentID uint, req models.CreateVersionRequest, userID uint) (*models.DocumentVersion, error) {
	document, err := s.GetDocument(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	content, err := contentJSON(req.ContentJSON)
	if err != nil {
		return nil, err
	}

	var version *models.DocumentVersion
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.documentRepo.LockByID(dbc, document.ID); err != nil {
			return err
		}
		open, err := s.versionRepo.CountOpenByDocument(dbc, document.ID)
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrOpenVersionExists
		}
		count, err := s.versionRepo.CountByDocument(dbc, document.ID)
		if err != nil {
			return err
		}
		version = &models.DocumentVersion{
			DocumentID:    document.ID,
			VersionString: versionString(int(count) + 1),
			AuthorID:      userID,
			State:         models.StateDraft,
			ContentJSON:   content,
		}
		return s.versionRepo.Create(dbc, version)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("version created", "document_id", document.ID, "version_id", version.ID, "version", version.VersionString)
	return version, nil
}

func (s *documentService) GetVersions(ctx context.Context, documentID, userID uint) ([]models.DocumentVersion, error) {
	if _, err := s.GetDocument(ctx, documentID, userID); err != nil {
		return nil, err
	}
	return s.versionRepo.GetVersions(dbctx.New(ctx), documentID)
}

// GetVersion returns the version with every approval of every round.
func (s *documentService) GetVersion(ctx context.Context, versionID, userID uint) (*models.DocumentVersion, error) {
	dbc := dbctx.New(ctx)
	version, err := s.versionRepo.GetByID(dbc, versionID)
	if err != nil {
		return nil, notFound(err, workflow.ErrVersionNotFound)
	}
	if _, err := s.GetDocument(ctx, version.DocumentID, userID); err != nil {
		return nil, err
	}
	approvals, err := s.approvalRepo.GetByVersion(dbc, versionID)
	if err != nil {
		return nil, err
	}
	version.Approvals = approvals
	return version, nil
}

func (s *documentService) UpdateVersionContent(ctx context.Context, versionID uint, req models.UpdateVersionRequest, userID uint) (*models.DocumentVersion, error) {
	content, err := contentJSON(req.ContentJSON)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		version, err := s.versionRepo.LockByID(dbc, versionID)
		if err != nil {
			return notFound(err, workflow.ErrVersionNotFound)
		}
		if version.IsLocked() {
			return workflow.ErrVersionLocked
		}
		if version.AuthorID != userID {
			return ErrNotVersionAuthor
		}
		if version.State != models.StateDraft {
			return fmt.Errorf("%w: cannot edit version in state %s", workflow.ErrInvalidStateTransition, version.State)
		}
		n, err := s.versionRepo.UpdateContent(dbc, versionID, content)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: version changed concurrently", workflow.ErrInvalidStateTransition)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.versionRepo.GetByID(dbctx.New(ctx), versionID)
}

func versionString(n int) string {
	return fmt.Sprintf("v%d.0", n)
}

// contentJSON accepts an absent payload as an empty object.
func contentJSON(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON("{}"), nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, ErrInvalidContent
	}
	return datatypes.JSON(raw), nil
}
