package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
	"doc-governance/repositories"
)

var defaultDocumentTypeNames = map[string]string{
	"PDD":           "Product Definition Document",
	"SDD":           "Software Design Document",
	"TSS":           "Technical Specification Sheet",
	"TEST_PLAN":     "Test Plan",
	"TEST_REPORT":   "Test Report",
	"RELEASE_NOTES": "Release Notes",
	"OTHER":         "Other",

	"VALIDATION_REPORT": "Validation Report",
	"CHANGE_REQUEST":    "Change Request",
	"RISK_ASSESSMENT":   "Risk Assessment",
	"SOP":               "Standard Operating Procedure",
}

// DefaultDocumentTypeCodes is the stock catalogue, sorted. Types without an
// approval policy can hold documents but cannot be submitted.
func DefaultDocumentTypeCodes() []string {
	codes := make([]string, 0, len(defaultDocumentTypeNames))
	for code := range defaultDocumentTypeNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

var knownCompliance = map[models.ComplianceStandard]bool{
	models.ComplianceHIPAA:    true,
	models.ComplianceGxP:      true,
	models.ComplianceGIS:      true,
	models.ComplianceSOC2:     true,
	models.ComplianceISO27001: true,
}

type DocumentTypeService interface {
	CreateDocumentType(ctx context.Context, req models.CreateDocumentTypeRequest) (*models.DocumentType, error)
	GetDocumentTypes(ctx context.Context) ([]models.DocumentType, error)
	GetDocumentType(ctx context.Context, code string) (*models.DocumentType, error)
	// SeedDefaults registers a row for every code that is missing one.
	SeedDefaults(ctx context.Context, codes []string) error
}

type documentTypeService struct {
	docTypeRepo repositories.DocumentTypeRepository
	log         *logger.Logger
}

func NewDocumentTypeService(docTypeRepo repositories.DocumentTypeRepository, baseLog *logger.Logger) DocumentTypeService {
	return &documentTypeService{
		docTypeRepo: docTypeRepo,
		log:         baseLog.With("service", "DocumentTypeService"),
	}
}

func (s *documentTypeService) CreateDocumentType(ctx context.Context, req models.CreateDocumentTypeRequest) (*models.DocumentType, error) {
	dbc := dbctx.New(ctx)
	code := normalizeDocType(req.Code)

	_, err := s.docTypeRepo.GetByCode(dbc, code)
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	docType := &models.DocumentType{
		Code:        code,
		Name:        req.Name,
		Description: req.Description,
		Compliance:  ComplianceWithBaseline(req.Compliance),
	}
	if err := s.docTypeRepo.Create(dbc, docType); err != nil {
		return nil, err
	}
	s.log.Info("document type created", "code", code)
	return docType, nil
}

func (s *documentTypeService) GetDocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	return s.docTypeRepo.GetAll(dbctx.New(ctx))
}

func (s *documentTypeService) GetDocumentType(ctx context.Context, code string) (*models.DocumentType, error) {
	docType, err := s.docTypeRepo.GetByCode(dbctx.New(ctx), normalizeDocType(code))
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return docType, nil
}

func (s *documentTypeService) SeedDefaults(ctx context.Context, codes []string) error {
	dbc := dbctx.New(ctx)
	for _, code := range codes {
		code = normalizeDocType(code)
		name, ok := defaultDocumentTypeNames[code]
		if !ok {
			name = strings.ReplaceAll(code, "_", " ")
		}
		err := s.docTypeRepo.EnsureExists(dbc, &models.DocumentType{
			Code:       code,
			Name:       name,
			Compliance: ComplianceWithBaseline(nil),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ComplianceWithBaseline drops unknown and duplicate standards and always
// includes GIS.
func ComplianceWithBaseline(in []models.ComplianceStandard) []models.ComplianceStandard {
	out := []models.ComplianceStandard{models.ComplianceGIS}
	seen := map[models.ComplianceStandard]bool{models.ComplianceGIS: true}
	for _, c := range in {
		if !knownCompliance[c] || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func normalizeDocType(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
