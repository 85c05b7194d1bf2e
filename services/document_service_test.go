package services

import (
	"encoding/json"

	"doc-governance/models"
	"doc-governance/workflow"
)

func (s *ServiceTestSuite) seedDocTypes() {
	s.Require().NoError(s.docTypes.SeedDefaults(s.ctx, []string{"SDD", "PDD"}))
}

func (s *ServiceTestSuite) TestCreateDocumentStartsFirstDraft() {
	s.seedDocTypes()

	doc, err := s.documents.CreateDocument(s.ctx, s.project.ID, models.CreateDocumentRequest{DocType: "sdd", Title: "Payments design"}, s.author.ID)
	s.Require().NoError(err)
	s.Equal("SDD", doc.DocType)
	s.Nil(doc.CurrentVersionID)

	versions, err := s.documents.GetVersions(s.ctx, doc.ID, s.author.ID)
	s.Require().NoError(err)
	s.Require().Len(versions, 1)
	s.Equal("v1.0", versions[0].VersionString)
	s.Equal(models.StateDraft, versions[0].State)

	_, err = s.documents.CreateVersion(s.ctx, doc.ID, models.CreateVersionRequest{}, s.author.ID)
	s.ErrorIs(err, ErrOpenVersionExists)

	list, err := s.documents.GetDocuments(s.ctx, s.project.ID, models.DocumentListParams{DocType: "SDD"}, s.qa.ID)
	s.NoError(err)
	s.Len(list, 1)
	list, err = s.documents.GetDocuments(s.ctx, s.project.ID, models.DocumentListParams{DocType: "PDD"}, s.qa.ID)
	s.NoError(err)
	s.Empty(list)
}

func (s *ServiceTestSuite) TestCreateDocumentRejectsUnknownType() {
	s.seedDocTypes()
	_, err := s.documents.CreateDocument(s.ctx, s.project.ID, models.CreateDocumentRequest{DocType: "NOPE", Title: "x"}, s.author.ID)
	s.ErrorIs(err, workflow.ErrUnknownDocumentType)
}

func (s *ServiceTestSuite) TestOutsiderCannotReadDocuments() {
	s.seedDocTypes()
	outsider := s.seedUser("stranger")
	doc, err := s.documents.CreateDocument(s.ctx, s.project.ID, models.CreateDocumentRequest{DocType: "PDD", Title: "Scope"}, s.author.ID)
	s.Require().NoError(err)

	_, err = s.documents.GetDocument(s.ctx, doc.ID, outsider.ID)
	s.ErrorIs(err, ErrForbidden)
	_, err = s.documents.GetDocument(s.ctx, 9999, s.author.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ServiceTestSuite) TestNextVersionAfterApproval() {
	s.seedDocTypes()
	doc, err := s.documents.CreateDocument(s.ctx, s.project.ID, models.CreateDocumentRequest{DocType: "PDD", Title: "Scope"}, s.author.ID)
	s.Require().NoError(err)

	versions, err := s.documents.GetVersions(s.ctx, doc.ID, s.author.ID)
	s.Require().NoError(err)
	first := versions[0]

	// PDD needs a Business Owner and a QA Officer.
	bo := s.seedUser("bo")
	s.addMember(bo.ID, models.ProjectRoleBusinessOwner, false)

	_, err = s.review.Submit(s.ctx, first.ID, s.author.ID)
	s.Require().NoError(err)
	_, err = s.review.Approve(s.ctx, first.ID, bo.ID, "")
	s.Require().NoError(err)
	res, err := s.review.Approve(s.ctx, first.ID, s.qa.ID, "")
	s.Require().NoError(err)
	s.Require().True(res.Completed)

	next, err := s.documents.CreateVersion(s.ctx, doc.ID, models.CreateVersionRequest{ContentJSON: json.RawMessage(`{"scope":"v2"}`)}, s.author.ID)
	s.Require().NoError(err)
	s.Equal("v2.0", next.VersionString)

	got, err := s.documents.GetVersion(s.ctx, first.ID, s.qa.ID)
	s.Require().NoError(err)
	s.Len(got.Approvals, 2)
}

func (s *ServiceTestSuite) TestUpdateVersionContent() {
	s.seedDocTypes()
	doc, err := s.documents.CreateDocument(s.ctx, s.project.ID, models.CreateDocumentRequest{DocType: "PDD", Title: "Scope"}, s.author.ID)
	s.Require().NoError(err)
	versions, err := s.documents.GetVersions(s.ctx, doc.ID, s.author.ID)
	s.Require().NoError(err)
	v := versions[0]

	updated, err := s.documents.UpdateVersionContent(s.ctx, v.ID, models.UpdateVersionRequest{ContentJSON: json.RawMessage(`{"body":"hello"}`)}, s.author.ID)
	s.Require().NoError(err)
	s.JSONEq(`{"body":"hello"}`, string(updated.ContentJSON))

	_, err = s.documents.UpdateVersionContent(s.ctx, v.ID, models.UpdateVersionRequest{ContentJSON: json.RawMessage(`{"body":"x"}`)}, s.qa.ID)
	s.ErrorIs(err, ErrNotVersionAuthor)

	_, err = s.documents.UpdateVersionContent(s.ctx, v.ID, models.UpdateVersionRequest{ContentJSON: json.RawMessage(`[1,2]`)}, s.author.ID)
	s.ErrorIs(err, ErrInvalidContent)

	_, err = s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.Require().NoError(err)
	_, err = s.documents.UpdateVersionContent(s.ctx, v.ID, models.UpdateVersionRequest{ContentJSON: json.RawMessage(`{"body":"late"}`)}, s.author.ID)
	s.ErrorIs(err, workflow.ErrInvalidStateTransition)
}

func (s *ServiceTestSuite) TestSeedCatalogueIsIdempotent() {
	codes := DefaultDocumentTypeCodes()
	s.Contains(codes, "SOP")
	s.Contains(codes, "VALIDATION_REPORT")

	s.Require().NoError(s.docTypes.SeedDefaults(s.ctx, codes))
	s.Require().NoError(s.docTypes.SeedDefaults(s.ctx, append(codes, "sdd")))

	all, err := s.docTypes.GetDocumentTypes(s.ctx)
	s.Require().NoError(err)
	s.Len(all, len(codes))

	sop, err := s.docTypes.GetDocumentType(s.ctx, "sop")
	s.Require().NoError(err)
	s.Equal("Standard Operating Procedure", sop.Name)
	s.Equal([]models.ComplianceStandard{models.ComplianceGIS}, []models.ComplianceStandard(sop.Compliance))
}

func (s *ServiceTestSuite) TestCreateDocumentTypeAddsBaseline() {
	dt, err := s.docTypes.CreateDocumentType(s.ctx, models.CreateDocumentTypeRequest{
		Code:       " runbook ",
		Name:       "Runbook",
		Compliance: []models.ComplianceStandard{models.ComplianceSOC2, "PCI", models.ComplianceSOC2},
	})
	s.Require().NoError(err)
	s.Equal("RUNBOOK", dt.Code)
	s.Equal([]models.ComplianceStandard{models.ComplianceGIS, models.ComplianceSOC2}, []models.ComplianceStandard(dt.Compliance))

	_, err = s.docTypes.CreateDocumentType(s.ctx, models.CreateDocumentTypeRequest{Code: "RUNBOOK", Name: "Again"})
	s.ErrorIs(err, ErrAlreadyExists)
}
