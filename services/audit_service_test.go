package services

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"doc-governance/testutil"
	"doc-governance/workflow"
)

func (s *ServiceTestSuite) TestRecordCarriesRequestMeta() {
	ctx := WithRequestMeta(s.ctx, RequestMeta{IP: "10.0.0.1", UserAgent: "curl/8"})
	err := s.audit.Record(ctx, workflow.RecordAudit{
		ProjectID:  s.project.ID,
		ActorID:    s.author.ID,
		Action:     workflow.AuditActionSubmit,
		EntityType: workflow.EntityDocumentVersion,
		EntityID:   1,
		After:      map[string]interface{}{"state": "IN_REVIEW"},
	})
	s.Require().NoError(err)

	logs, total, err := s.audit.GetAuditLogs(s.ctx, s.project.ID, defaultAuditParams(), s.author.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("10.0.0.1", logs[0].IP)
	s.Equal("curl/8", logs[0].UserAgent)
	s.Empty(logs[0].BeforeJSON)
	s.JSONEq(`{"state":"IN_REVIEW"}`, string(logs[0].AfterJSON))
}

func (s *ServiceTestSuite) TestExportXLSX() {
	_, v := testutil.SeedDraft(s.T(), s.db, s.project.ID, s.author.ID, "TEST_PLAN")
	_, err := s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.Require().NoError(err)
	_, err = s.review.Approve(s.ctx, v.ID, s.qa.ID, "ok")
	s.Require().NoError(err)

	raw, err := s.audit.ExportXLSX(s.ctx, s.project.ID, s.author.ID)
	s.Require().NoError(err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	s.Require().NoError(err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Audit")
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal("Action", rows[0][2])
	s.Equal(workflow.AuditActionSubmit, rows[1][2])
	s.Equal(workflow.AuditActionApprove, rows[2][2])

	outsider := s.seedUser("outsider")
	_, err = s.audit.ExportXLSX(s.ctx, s.project.ID, outsider.ID)
	s.ErrorIs(err, ErrForbidden)
}
