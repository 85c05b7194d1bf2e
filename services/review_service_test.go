package services

import (
	"doc-governance/dbctx"
	"doc-governance/models"
	"doc-governance/notify"
	"doc-governance/testutil"
	"doc-governance/workflow"
)

func (s *ServiceTestSuite) TestSDDApprovalScenario() {
	doc, v := testutil.SeedDraft(s.T(), s.db, s.project.ID, s.author.ID, "SDD")

	res, err := s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.Require().NoError(err)
	s.Equal(models.StateInReview, res.Version.State)
	s.Require().Len(res.Approvals, 3)
	for _, a := range res.Approvals {
		s.Equal(models.ApprovalPending, a.Status)
	}
	s.Equal(3, s.publisher.count(notify.EventTaskCreated))

	_, err = s.review.Approve(s.ctx, v.ID, s.author.ID, "")
	s.ErrorIs(err, workflow.ErrAuthorCannotApprove)

	res, err = s.review.Approve(s.ctx, v.ID, s.architect.ID, "design ok")
	s.Require().NoError(err)
	s.False(res.Completed)
	s.Equal(models.StateInReview, s.reload(v.ID).State)

	res, err = s.review.Approve(s.ctx, v.ID, s.qa.ID, "tests ok")
	s.Require().NoError(err)
	s.False(res.Completed)

	res, err = s.review.Approve(s.ctx, v.ID, s.architect.ID, "final")
	s.Require().NoError(err)
	s.True(res.Completed)

	stored := s.reload(v.ID)
	s.Equal(models.StateApproved, stored.State)
	s.NotNil(stored.LockedAt)

	var d models.Document
	s.Require().NoError(s.db.First(&d, doc.ID).Error)
	s.Require().NotNil(d.CurrentVersionID)
	s.Equal(v.ID, *d.CurrentVersionID)

	open, err := s.tasks.GetMyTasks(s.ctx, s.architect.ID)
	s.NoError(err)
	s.Empty(open)
	s.Equal(1, s.publisher.count(notify.EventTasksClosed))

	logs, total, err := s.audit.GetAuditLogs(s.ctx, s.project.ID, models.AuditListParams{Page: 1, Limit: 50}, s.author.ID)
	s.NoError(err)
	s.Equal(int64(4), total, "one submit and three approvals")
	s.Len(logs, 4)

	_, err = s.review.Approve(s.ctx, v.ID, s.qa.ID, "")
	s.ErrorIs(err, workflow.ErrVersionLocked)
	_, err = s.review.Reject(s.ctx, v.ID, s.qa.ID, "")
	s.ErrorIs(err, workflow.ErrInvalidStateTransition)
	_, err = s.documents.UpdateVersionContent(s.ctx, v.ID, models.UpdateVersionRequest{ContentJSON: []byte(`{"x":1}`)}, s.author.ID)
	s.ErrorIs(err, workflow.ErrVersionLocked)
}

func (s *ServiceTestSuite) TestTemporaryMemberCannotApprove() {
	_, v := testutil.SeedDraft(s.T(), s.db, s.project.ID, s.author.ID, "TEST_PLAN")
	_, err := s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.Require().NoError(err)

	_, err = s.review.Approve(s.ctx, v.ID, s.sme.ID, "")
	s.ErrorIs(err, workflow.ErrTemporaryUserCannotApprove)

	c, err := s.review.AddComment(s.ctx, v.ID, s.sme.ID, "looks fine", "")
	s.Require().NoError(err)
	s.Equal(s.sme.ID, c.AuthorID)
}

func (s *ServiceTestSuite) TestRejectReturnsToDraftAndResubmitOpensNewRound() {
	_, v := testutil.SeedDraft(s.T(), s.db, s.project.ID, s.author.ID, "SDD")
	_, err := s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.Require().NoError(err)

	_, err = s.review.Approve(s.ctx, v.ID, s.architect.ID, "")
	s.Require().NoError(err)

	res, err := s.review.Reject(s.ctx, v.ID, s.qa.ID, "missing threat model")
	s.Require().NoError(err)
	s.Equal(models.StateDraft, res.Version.State)

	statuses := map[int]models.ApprovalStatus{}
	for _, a := range res.Approvals {
		statuses[a.StepNo] = a.Status
	}
	s.Equal(models.ApprovalApproved, statuses[1])
	s.Equal(models.ApprovalRejected, statuses[2])
	s.Equal(models.ApprovalRejected, statuses[3])

	mine, err := s.tasks.GetMyTasks(s.ctx, s.qa.ID)
	s.NoError(err)
	s.Empty(mine)

	res, err = s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.Require().NoError(err)
	s.Equal(2, res.Version.ReviewRound)
	s.Len(res.Approvals, 3)

	var all []models.Approval
	s.Require().NoError(s.db.Where("version_id = ?", v.ID).Find(&all).Error)
	s.Len(all, 6, "rejected rounds stay as history")
}

func (s *ServiceTestSuite) TestStaleApprovalIsAlreadyDecided() {
	_, v := testutil.SeedDraft(s.T(), s.db, s.project.ID, s.author.ID, "PDD")
	testutil.SeedMember(s.T(), s.db, s.project.ID, s.architect.ID, models.ProjectRoleBusinessOwner, false)
	_, err := s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.Require().NoError(err)

	dbc := dbctx.New(s.ctx)
	snap, actor, err := s.review.snapshot(dbc, v.ID, s.architect.ID)
	s.Require().NoError(err)
	stale, err := s.review.engine.Approve(snap, actor, "")
	s.Require().NoError(err)

	_, err = s.review.Approve(s.ctx, v.ID, s.architect.ID, "")
	s.Require().NoError(err)

	err = s.review.apply(dbc, snap, stale)
	s.ErrorIs(err, workflow.ErrAlreadyDecided)
}

func (s *ServiceTestSuite) TestCompletionFiresOnce() {
	_, v := testutil.SeedDraft(s.T(), s.db, s.project.ID, s.author.ID, "TEST_PLAN")
	_, err := s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.Require().NoError(err)

	dbc := dbctx.New(s.ctx)
	snap, actor, err := s.review.snapshot(dbc, v.ID, s.qa.ID)
	s.Require().NoError(err)
	t, err := s.review.engine.Approve(snap, actor, "")
	s.Require().NoError(err)
	s.Require().True(t.Completed)

	// someone else locked the version in between
	s.Require().NoError(s.db.Model(&models.DocumentVersion{}).Where("id = ?", v.ID).
		Updates(map[string]interface{}{"state": models.StateApproved, "locked_at": snap.Version.CreatedAt}).Error)

	s.Require().NoError(s.review.apply(dbc, snap, t))
	s.False(t.Completed)
	for _, eff := range t.Effects {
		_, isPointer := eff.(workflow.UpdateDocumentPointer)
		s.False(isPointer)
	}
}

func (s *ServiceTestSuite) TestUnknownVersion() {
	_, err := s.review.Submit(s.ctx, 4242, s.author.ID)
	s.ErrorIs(err, workflow.ErrVersionNotFound)
	_, err = s.review.AddComment(s.ctx, 4242, s.author.ID, "hi", "")
	s.ErrorIs(err, workflow.ErrVersionNotFound)
}

func (s *ServiceTestSuite) TestUnknownDocumentTypeOnSubmit() {
	_, v := testutil.SeedDraft(s.T(), s.db, s.project.ID, s.author.ID, "CHANGE_REQUEST")
	_, err := s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.ErrorIs(err, workflow.ErrUnknownDocumentType)
	s.Equal(models.StateDraft, s.reload(v.ID).State)
}

func (s *ServiceTestSuite) TestOutsiderCannotSubmitOrComment() {
	outsider := testutil.SeedUser(s.T(), s.db, "outsider")
	_, v := testutil.SeedDraft(s.T(), s.db, s.project.ID, s.author.ID, "PDD")

	_, err := s.review.Submit(s.ctx, v.ID, outsider.ID)
	s.ErrorIs(err, ErrForbidden)
	_, err = s.review.AddComment(s.ctx, v.ID, outsider.ID, "hi", "")
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceTestSuite) TestReviewerCommentBlocksApprovalInOtherRole() {
	_, v := testutil.SeedDraft(s.T(), s.db, s.project.ID, s.author.ID, "SDD")
	testutil.SeedMember(s.T(), s.db, s.project.ID, s.qa.ID, models.ProjectRoleArchitect, false)
	_, err := s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.Require().NoError(err)

	_, err = s.review.AddComment(s.ctx, v.ID, s.qa.ID, "as QA: coverage is thin", models.ProjectRoleQA)
	s.Require().NoError(err)

	_, err = s.review.Approve(s.ctx, v.ID, s.qa.ID, "")
	s.ErrorIs(err, workflow.ErrReviewerCannotApproveSameVersion)

	comments, err := s.review.GetComments(s.ctx, v.ID, s.author.ID)
	s.NoError(err)
	s.Len(comments, 1)
}
