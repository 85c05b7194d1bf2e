package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
	"doc-governance/testutil"
)

type RepositoryTestSuite struct {
	suite.Suite
	db  *gorm.DB
	dbc dbctx.Context

	versions  DocumentVersionRepository
	approvals ApprovalRepository
	members   ProjectMemberRepository
	tasks     TaskRepository
	audit     AuditLogRepository
	documents DocumentRepository
}

func (s *RepositoryTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.dbc = dbctx.New(context.Background())
	log := logger.Nop()
	s.versions = NewDocumentVersionRepository(s.db, log)
	s.approvals = NewApprovalRepository(s.db, log)
	s.members = NewProjectMemberRepository(s.db, log)
	s.tasks = NewTaskRepository(s.db, log)
	s.audit = NewAuditLogRepository(s.db, log)
	s.documents = NewDocumentRepository(s.db, log)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) TestDecideIsGuardedOnPending() {
	owner := testutil.SeedUser(s.T(), s.db, "owner")
	project := testutil.SeedProject(s.T(), s.db, owner.ID)
	_, v := testutil.SeedDraft(s.T(), s.db, project.ID, owner.ID, "PDD")

	rows := []models.Approval{{VersionID: v.ID, ReviewRound: 1, StepNo: 1, Role: models.ProjectRoleQA, Status: models.ApprovalPending}}
	s.Require().NoError(s.approvals.CreateBatch(s.dbc, rows))

	round, err := s.approvals.GetByRound(s.dbc, v.ID, 1)
	s.Require().NoError(err)
	s.Require().Len(round, 1)

	approver := uint(42)
	n, err := s.approvals.Decide(s.dbc, round[0].ID, models.ApprovalApproved, &approver, "ok", time.Now())
	s.NoError(err)
	s.Equal(int64(1), n)

	n, err = s.approvals.Decide(s.dbc, round[0].ID, models.ApprovalRejected, &approver, "late", time.Now())
	s.NoError(err)
	s.Equal(int64(0), n)

	round, err = s.approvals.GetByRound(s.dbc, v.ID, 1)
	s.Require().NoError(err)
	s.Equal(models.ApprovalApproved, round[0].Status)
	s.Equal("ok", round[0].Comment)
}

func (s *RepositoryTestSuite) TestApplyStateIsGuardedOnFromStateAndLock() {
	owner := testutil.SeedUser(s.T(), s.db, "owner")
	project := testutil.SeedProject(s.T(), s.db, owner.ID)
	_, v := testutil.SeedDraft(s.T(), s.db, project.ID, owner.ID, "PDD")

	v.State = models.StateInReview
	v.ReviewRound = 1
	n, err := s.versions.ApplyState(s.dbc, v, models.StateDraft)
	s.NoError(err)
	s.Equal(int64(1), n)

	// stale from-state
	n, err = s.versions.ApplyState(s.dbc, v, models.StateDraft)
	s.NoError(err)
	s.Equal(int64(0), n)

	now := time.Now()
	v.State = models.StateApproved
	v.LockedAt = &now
	n, err = s.versions.ApplyState(s.dbc, v, models.StateInReview)
	s.NoError(err)
	s.Equal(int64(1), n)

	v.State = models.StateDraft
	v.LockedAt = nil
	n, err = s.versions.ApplyState(s.dbc, v, models.StateApproved)
	s.NoError(err)
	s.Equal(int64(0), n, "a locked version never changes state")

	stored, err := s.versions.GetByID(s.dbc, v.ID)
	s.Require().NoError(err)
	s.Equal(models.StateApproved, stored.State)
	s.True(stored.IsLocked())
}

func (s *RepositoryTestSuite) TestUpdateContentOnlyOnDraft() {
	owner := testutil.SeedUser(s.T(), s.db, "owner")
	project := testutil.SeedProject(s.T(), s.db, owner.ID)
	_, v := testutil.SeedDraft(s.T(), s.db, project.ID, owner.ID, "PDD")

	n, err := s.versions.UpdateContent(s.dbc, v.ID, datatypes.JSON(`{"a":1}`))
	s.NoError(err)
	s.Equal(int64(1), n)

	s.Require().NoError(s.db.Model(v).Update("state", models.StateInReview).Error)
	n, err = s.versions.UpdateContent(s.dbc, v.ID, datatypes.JSON(`{"a":2}`))
	s.NoError(err)
	s.Equal(int64(0), n)
}

func (s *RepositoryTestSuite) TestLockByIDInsideTransaction() {
	owner := testutil.SeedUser(s.T(), s.db, "owner")
	project := testutil.SeedProject(s.T(), s.db, owner.ID)
	_, v := testutil.SeedDraft(s.T(), s.db, project.ID, owner.ID, "PDD")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.versions.LockByID(s.dbc.WithTx(tx), v.ID)
		s.Require().NoError(err)
		s.Equal(v.ID, locked.ID)
		return nil
	})
	s.NoError(err)

	_, err = s.versions.LockByID(s.dbc, 9999)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestMembersAddReactivatesAndAssignee() {
	owner := testutil.SeedUser(s.T(), s.db, "owner")
	qa := testutil.SeedUser(s.T(), s.db, "qa")
	sme := testutil.SeedUser(s.T(), s.db, "sme")
	project := testutil.SeedProject(s.T(), s.db, owner.ID)

	s.Require().NoError(s.members.Add(s.dbc, &models.ProjectMember{ProjectID: project.ID, UserID: sme.ID, RoleCode: models.ProjectRoleQA, IsTemporary: true}))
	assignee, err := s.members.FindAssignee(s.dbc, project.ID, models.ProjectRoleQA, owner.ID)
	s.NoError(err)
	s.Nil(assignee, "temporary members never get approval tasks")

	m := &models.ProjectMember{ProjectID: project.ID, UserID: qa.ID, RoleCode: models.ProjectRoleQA}
	s.Require().NoError(s.members.Add(s.dbc, m))
	assignee, err = s.members.FindAssignee(s.dbc, project.ID, models.ProjectRoleQA, owner.ID)
	s.NoError(err)
	s.Require().NotNil(assignee)
	s.Equal(qa.ID, assignee.UserID)

	n, err := s.members.Deactivate(s.dbc, project.ID, assignee.ID)
	s.NoError(err)
	s.Equal(int64(1), n)
	active, err := s.members.ListActiveForUser(s.dbc, project.ID, qa.ID)
	s.NoError(err)
	s.Empty(active)

	s.Require().NoError(s.members.Add(s.dbc, &models.ProjectMember{ProjectID: project.ID, UserID: qa.ID, RoleCode: models.ProjectRoleQA}))
	active, err = s.members.ListActiveForUser(s.dbc, project.ID, qa.ID)
	s.NoError(err)
	s.Len(active, 1)
}

func (s *RepositoryTestSuite) TestTasksForUserAndClose() {
	owner := testutil.SeedUser(s.T(), s.db, "owner")
	qa := testutil.SeedUser(s.T(), s.db, "qa")
	project := testutil.SeedProject(s.T(), s.db, owner.ID)
	testutil.SeedMember(s.T(), s.db, project.ID, qa.ID, models.ProjectRoleQA, false)
	_, v := testutil.SeedDraft(s.T(), s.db, project.ID, owner.ID, "PDD")

	byRole := &models.Task{ProjectID: project.ID, VersionID: v.ID, TaskType: models.TaskTypeApproval, Title: "qa", RequiredRole: models.ProjectRoleQA, Status: models.TaskOpen}
	other := &models.Task{ProjectID: project.ID, VersionID: v.ID, TaskType: models.TaskTypeApproval, Title: "bo", RequiredRole: models.ProjectRoleBusinessOwner, Status: models.TaskOpen}
	s.Require().NoError(s.tasks.Create(s.dbc, byRole))
	s.Require().NoError(s.tasks.Create(s.dbc, other))

	mine, err := s.tasks.GetOpenForUser(s.dbc, qa.ID)
	s.NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(byRole.ID, mine[0].ID)

	closed, err := s.tasks.CloseOpenByVersion(s.dbc, v.ID, time.Now())
	s.NoError(err)
	s.ElementsMatch([]uint{byRole.ID, other.ID}, closed)

	mine, err = s.tasks.GetOpenForUser(s.dbc, qa.ID)
	s.NoError(err)
	s.Empty(mine)

	all, err := s.tasks.GetByProject(s.dbc, project.ID, models.TaskClosed)
	s.NoError(err)
	s.Len(all, 2)
}

func (s *RepositoryTestSuite) TestAuditLogPagination() {
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.audit.Create(s.dbc, &models.AuditLog{ProjectID: 7, ActorID: 1, Action: "SUBMIT", EntityType: "DocumentVersion", EntityID: uint(i + 1)}))
	}
	s.Require().NoError(s.audit.Create(s.dbc, &models.AuditLog{ProjectID: 7, ActorID: 1, Action: "APPROVE", EntityType: "Approval", EntityID: 1}))

	page, total, err := s.audit.GetList(s.dbc, 7, models.AuditListParams{Action: "SUBMIT", Page: 2, Limit: 2})
	s.NoError(err)
	s.Equal(int64(5), total)
	s.Len(page, 2)

	all, err := s.audit.GetAll(s.dbc, 7)
	s.NoError(err)
	s.Len(all, 6)
}

func (s *RepositoryTestSuite) TestSetCurrentVersion() {
	owner := testutil.SeedUser(s.T(), s.db, "owner")
	project := testutil.SeedProject(s.T(), s.db, owner.ID)
	doc, v := testutil.SeedDraft(s.T(), s.db, project.ID, owner.ID, "PDD")

	s.Require().NoError(s.documents.SetCurrentVersion(s.dbc, doc.ID, v.ID))
	got, err := s.documents.GetByID(s.dbc, doc.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.CurrentVersionID)
	s.Equal(v.ID, *got.CurrentVersionID)
	s.ErrorIs(s.documents.SetCurrentVersion(s.dbc, 9999, v.ID), gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestDocumentLockAndUniqueVersionString() {
	owner := testutil.SeedUser(s.T(), s.db, "owner")
	project := testutil.SeedProject(s.T(), s.db, owner.ID)
	doc, _ := testutil.SeedDraft(s.T(), s.db, project.ID, owner.ID, "PDD")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.documents.LockByID(s.dbc.WithTx(tx), doc.ID)
		s.Require().NoError(err)
		s.Equal(doc.ID, locked.ID)
		return nil
	})
	s.NoError(err)

	_, err = s.documents.LockByID(s.dbc, 9999)
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	dup := &models.DocumentVersion{DocumentID: doc.ID, VersionString: "v1.0", AuthorID: owner.ID, State: models.StateDraft}
	s.Error(s.versions.Create(s.dbc, dup), "a document cannot hold two versions with the same number")
}
