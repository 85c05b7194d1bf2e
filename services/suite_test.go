package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"doc-governance/logger"
	"doc-governance/models"
	"doc-governance/notify"
	"doc-governance/policy"
	"doc-governance/repositories"
	"doc-governance/testutil"
	"doc-governance/workflow"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.TaskEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evt notify.TaskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(event string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

type ServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	db        *gorm.DB
	publisher *recordingPublisher

	review    *reviewService
	tasks     TaskService
	audit     AuditService
	documents DocumentService
	projects  ProjectService
	docTypes  DocumentTypeService

	author, architect, qa, sme *models.User
	project                    *models.Project
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewDB(s.T())
	s.publisher = &recordingPublisher{}
	log := logger.Nop()

	userRepo := repositories.NewUserRepository(s.db, log)
	projectRepo := repositories.NewProjectRepository(s.db, log)
	memberRepo := repositories.NewProjectMemberRepository(s.db, log)
	documentRepo := repositories.NewDocumentRepository(s.db, log)
	versionRepo := repositories.NewDocumentVersionRepository(s.db, log)
	approvalRepo := repositories.NewApprovalRepository(s.db, log)
	commentRepo := repositories.NewReviewCommentRepository(s.db, log)
	docTypeRepo := repositories.NewDocumentTypeRepository(s.db, log)

	projects := NewProjectService(s.db, projectRepo, memberRepo, userRepo, log)
	s.projects = projects
	s.docTypes = NewDocumentTypeService(docTypeRepo, log)
	s.tasks = NewTaskService(repositories.NewTaskRepository(s.db, log), memberRepo, projects, s.publisher, log)
	s.audit = NewAuditService(repositories.NewAuditLogRepository(s.db, log), projects, log)
	s.documents = NewDocumentService(s.db, documentRepo, versionRepo, approvalRepo, docTypeRepo, projects, log)

	s.review = NewReviewService(ReviewServiceDeps{
		DB:           s.db,
		Engine:       workflow.NewEngine(policy.DefaultRegistry()),
		DocumentRepo: documentRepo,
		VersionRepo:  versionRepo,
		ApprovalRepo: approvalRepo,
		CommentRepo:  commentRepo,
		Membership:   NewProjectMembership(memberRepo),
		Tasks:        s.tasks,
		Audit:        s.audit,
		Projects:     projects,
		Log:          log,
	}).(*reviewService)

	s.author = testutil.SeedUser(s.T(), s.db, "author")
	s.architect = testutil.SeedUser(s.T(), s.db, "architect")
	s.qa = testutil.SeedUser(s.T(), s.db, "qa")
	s.sme = testutil.SeedUser(s.T(), s.db, "sme")

	s.project = testutil.SeedProject(s.T(), s.db, s.author.ID)
	testutil.SeedMember(s.T(), s.db, s.project.ID, s.author.ID, models.ProjectRoleArchitect, false)
	testutil.SeedMember(s.T(), s.db, s.project.ID, s.architect.ID, models.ProjectRoleArchitect, false)
	testutil.SeedMember(s.T(), s.db, s.project.ID, s.qa.ID, models.ProjectRoleQA, false)
	testutil.SeedMember(s.T(), s.db, s.project.ID, s.sme.ID, models.ProjectRoleQA, true)
}

func (s *ServiceTestSuite) reload(versionID uint) *models.DocumentVersion {
	var v models.DocumentVersion
	s.Require().NoError(s.db.First(&v, versionID).Error)
	return &v
}


func (s *ServiceTestSuite) seedUser(name string) *models.User {
	return testutil.SeedUser(s.T(), s.db, name)
}

func (s *ServiceTestSuite) addMember(userID uint, role string, temporary bool) {
	testutil.SeedMember(s.T(), s.db, s.project.ID, userID, role, temporary)
}

func defaultAuditParams() models.AuditListParams {
	return models.AuditListParams{Page: 1, Limit: 20}
}
