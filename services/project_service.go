package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
	"doc-governance/repositories"
)

type ProjectService interface {
	CreateProject(ctx context.Context, req models.CreateProjectRequest, userID uint) (*models.Project, error)
	GetProjects(ctx context.Context, userID uint) ([]models.Project, error)
	GetProject(ctx context.Context, id, userID uint) (*models.Project, error)
	AddMember(ctx context.Context, projectID uint, req models.AddMemberRequest, userID uint) (*models.ProjectMember, error)
	GetMembers(ctx context.Context, projectID, userID uint) ([]models.ProjectMember, error)
	RemoveMember(ctx context.Context, projectID, memberID, userID uint) error
	// EnsureAccess fails with ErrForbidden unless the user owns the project,
	// holds an active role in it, or is an organisation admin.
	EnsureAccess(ctx context.Context, projectID, userID uint) error
}

type projectService struct {
	db          *gorm.DB
	projectRepo repositories.ProjectRepository
	memberRepo  repositories.ProjectMemberRepository
	userRepo    repositories.UserRepository
	log         *logger.Logger
}

func NewProjectService(db *gorm.DB, projectRepo repositories.ProjectRepository, memberRepo repositories.ProjectMemberRepository, userRepo repositories.UserRepository, baseLog *logger.Logger) ProjectService {
	return &projectService{
		db:          db,
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
		userRepo:    userRepo,
		log:         baseLog.With("service", "ProjectService"),
	}
}

func (s *projectService) CreateProject(ctx context.Context, req models.CreateProjectRequest, userID uint) (*models.Project, error) {
	ownerRole := strings.TrimSpace(req.OwnerRole)
	if ownerRole == "" {
		ownerRole = models.ProjectRoleBusinessOwner
	}

	project := &models.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		OwnerID:     userID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.projectRepo.Create(dbc, project); err != nil {
			return err
		}
		return s.memberRepo.Add(dbc, &models.ProjectMember{
			ProjectID: project.ID,
			UserID:    userID,
			RoleCode:  ownerRole,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("project created", "project_id", project.ID, "owner_id", userID, "owner_role", ownerRole)
	return s.projectRepo.GetByID(dbctx.New(ctx), project.ID)
}

func (s *projectService) GetProjects(ctx context.Context, userID uint) ([]models.Project, error) {
	dbc := dbctx.New(ctx)
	admin, err := s.isOrgAdmin(dbc, userID)
	if err != nil {
		return nil, err
	}
	if admin {
		return s.projectRepo.ListAll(dbc)
	}
	return s.projectRepo.ListForUser(dbc, userID)
}

func (s *projectService) GetProject(ctx context.Context, id, userID uint) (*models.Project, error) {
	if err := s.EnsureAccess(ctx, id, userID); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return project, nil
}

func (s *projectService) AddMember(ctx context.Context, projectID uint, req models.AddMemberRequest, userID uint) (*models.ProjectMember, error) {
	dbc := dbctx.New(ctx)
	if err := s.ensureManager(dbc, projectID, userID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(dbc, req.UserID); err != nil {
		return nil, notFound(err, fmt.Errorf("%w: user %d", ErrNotFound, req.UserID))
	}

	member := &models.ProjectMember{
		ProjectID:   projectID,
		UserID:      req.UserID,
		RoleCode:    strings.TrimSpace(req.RoleCode),
		IsTemporary: req.IsTemporary,
	}
	if err := s.memberRepo.Add(dbc, member); err != nil {
		return nil, err
	}
	s.log.Info("member added", "project_id", projectID, "user_id", req.UserID, "role", member.RoleCode, "temporary", member.IsTemporary)
	return member, nil
}

func (s *projectService) GetMembers(ctx context.Context, projectID, userID uint) ([]models.ProjectMember, error) {
	if err := s.EnsureAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.memberRepo.ListByProject(dbctx.New(ctx), projectID)
}

func (s *projectService) RemoveMember(ctx context.Context, projectID, memberID, userID uint) error {
	dbc := dbctx.New(ctx)
	if err := s.ensureManager(dbc, projectID, userID); err != nil {
		return err
	}
	n, err := s.memberRepo.Deactivate(dbc, projectID, memberID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.log.Info("member deactivated", "project_id", projectID, "member_id", memberID)
	return nil
}

func (s *projectService) EnsureAccess(ctx context.Context, projectID, userID uint) error {
	dbc := dbctx.New(ctx)
	project, err := s.projectRepo.GetByID(dbc, projectID)
	if err != nil {
		return notFound(err, ErrNotFound)
	}
	if project.OwnerID == userID {
		return nil
	}
	admin, err := s.isOrgAdmin(dbc, userID)
	if err != nil || admin {
		return err
	}
	active, err := s.memberRepo.ListActiveForUser(dbc, projectID, userID)
	if err != nil {
		return err
	}
	if len(active) == 0 {
		return ErrForbidden
	}
	return nil
}

// ensureManager allows the project owner and organisation admins.
func (s *projectService) ensureManager(dbc dbctx.Context, projectID, userID uint) error {
	project, err := s.projectRepo.GetByID(dbc, projectID)
	if err != nil {
		return notFound(err, ErrNotFound)
	}
	if project.OwnerID == userID {
		return nil
	}
	admin, err := s.isOrgAdmin(dbc, userID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrForbidden
	}
	return nil
}

func (s *projectService) isOrgAdmin(dbc dbctx.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(dbc, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Role == models.RoleOrgAdmin, nil
}
