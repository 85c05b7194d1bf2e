package repositories

import (
	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
)

type ProjectRepository interface {
	Create(dbc dbctx.Context, project *models.Project) error
	GetByID(dbc dbctx.Context, id uint) (*models.Project, error)
	ListForUser(dbc dbctx.Context, userID uint) ([]models.Project, error)
	ListAll(dbc dbctx.Context) ([]models.Project, error)
}

type projectRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepository(db *gorm.DB, baseLog *logger.Logger) ProjectRepository {
	return &projectRepository{db: db, log: baseLog.With("repo", "ProjectRepository")}
}

func (r *projectRepository) Create(dbc dbctx.Context, project *models.Project) error {
	return dbc.DB(r.db).Create(project).Error
}

func (r *projectRepository) GetByID(dbc dbctx.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := dbc.DB(r.db).
		Preload("Members", "active = ?", true).
		Preload("Members.User").
		First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser returns the projects the user owns or holds an active role in.
func (r *projectRepository) ListForUser(dbc dbctx.Context, userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := dbc.DB(r.db).
		Where("owner_id = ? OR id IN (?)", userID,
			dbc.DB(r.db).Model(&models.ProjectMember{}).
				Select("project_id").
				Where("user_id = ? AND active = ?", userID, true)).
		Order("created_at desc").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) ListAll(dbc dbctx.Context) ([]models.Project, error) {
	var projects []models.Project
	err := dbc.DB(r.db).Order("created_at desc").Find(&projects).Error
	return projects, err
}
