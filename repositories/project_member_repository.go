package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
)

type ProjectMemberRepository interface {
	// Add inserts the membership or reactivates a deactivated one.
	Add(dbc dbctx.Context, member *models.ProjectMember) error
	GetByID(dbc dbctx.Context, projectID, memberID uint) (*models.ProjectMember, error)
	ListByProject(dbc dbctx.Context, projectID uint) ([]models.ProjectMember, error)
	ListActiveForUser(dbc dbctx.Context, projectID, userID uint) ([]models.ProjectMember, error)
	FindAssignee(dbc dbctx.Context, projectID uint, roleCode string, excludeUserID uint) (*models.ProjectMember, error)
	Deactivate(dbc dbctx.Context, projectID, memberID uint) (int64, error)
}

type projectMemberRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectMemberRepository(db *gorm.DB, baseLog *logger.Logger) ProjectMemberRepository {
	return &projectMemberRepository{db: db, log: baseLog.With("repo", "ProjectMemberRepository")}
}

func (r *projectMemberRepository) Add(dbc dbctx.Context, member *models.ProjectMember) error {
	member.Active = true
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}, {Name: "role_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_temporary", "active", "updated_at"}),
		}).
		Create(member).Error
}

func (r *projectMemberRepository) GetByID(dbc dbctx.Context, projectID, memberID uint) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := dbc.DB(r.db).
		Where("project_id = ? AND id = ?", projectID, memberID).
		Preload("User").
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *projectMemberRepository) ListByProject(dbc dbctx.Context, projectID uint) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := dbc.DB(r.db).
		Where("project_id = ?", projectID).
		Preload("User").
		Order("id asc").
		Find(&members).Error
	return members, err
}

func (r *projectMemberRepository) ListActiveForUser(dbc dbctx.Context, projectID, userID uint) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := dbc.DB(r.db).
		Where("project_id = ? AND user_id = ? AND active = ?", projectID, userID, true).
		Find(&members).Error
	return members, err
}

// FindAssignee picks the longest-standing active permanent member holding
// roleCode, other than excludeUserID. It returns nil without error when
// nobody qualifies.
func (r *projectMemberRepository) FindAssignee(dbc dbctx.Context, projectID uint, roleCode string, excludeUserID uint) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := dbc.DB(r.db).
		Where("project_id = ? AND role_code = ? AND active = ? AND is_temporary = ?", projectID, roleCode, true, false).
		Where("user_id <> ?", excludeUserID).
		Order("id asc").
		First(&member).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *projectMemberRepository) Deactivate(dbc dbctx.Context, projectID, memberID uint) (int64, error) {
	res := dbc.DB(r.db).Model(&models.ProjectMember{}).
		Where("project_id = ? AND id = ? AND active = ?", projectID, memberID, true).
		Update("active", false)
	return res.RowsAffected, res.Error
}
