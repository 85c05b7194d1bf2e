package repositories

import (
	"time"

	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
)

var openTaskStatuses = []models.TaskStatus{models.TaskOpen, models.TaskInProgress}

type TaskRepository interface {
	Create(dbc dbctx.Context, task *models.Task) error
	// CloseOpenByVersion closes every open task of the version and returns
	// the ids it closed.
	CloseOpenByVersion(dbc dbctx.Context, versionID uint, at time.Time) ([]uint, error)
	GetByProject(dbc dbctx.Context, projectID uint, status models.TaskStatus) ([]models.Task, error)
	// GetOpenForUser returns open tasks assigned to the user or waiting on a
	// role the user actively holds in the task's project.
	GetOpenForUser(dbc dbctx.Context, userID uint) ([]models.Task, error)
}

type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepository(db *gorm.DB, baseLog *logger.Logger) TaskRepository {
	return &taskRepository{db: db, log: baseLog.With("repo", "TaskRepository")}
}

func (r *taskRepository) Create(dbc dbctx.Context, task *models.Task) error {
	return dbc.DB(r.db).Create(task).Error
}

func (r *taskRepository) CloseOpenByVersion(dbc dbctx.Context, versionID uint, at time.Time) ([]uint, error) {
	var ids []uint
	db := dbc.DB(r.db)
	if err := db.Model(&models.Task{}).
		Where("version_id = ? AND status IN ?", versionID, openTaskStatuses).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	err := db.Model(&models.Task{}).
		Where("id IN ? AND status IN ?", ids, openTaskStatuses).
		Updates(map[string]interface{}{
			"status":       models.TaskClosed,
			"completed_at": at,
		}).Error
	return ids, err
}

func (r *taskRepository) GetByProject(dbc dbctx.Context, projectID uint, status models.TaskStatus) ([]models.Task, error) {
	var tasks []models.Task
	query := dbc.DB(r.db).Where("project_id = ?", projectID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at desc, step_no asc").Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) GetOpenForUser(dbc dbctx.Context, userID uint) ([]models.Task, error) {
	var tasks []models.Task
	db := dbc.DB(r.db)
	roleMatch := db.Model(&models.ProjectMember{}).
		Select("1").
		Where("project_members.project_id = tasks.project_id").
		Where("project_members.role_code = tasks.required_role").
		Where("project_members.user_id = ? AND project_members.active = ?", userID, true)
	err := db.
		Where("tasks.status IN ?", openTaskStatuses).
		Where(db.Where("tasks.assigned_user_id = ?", userID).Or("EXISTS (?)", roleMatch)).
		Order("tasks.created_at desc, tasks.step_no asc").
		Find(&tasks).Error
	return tasks, err
}
