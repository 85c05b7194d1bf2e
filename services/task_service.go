package services

import (
	"context"
	"fmt"
	"time"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
	"doc-governance/notify"
	"doc-governance/repositories"
	"doc-governance/workflow"
)

const (
	priorityRequired = "HIGH"
	priorityOptional = "LOW"
)

// TaskSink receives review task commands once a transition has committed.
type TaskSink interface {
	CreateReviewTask(ctx context.Context, cmd workflow.CreateReviewTask) (*models.Task, error)
	CloseTasksFor(ctx context.Context, versionID uint) error
}

type TaskService interface {
	TaskSink
	GetProjectTasks(ctx context.Context, projectID uint, status models.TaskStatus, userID uint) ([]models.Task, error)
	GetMyTasks(ctx context.Context, userID uint) ([]models.Task, error)
}

type taskService struct {
	taskRepo   repositories.TaskRepository
	memberRepo repositories.ProjectMemberRepository
	projects   ProjectService
	publisher  notify.Publisher
	now        func() time.Time
	log        *logger.Logger
}

func NewTaskService(taskRepo repositories.TaskRepository, memberRepo repositories.ProjectMemberRepository, projects ProjectService, publisher notify.Publisher, baseLog *logger.Logger) TaskService {
	if publisher == nil {
		publisher = notify.NewNopPublisher()
	}
	return &taskService{
		taskRepo:   taskRepo,
		memberRepo: memberRepo,
		projects:   projects,
		publisher:  publisher,
		now:        func() time.Time { return time.Now().UTC() },
		log:        baseLog.With("service", "TaskService"),
	}
}

// CreateReviewTask opens an approval task for the step's role and assigns it
// to an eligible member when one exists.
func (s *taskService) CreateReviewTask(ctx context.Context, cmd workflow.CreateReviewTask) (*models.Task, error) {
	dbc := dbctx.New(ctx)
	assignee, err := s.memberRepo.FindAssignee(dbc, cmd.ProjectID, cmd.Role, cmd.AuthorID)
	if err != nil {
		return nil, err
	}

	priority := priorityRequired
	if cmd.IsOptional {
		priority = priorityOptional
	}
	task := &models.Task{
		ProjectID:    cmd.ProjectID,
		VersionID:    cmd.VersionID,
		TaskType:     models.TaskTypeApproval,
		Title:        cmd.Title,
		Description:  fmt.Sprintf("Review required from %s for step %d", cmd.Role, cmd.StepNo),
		RequiredRole: cmd.Role,
		StepNo:       cmd.StepNo,
		Priority:     priority,
		Status:       models.TaskOpen,
	}
	if assignee != nil {
		task.AssignedUserID = &assignee.UserID
	}
	if err := s.taskRepo.Create(dbc, task); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.TaskEvent{
		Event:        notify.EventTaskCreated,
		ProjectID:    task.ProjectID,
		VersionID:    task.VersionID,
		TaskID:       task.ID,
		StepNo:       task.StepNo,
		RequiredRole: task.RequiredRole,
		Title:        task.Title,
	})
	return task, nil
}

func (s *taskService) CloseTasksFor(ctx context.Context, versionID uint) error {
	closed, err := s.taskRepo.CloseOpenByVersion(dbctx.New(ctx), versionID, s.now())
	if err != nil {
		return err
	}
	if len(closed) > 0 {
		s.publish(ctx, notify.TaskEvent{Event: notify.EventTasksClosed, VersionID: versionID})
	}
	return nil
}

func (s *taskService) GetProjectTasks(ctx context.Context, projectID uint, status models.TaskStatus, userID uint) ([]models.Task, error) {
	if err := s.projects.EnsureAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.taskRepo.GetByProject(dbctx.New(ctx), projectID, status)
}

func (s *taskService) GetMyTasks(ctx context.Context, userID uint) ([]models.Task, error) {
	return s.taskRepo.GetOpenForUser(dbctx.New(ctx), userID)
}

// publish failures never fail the task write.
func (s *taskService) publish(ctx context.Context, evt notify.TaskEvent) {
	evt.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("task event not published", "event", evt.Event, "version_id", evt.VersionID, "error", err)
	}
}
