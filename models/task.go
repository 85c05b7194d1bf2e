package models

import "time"

type TaskStatus string

const (
	TaskOpen       TaskStatus = "OPEN"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskClosed     TaskStatus = "CLOSED"
)

const TaskTypeApproval = "APPROVAL"

type Task struct {
	ID             uint       `json:"id" gorm:"primarykey"`
	ProjectID      uint       `json:"project_id" gorm:"not null;index"`
	VersionID      uint       `json:"version_id" gorm:"not null;index"`
	TaskType       string     `json:"task_type" gorm:"not null"`
	Title          string     `json:"title" gorm:"not null"`
	Description    string     `json:"description" gorm:"type:text"`
	RequiredRole   string     `json:"required_role"`
	AssignedUserID *uint      `json:"assigned_user_id" gorm:"index"`
	StepNo         int        `json:"step_no"`
	Priority       string     `json:"priority" gorm:"default:'MEDIUM'"`
	Status         TaskStatus `json:"status" gorm:"not null;default:'OPEN'"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
