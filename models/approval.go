package models

import "time"

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Approval is one policy step of one review round of a version. Rows are
// never deleted; rounds voided by a rejection stay as history.
type Approval struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	VersionID      uint           `json:"version_id" gorm:"not null;index:idx_approval_version_round"`
	ReviewRound    int            `json:"review_round" gorm:"not null;index:idx_approval_version_round"`
	StepNo         int            `json:"step_no" gorm:"not null"`
	Role           string         `json:"role" gorm:"not null"`
	IsFinal        bool           `json:"is_final" gorm:"not null;default:false"`
	IsOptional     bool           `json:"is_optional" gorm:"not null;default:false"`
	ApproverUserID *uint          `json:"approver_user_id"`
	Status         ApprovalStatus `json:"status" gorm:"not null;default:'PENDING'"`
	DecidedAt      *time.Time     `json:"decided_at"`
	Comment        string         `json:"comment" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ReviewComment struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	VersionID    uint      `json:"version_id" gorm:"not null;index"`
	AuthorID     uint      `json:"author_id" gorm:"not null"`
	ReviewerRole string    `json:"reviewer_role"`
	Text         string    `json:"text" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
}
