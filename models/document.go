package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentState string

const (
	StateDraft    DocumentState = "DRAFT"
	StateInReview DocumentState = "IN_REVIEW"
	StateApproved DocumentState = "APPROVED"
	StateReleased DocumentState = "RELEASED"
	StateArchived DocumentState = "ARCHIVED"
)

type Document struct {
	ID               uint              `json:"id" gorm:"primarykey"`
	ProjectID        uint              `json:"project_id" gorm:"not null;index"`
	DocType          string            `json:"doc_type" gorm:"not null;index"`
	Title            string            `json:"title" gorm:"not null"`
	CreatedBy        uint              `json:"created_by" gorm:"not null"`
	CurrentVersionID *uint             `json:"current_version_id"`
	CurrentVersion   *DocumentVersion  `json:"current_version,omitempty" gorm:"foreignKey:CurrentVersionID"`
	Versions         []DocumentVersion `json:"versions,omitempty" gorm:"foreignKey:DocumentID"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	DeletedAt        gorm.DeletedAt    `json:"-" gorm:"index"`
}

// DocumentVersion is immutable once LockedAt is set.
type DocumentVersion struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	DocumentID    uint           `json:"document_id" gorm:"not null;uniqueIndex:idx_document_version_string"`
	VersionString string         `json:"version_string" gorm:"not null;uniqueIndex:idx_document_version_string"`
	AuthorID      uint           `json:"author_id" gorm:"not null"`
	State         DocumentState  `json:"state" gorm:"not null;default:'DRAFT';index"`
	ReviewRound   int            `json:"review_round" gorm:"not null;default:0"`
	ContentJSON   datatypes.JSON `json:"content_json"`
	FileObjectKey *string        `json:"file_object_key"`
	FileHash      *string        `json:"file_hash"`
	Approvals     []Approval     `json:"approvals,omitempty" gorm:"foreignKey:VersionID"`
	SubmittedAt   *time.Time     `json:"submitted_at"`
	LockedAt      *time.Time     `json:"locked_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (v *DocumentVersion) IsLocked() bool {
	return v.LockedAt != nil
}
