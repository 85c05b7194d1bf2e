package models

import (
	"time"

	"gorm.io/gorm"
)

// Project role codes. Custom roles from a RACI matrix are plain strings and
// need no constant here.
const (
	ProjectRoleBusinessOwner  = "Business Owner"
	ProjectRoleArchitect      = "Architect"
	ProjectRoleQA             = "QA Officer"
	ProjectRoleReleaseManager = "Release Manager"
	ProjectRoleSME            = "SME"
	ProjectRoleAuditor        = "Auditor"
)

type Project struct {
	ID          uint            `json:"id" gorm:"primarykey"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description" gorm:"type:text"`
	OwnerID     uint            `json:"owner_id" gorm:"not null"`
	Members     []ProjectMember `json:"members,omitempty" gorm:"foreignKey:ProjectID"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// ProjectMember holds one role of one user in one project. A user with two
// roles has two rows.
type ProjectMember struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	ProjectID   uint      `json:"project_id" gorm:"not null;uniqueIndex:idx_member_project_user_role"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_member_project_user_role"`
	User        *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	RoleCode    string    `json:"role_code" gorm:"not null;uniqueIndex:idx_member_project_user_role"`
	IsTemporary bool      `json:"is_temporary" gorm:"not null;default:false"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
