package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLog struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID  uint           `json:"project_id" gorm:"index"`
	ActorID    uint           `json:"actor_id" gorm:"index"`
	Action     string         `json:"action" gorm:"not null;index"`
	EntityType string         `json:"entity_type" gorm:"not null"`
	EntityID   uint           `json:"entity_id"`
	BeforeJSON datatypes.JSON `json:"before_json"`
	AfterJSON  datatypes.JSON `json:"after_json"`
	IP         string         `json:"ip"`
	UserAgent  string         `json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
}
