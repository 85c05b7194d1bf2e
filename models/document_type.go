package models

import (
	"time"

	"gorm.io/datatypes"
)

type ComplianceStandard string

const (
	ComplianceHIPAA    ComplianceStandard = "HIPAA"
	ComplianceGxP      ComplianceStandard = "GxP"
	ComplianceGIS      ComplianceStandard = "GIS"
	ComplianceSOC2     ComplianceStandard = "SOC2"
	ComplianceISO27001 ComplianceStandard = "ISO27001"
)

// DocumentType is a row of the document-type registry. Code is the key the
// approval policy registry is looked up by.
type DocumentType struct {
	ID          uint                                   `json:"id" gorm:"primarykey"`
	Code        string                                 `json:"code" gorm:"uniqueIndex;not null"`
	Name        string                                 `json:"name" gorm:"not null"`
	Description string                                 `json:"description" gorm:"type:text"`
	Compliance  datatypes.JSONSlice[ComplianceStandard] `json:"compliance"`
	CreatedAt   time.Time                              `json:"created_at"`
	UpdatedAt   time.Time                              `json:"updated_at"`
}
