package models

import (
	"time"

	"gorm.io/datatypes"
)

// Template is a pre-approved, parameterized structured message.
// Owned by admin/configuration data; read-only to the orchestrator.
type Template struct {
	ID             string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name           string         `gorm:"column:name;type:text;index" json:"name"`
	Language       string         `gorm:"column:language;type:text;index" json:"language"`
	Category       string         `gorm:"column:category;type:text;index" json:"category"` // matches Intent values
	Body           string         `gorm:"column:body;type:text" json:"body"`
	ParameterNames datatypes.JSON `gorm:"column:parameter_names;type:jsonb" json:"parameter_names"` // ordered []string
	IsActive       bool           `gorm:"column:is_active;index" json:"is_active"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Template) TableName() string { return "message_templates" }
