package crm

import (
	"github.com/hermes/backend/internal/domain/shared"
)

// Pipeline mirrors a Pipedrive pipeline.
type Pipeline struct {
	shared.BaseEntity
	PDPipelineID int64 `gorm:"uniqueIndex;not null"`

	Name            string `gorm:"type:varchar(255);not null"`
	DftEntryStageID *int64 `gorm:"index"`
	DftEntryStage   *Stage `gorm:"foreignKey:DftEntryStageID"`
}

// TableName returns the table name for GORM
func (Pipeline) TableName() string {
	return "pipelines"
}

// Stage mirrors a Pipedrive pipeline stage.
type Stage struct {
	shared.BaseEntity
	PDStageID int64 `gorm:"uniqueIndex;not null"`

	Name string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (Stage) TableName() string {
	return "stages"
}
