package crm

import (
	"context"
)

// PipelineRepository defines the interface for pipeline persistence
type PipelineRepository interface {
	// FindByID finds a pipeline by its local ID
	FindByID(ctx context.Context, id int64) (*Pipeline, error)

	// FindByPDPipelineID finds a pipeline by its Pipedrive pipeline ID
	FindByPDPipelineID(ctx context.Context, pdPipelineID int64) (*Pipeline, error)

	// Save creates or updates a pipeline
	Save(ctx context.Context, pipeline *Pipeline) error

	// Delete deletes a pipeline
	Delete(ctx context.Context, id int64) error
}

// StageRepository defines the interface for stage persistence
type StageRepository interface {
	// FindByID finds a stage by its local ID
	FindByID(ctx context.Context, id int64) (*Stage, error)

	// FindByPDStageID finds a stage by its Pipedrive stage ID
	FindByPDStageID(ctx context.Context, pdStageID int64) (*Stage, error)

	// Save creates or updates a stage
	Save(ctx context.Context, stage *Stage) error

	// Delete deletes a stage
	Delete(ctx context.Context, id int64) error
}
