package persistence

import (
	"context"

	"github.com/hermes/backend/internal/domain/crm"
	"gorm.io/gorm"
)

// GormPipelineRepository implements PipelineRepository using GORM
type GormPipelineRepository struct {
	db *gorm.DB
}

// NewGormPipelineRepository creates a new GormPipelineRepository
func NewGormPipelineRepository(db *gorm.DB) *GormPipelineRepository {
	return &GormPipelineRepository{db: db}
}

// FindByID finds a pipeline by its local ID
func (r *GormPipelineRepository) FindByID(ctx context.Context, id int64) (*crm.Pipeline, error) {
	var pipeline crm.Pipeline
	if err := r.db.WithContext(ctx).First(&pipeline, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &pipeline, nil
}

// FindByPDPipelineID finds a pipeline by its Pipedrive pipeline ID
func (r *GormPipelineRepository) FindByPDPipelineID(ctx context.Context, pdPipelineID int64) (*crm.Pipeline, error) {
	var pipeline crm.Pipeline
	if err := r.db.WithContext(ctx).First(&pipeline, "pd_pipeline_id = ?", pdPipelineID).Error; err != nil {
		return nil, translateError(err)
	}
	return &pipeline, nil
}

// Save creates or updates a pipeline
func (r *GormPipelineRepository) Save(ctx context.Context, pipeline *crm.Pipeline) error {
	return translateError(r.db.WithContext(ctx).Save(pipeline).Error)
}

// Delete deletes a pipeline
func (r *GormPipelineRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&crm.Pipeline{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// GormStageRepository implements StageRepository using GORM
type GormStageRepository struct {
	db *gorm.DB
}

// NewGormStageRepository creates a new GormStageRepository
func NewGormStageRepository(db *gorm.DB) *GormStageRepository {
	return &GormStageRepository{db: db}
}

// FindByID finds a stage by its local ID
func (r *GormStageRepository) FindByID(ctx context.Context, id int64) (*crm.Stage, error) {
	var stage crm.Stage
	if err := r.db.WithContext(ctx).First(&stage, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &stage, nil
}

// FindByPDStageID finds a stage by its Pipedrive stage ID
func (r *GormStageRepository) FindByPDStageID(ctx context.Context, pdStageID int64) (*crm.Stage, error) {
	var stage crm.Stage
	if err := r.db.WithContext(ctx).First(&stage, "pd_stage_id = ?", pdStageID).Error; err != nil {
		return nil, translateError(err)
	}
	return &stage, nil
}

// Save creates or updates a stage
func (r *GormStageRepository) Save(ctx context.Context, stage *crm.Stage) error {
	return translateError(r.db.WithContext(ctx).Save(stage).Error)
}

// Delete deletes a stage
func (r *GormStageRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&crm.Stage{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}
