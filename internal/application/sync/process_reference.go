package sync

import (
	"context"

	"github.com/hermes/backend/internal/domain/crm"
)

// Pipelines and stages are reference data mirrored one way from Pipedrive.
// They carry no custom fields and are never pushed anywhere.

func (r *Reconciler) processPipeline(ctx context.Context, pair *SnapshotPair) (*Result, error) {
	res := &Result{Kind: crm.ObjectKindPipeline, Action: ActionNoop}

	if pair.Current == nil {
		id := pair.Previous.Object.Int("id")
		if id == nil {
			return res, nil
		}
		pipeline, err := r.pipelines.FindByPDPipelineID(ctx, *id)
		if err != nil {
			if isNotFound(err) {
				return res, nil
			}
			return nil, err
		}
		if err := r.pipelines.Delete(ctx, pipeline.ID); err != nil && !isNotFound(err) {
			return nil, err
		}
		res.Action = ActionDeleted
		res.EntityID = pipeline.ID
		return res, nil
	}

	obj := pair.Current.Object
	id := obj.Int("id")
	pipeline, err := r.pipelines.FindByPDPipelineID(ctx, *id)
	created := false
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		pipeline = &crm.Pipeline{PDPipelineID: *id}
		created = true
	}

	dirty := false
	if name := obj.Str("name"); pipeline.Name != name {
		pipeline.Name = name
		dirty = true
	}
	if created || dirty {
		if err := r.pipelines.Save(ctx, pipeline); err != nil {
			return nil, err
		}
	}

	res.EntityID = pipeline.ID
	switch {
	case created:
		res.Action = ActionCreated
	case dirty:
		res.Action = ActionUpdated
	}
	return res, nil
}

func (r *Reconciler) processStage(ctx context.Context, pair *SnapshotPair) (*Result, error) {
	res := &Result{Kind: crm.ObjectKindStage, Action: ActionNoop}

	if pair.Current == nil {
		id := pair.Previous.Object.Int("id")
		if id == nil {
			return res, nil
		}
		stage, err := r.stages.FindByPDStageID(ctx, *id)
		if err != nil {
			if isNotFound(err) {
				return res, nil
			}
			return nil, err
		}
		if err := r.stages.Delete(ctx, stage.ID); err != nil && !isNotFound(err) {
			return nil, err
		}
		res.Action = ActionDeleted
		res.EntityID = stage.ID
		return res, nil
	}

	obj := pair.Current.Object
	id := obj.Int("id")
	stage, err := r.stages.FindByPDStageID(ctx, *id)
	created := false
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		stage = &crm.Stage{PDStageID: *id}
		created = true
	}

	dirty := false
	if name := obj.Str("name"); stage.Name != name {
		stage.Name = name
		dirty = true
	}
	if created || dirty {
		if err := r.stages.Save(ctx, stage); err != nil {
			return nil, err
		}
	}

	res.EntityID = stage.ID
	switch {
	case created:
		res.Action = ActionCreated
	case dirty:
		res.Action = ActionUpdated
	}
	return res, nil
}
