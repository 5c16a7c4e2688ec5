package pipedrive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// FieldMeta is one Pipedrive field definition as the API reports it. The key
// is what custom field definitions store as pd_field_id.
type FieldMeta struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	FieldType string `json:"field_type"`
	EditFlag  bool   `json:"edit_flag"`
}

// fieldEndpoints maps an object kind to its field metadata endpoint.
var fieldEndpoints = map[crm.ObjectKind]string{
	crm.ObjectKindCompany: "/organizationFields",
	crm.ObjectKindContact: "/personFields",
	crm.ObjectKindDeal:    "/dealFields",
}

// FieldService lists Pipedrive field metadata, caching each listing in redis
// so repeated admin lookups do not eat into the API rate limit.
type FieldService struct {
	client *Client
	cache  *cache.FieldCache
	logger *zap.Logger
}

// NewFieldService creates a FieldService. A nil cache disables caching.
func NewFieldService(client *Client, fieldCache *cache.FieldCache, logger *zap.Logger) *FieldService {
	return &FieldService{client: client, cache: fieldCache, logger: logger}
}

// ListFields returns the Pipedrive field definitions for one object kind.
func (s *FieldService) ListFields(ctx context.Context, kind crm.ObjectKind) ([]FieldMeta, error) {
	path, ok := fieldEndpoints[kind]
	if !ok {
		return nil, fmt.Errorf("no pipedrive field endpoint for object kind %q", kind)
	}

	cacheKey := "pipedrive:fields:" + string(kind)
	if s.cache != nil {
		raw, hit, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("field cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if hit {
			var fields []FieldMeta
			if err := json.Unmarshal(raw, &fields); err == nil {
				return fields, nil
			}
			s.logger.Warn("field cache entry corrupt, refetching", zap.String("key", cacheKey))
		}
	}

	var fields []FieldMeta
	if err := s.client.do(ctx, http.MethodGet, path, nil, nil, &fields); err != nil {
		return nil, err
	}

	if s.cache != nil {
		raw, err := json.Marshal(fields)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw); err != nil {
				s.logger.Warn("field cache write failed", zap.String("key", cacheKey), zap.Error(err))
			}
		}
	}
	return fields, nil
}

// InvalidateFields drops the cached listing for one object kind.
func (s *FieldService) InvalidateFields(ctx context.Context, kind crm.ObjectKind) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, "pipedrive:fields:"+string(kind))
}
