package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/domain/shared"
	"github.com/hermes/backend/internal/infrastructure/pipedrive"
	"go.uber.org/zap"
)

// SchemaHandler manages custom field definitions and the compiled contract
// set built from them. Every mutation rebuilds the registry so the next
// webhook validates against the new shape.
type SchemaHandler struct {
	BaseHandler
	customFields crm.CustomFieldRepository
	registry     *schema.Registry
	fields       *pipedrive.FieldService
	logger       *zap.Logger
}

// NewSchemaHandler creates a SchemaHandler.
func NewSchemaHandler(
	customFields crm.CustomFieldRepository,
	registry *schema.Registry,
	fields *pipedrive.FieldService,
	logger *zap.Logger,
) *SchemaHandler {
	return &SchemaHandler{
		customFields: customFields,
		registry:     registry,
		fields:       fields,
		logger:       logger,
	}
}

// RegisterRoutes registers the schema administration endpoints.
func (h *SchemaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/schema/custom-fields", h.ListCustomFields)
	rg.POST("/schema/custom-fields", h.CreateCustomField)
	rg.DELETE("/schema/custom-fields/:id", h.DeleteCustomField)
	rg.POST("/schema/rebuild", h.Rebuild)
	rg.GET("/schema/pipedrive-fields/:kind", h.ListPipedriveFields)
}

// CustomFieldRequest is the creation body for a custom field definition.
type CustomFieldRequest struct {
	Name             string `json:"name" binding:"required"`
	MachineName      string `json:"machine_name" binding:"required"`
	LinkedObjectType string `json:"linked_object_type" binding:"required,oneof=company contact deal meeting"`
	FieldType        string `json:"field_type" binding:"required,oneof=str int bool date fk"`
	HermesFieldName  string `json:"hermes_field_name"`
	TC2MachineName   string `json:"tc2_machine_name"`
	PDFieldID        string `json:"pd_field_id"`
	FKObjectType     string `json:"fk_object_type"`
	FKLookupField    string `json:"fk_lookup_field"`
	NullIfInvalid    bool   `json:"null_if_invalid"`
}

// ListCustomFields returns every definition, optionally filtered by object
// type.
func (h *SchemaHandler) ListCustomFields(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		fields []crm.CustomField
		err    error
	)
	if kind := c.Query("object_type"); kind != "" {
		fields, err = h.customFields.FindByObjectType(ctx, crm.ObjectKind(kind))
	} else {
		fields, err = h.customFields.FindAll(ctx)
	}
	if err != nil {
		h.InternalError(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"custom_fields": fields})
}

// CreateCustomField stores a new definition and rebuilds the contracts.
func (h *SchemaHandler) CreateCustomField(c *gin.Context) {
	var req CustomFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.FieldType == string(crm.FieldTypeFK) && (req.FKObjectType == "" || req.FKLookupField == "") {
		h.BadRequest(c, "fk fields require fk_object_type and fk_lookup_field")
		return
	}
	if req.TC2MachineName == "" && req.PDFieldID == "" {
		h.BadRequest(c, "at least one of tc2_machine_name and pd_field_id is required")
		return
	}

	field := &crm.CustomField{
		Name:             req.Name,
		MachineName:      req.MachineName,
		LinkedObjectType: crm.ObjectKind(req.LinkedObjectType),
		FieldType:        crm.FieldType(req.FieldType),
		HermesFieldName:  req.HermesFieldName,
		TC2MachineName:   req.TC2MachineName,
		PDFieldID:        req.PDFieldID,
		FKObjectType:     crm.ObjectKind(req.FKObjectType),
		FKLookupField:    req.FKLookupField,
		NullIfInvalid:    req.NullIfInvalid,
	}

	ctx := c.Request.Context()
	if err := h.customFields.Save(ctx, field); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "custom field already exists for this object type"})
			return
		}
		h.InternalError(c, err.Error())
		return
	}
	if err := h.registry.Build(ctx); err != nil {
		h.InternalError(c, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"custom_field": field})
}

// DeleteCustomField removes a definition, cascading its stored values, and
// rebuilds the contracts.
func (h *SchemaHandler) DeleteCustomField(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "invalid custom field id")
		return
	}
	ctx := c.Request.Context()
	if err := h.customFields.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "custom field not found"})
			return
		}
		h.InternalError(c, err.Error())
		return
	}
	if err := h.registry.Build(ctx); err != nil {
		h.InternalError(c, err.Error())
		return
	}
	h.OK(c)
}

// Rebuild recompiles the contract set from the stored definitions.
func (h *SchemaHandler) Rebuild(c *gin.Context) {
	if err := h.registry.Build(c.Request.Context()); err != nil {
		h.InternalError(c, err.Error())
		return
	}
	h.OK(c)
}

// ListPipedriveFields returns Pipedrive's field metadata for one object
// kind, so administrators can look up the pd_field_id for a definition.
func (h *SchemaHandler) ListPipedriveFields(c *gin.Context) {
	kind := crm.ObjectKind(c.Param("kind"))
	ctx := c.Request.Context()
	if c.Query("refresh") == "true" {
		if err := h.fields.InvalidateFields(ctx, kind); err != nil {
			h.logger.Warn("field cache invalidation failed", zap.Error(err))
		}
	}
	fields, err := h.fields.ListFields(ctx, kind)
	if err != nil {
		h.InternalError(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}
