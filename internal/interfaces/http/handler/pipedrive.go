package handler

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/hermes/backend/internal/application/push"
	"github.com/hermes/backend/internal/application/sync"
	"go.uber.org/zap"
)

// PipedriveHandler receives Pipedrive webhooks and drives them through the
// normalizer and reconciler. The response is sent before any outbound push
// work runs.
type PipedriveHandler struct {
	BaseHandler
	normalizer   *sync.Normalizer
	reconciler   *sync.Reconciler
	dispatcher   *push.Dispatcher
	webhookToken string
	logger       *zap.Logger
}

// NewPipedriveHandler creates a PipedriveHandler.
func NewPipedriveHandler(
	normalizer *sync.Normalizer,
	reconciler *sync.Reconciler,
	dispatcher *push.Dispatcher,
	webhookToken string,
	logger *zap.Logger,
) *PipedriveHandler {
	return &PipedriveHandler{
		normalizer:   normalizer,
		reconciler:   reconciler,
		dispatcher:   dispatcher,
		webhookToken: webhookToken,
		logger:       logger,
	}
}

// RegisterRoutes registers the Pipedrive webhook endpoint.
func (h *PipedriveHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/pipedrive/callback", h.Callback)
}

// Callback handles one Pipedrive webhook event.
func (h *PipedriveHandler) Callback(c *gin.Context) {
	if h.webhookToken != "" {
		token := c.Query("token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookToken)) != 1 {
			h.Unauthorized(c)
			return
		}
	}

	var event sync.PipedriveEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		h.BadRequest(c, "invalid webhook body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	pair, err := h.normalizer.PipedrivePair(ctx, &event)
	if err != nil {
		h.Fail(c, err)
		return
	}
	if pair == nil {
		// Object kind the engine does not act on.
		h.OK(c)
		return
	}

	result, err := h.reconciler.Process(ctx, pair)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.logger.Info("pipedrive event processed",
		zap.String("request_id", getRequestID(c)),
		zap.String("object", event.Meta.Object),
		zap.String("action", string(result.Action)),
		zap.Int64("entity_id", result.EntityID),
		zap.Int("pushes", len(result.Pushes)),
	)

	h.dispatcher.Enqueue(result.Pushes)
	h.OK(c)
}
