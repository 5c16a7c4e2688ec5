package handler

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hermes/backend/internal/application/push"
	"github.com/hermes/backend/internal/application/sync"
	"go.uber.org/zap"
)

// TC2Handler receives TC2 webhooks. One request carries a batch of events;
// each is processed independently so a failing event does not block the rest
// of the batch, and the whole batch is acknowledged once every event has
// been attempted.
type TC2Handler struct {
	BaseHandler
	processor    *sync.TC2Processor
	dispatcher   *push.Dispatcher
	webhookToken string
	logger       *zap.Logger
}

// NewTC2Handler creates a TC2Handler.
func NewTC2Handler(
	processor *sync.TC2Processor,
	dispatcher *push.Dispatcher,
	webhookToken string,
	logger *zap.Logger,
) *TC2Handler {
	return &TC2Handler{
		processor:    processor,
		dispatcher:   dispatcher,
		webhookToken: webhookToken,
		logger:       logger,
	}
}

// RegisterRoutes registers the TC2 webhook endpoint.
func (h *TC2Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tc2/callback", h.Callback)
}

func (h *TC2Handler) authorized(c *gin.Context) bool {
	if h.webhookToken == "" {
		return true
	}
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "token ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookToken)) == 1
}

// Callback handles one TC2 webhook batch.
func (h *TC2Handler) Callback(c *gin.Context) {
	if !h.authorized(c) {
		h.Unauthorized(c)
		return
	}

	var webhook sync.TC2Webhook
	if err := c.ShouldBindJSON(&webhook); err != nil {
		h.BadRequest(c, "invalid webhook body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	var firstErr error
	var pushes []sync.PushRequest
	for i := range webhook.Events {
		event := &webhook.Events[i]
		result, err := h.processor.ProcessEvent(ctx, event)
		if err != nil {
			h.logger.Error("tc2 event failed",
				zap.String("request_id", getRequestID(c)),
				zap.String("model", event.SubjectModel()),
				zap.String("action", event.Action),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if result == nil {
			continue
		}
		h.logger.Info("tc2 event processed",
			zap.String("request_id", getRequestID(c)),
			zap.String("model", event.SubjectModel()),
			zap.String("action", string(result.Action)),
			zap.Int64("entity_id", result.EntityID),
		)
		pushes = append(pushes, result.Pushes...)
	}

	h.dispatcher.Enqueue(pushes)

	if firstErr != nil {
		h.Fail(c, firstErr)
		return
	}
	h.OK(c)
}
