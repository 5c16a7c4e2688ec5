package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hermes/backend/internal/application/schema"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	if id := c.GetHeader(RequestIDKey); id != "" {
		return id
	}
	return ""
}

// RequestID assigns every request an ID, honoring one supplied by the
// caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDKey, id)
		c.Next()
	}
}

// OK acknowledges a webhook. External systems retry anything non-2xx, so
// every fully handled event ends here, including ones the engine ignores.
func (h *BaseHandler) OK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// BadRequest rejects a request whose body could not be parsed at all.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "request_id": getRequestID(c)})
}

// Unauthorized rejects a request carrying a bad webhook token.
func (h *BaseHandler) Unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
}

// InternalError reports a processing failure so the sender retries.
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": message, "request_id": getRequestID(c)})
}

// Fail renders err: contract validation failures become the 422 detail body,
// everything else a 500.
func (h *BaseHandler) Fail(c *gin.Context, err error) {
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, ve)
		return
	}
	h.InternalError(c, err.Error())
}
