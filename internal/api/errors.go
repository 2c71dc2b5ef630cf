package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dcfassist/internal/llm"
)

// llmError 将模型服务错误映射为 HTTP 状态码
func (h *Handler) llmError(c *gin.Context, prefix string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, llm.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, llm.ErrUnauthorized), errors.Is(err, llm.ErrUnavailable):
		status = http.StatusBadGateway
	}
	h.logger.Error(prefix, "status", status, "error", err)
	c.JSON(status, gin.H{"error": prefix + ": " + err.Error()})
}
