package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Sessions  *int   `json:"sessions,omitempty"`
}

// Health 健康检查
// GET /health
func (h *Handler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if n, err := h.sessions.Count(c.Request.Context()); err == nil {
		resp.Sessions = &n
	}
	c.JSON(http.StatusOK, resp)
}
