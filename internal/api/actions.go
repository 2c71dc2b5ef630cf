package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidateActionsRequest 动作校验请求
type ValidateActionsRequest struct {
	Actions json.RawMessage `json:"actions"`
}

// ValidateActions 校验一批动作
// POST /api/actions/validate
func (h *Handler) ValidateActions(c *gin.Context) {
	var req ValidateActionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(req.Actions) == 0 || string(req.Actions) == "null" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actions must be an array"})
		return
	}

	outcome, err := h.validator.ValidateJSON(req.Actions)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actions must be an array"})
		return
	}

	h.logger.Info("actions validated", "validated", len(outcome.Validated), "rejected", len(outcome.Rejections))
	c.JSON(http.StatusOK, outcome)
}
