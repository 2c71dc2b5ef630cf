package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dcfassist/internal/model"
)

// SensitivityRequest 敏感性分析请求
type SensitivityRequest struct {
	ModelData model.ModelData `json:"modelData"`
	Variable  string          `json:"variable"` // 如 "WACC"
	Range     string          `json:"range"`    // 如 "8%-12%"
}

// Sensitivity 解释单个变量变化对估值的影响
// POST /api/sensitivity
func (h *Handler) Sensitivity(c *gin.Context) {
	var req SensitivityRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ModelData) == 0 || strings.TrimSpace(req.Variable) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Variable and model data required"})
		return
	}

	analysis, err := h.assistant.Sensitivity(c.Request.Context(), req.ModelData, req.Variable, req.Range)
	if err != nil {
		h.llmError(c, "Failed to run sensitivity analysis", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}
