package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dcfassist/internal/model"
	"dcfassist/internal/modelcheck"
)

// CheckRequest 模型检查请求
type CheckRequest struct {
	ModelData model.ModelData `json:"modelData"`
}

// CheckResponse 模型检查结果
type CheckResponse struct {
	Errors []modelcheck.Issue `json:"errors"`
}

// CheckErrors 检查模型的结构、公式与跨表引用
// POST /api/check-errors
func (h *Handler) CheckErrors(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ModelData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No model data provided"})
		return
	}

	issues := h.checker.Check(c.Request.Context(), req.ModelData)
	c.JSON(http.StatusOK, CheckResponse{Errors: issues})
}
