package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"dcfassist/internal/action"
	"dcfassist/internal/model"
	"dcfassist/internal/workbook"
)

const defaultExportName = "dcf-model.xlsx"

// ExportRequest 导出请求
type ExportRequest struct {
	ModelData model.ModelData `json:"modelData"`
	Actions   json.RawMessage `json:"actions"`  // 可选，待预览的动作
	Apply     bool            `json:"apply"`    // 是否把动作写入目标单元格
	Filename  string          `json:"filename"` // 可选，下载文件名
}

// Export 导出模型工作簿，动作先经过校验
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ModelData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No model data provided"})
		return
	}

	var (
		actions  []action.Action
		rejected []string
	)
	if len(req.Actions) > 0 && string(req.Actions) != "null" {
		outcome, err := h.validator.ValidateJSON(req.Actions)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "actions must be an array"})
			return
		}
		actions, rejected = outcome.Validated, outcome.Errors()
	}

	file, skipped, err := workbook.Export(req.ModelData, actions, workbook.Options{Apply: req.Apply})
	if err != nil {
		h.logger.Error("export workbook failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export workbook: " + err.Error()})
		return
	}
	defer file.Close()

	filename := exportFilename(req.Filename)
	h.logger.Info("workbook exported",
		"file", filename,
		"actions", len(actions),
		"rejected", len(rejected),
		"skipped", len(skipped),
		"applied", req.Apply,
	)

	c.Header("Content-Disposition", buildExportContentDisposition(filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("X-Rejected-Actions", fmt.Sprintf("%d", len(rejected)+len(skipped)))
	if err := file.Write(c.Writer); err != nil {
		h.logger.Error("write workbook failed", "file", filename, "error", err)
	}
}

// exportFilename 规范下载文件名，保证 .xlsx 后缀
func exportFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return defaultExportName
	}
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
	}
	return name
}

// buildExportContentDisposition 生成兼容非 ASCII 文件名的 Content-Disposition
func buildExportContentDisposition(filename string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, url.PathEscape(filename))
}
