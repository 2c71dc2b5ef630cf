package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dcfassist/internal/assistant"
	"dcfassist/internal/llm"
	"dcfassist/internal/model"
	"dcfassist/internal/session"
)

// ChatRequest 对话请求
type ChatRequest struct {
	Message   string          `json:"message"`
	ModelData model.ModelData `json:"modelData"`
	History   []llm.Message   `json:"history"`
	SessionID string          `json:"sessionId"` // 可选，用于检索文档片段
}

// Chat 基于当前模型回答问题，并返回校验后的编辑动作
// POST /api/chat
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" || len(req.ModelData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message and model data required"})
		return
	}

	ctx := c.Request.Context()
	var excerpts []string
	if req.SessionID != "" {
		// 会话失效时仍然继续对话，只是没有文档片段
		sess, err := h.sessions.Get(ctx, req.SessionID)
		if err != nil {
			h.logger.Warn("chat session unavailable", "session", session.ShortID(req.SessionID), "error", err)
		} else {
			excerpts = h.assistant.RelevantExcerpts(ctx, &sess.Index, req.Message)
		}
	}

	result, err := h.assistant.Chat(ctx, assistant.ChatRequest{
		Message:   req.Message,
		ModelData: req.ModelData,
		History:   req.History,
		Excerpts:  excerpts,
	})
	if err != nil {
		h.llmError(c, "Failed to process chat", err)
		return
	}

	h.logger.Info("chat answered",
		"excerpts", len(excerpts),
		"actions", len(result.Actions),
		"rejected", len(result.ActionErrors),
	)
	c.JSON(http.StatusOK, result)
}
