package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dcfassist/internal/session"
)

// SessionResponse 会话元信息
type SessionResponse struct {
	SessionID    string    `json:"sessionId"`
	Filename     string    `json:"filename"`
	Summary      string    `json:"summary"`
	ChunkCount   int       `json:"chunkCount"`
	Searchable   bool      `json:"searchable"` // 是否已生成向量
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// GetSession 查询会话
// GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		SessionID:    sess.ID,
		Filename:     sess.Filename,
		Summary:      sess.Summary,
		ChunkCount:   sess.ChunkCount(),
		Searchable:   len(sess.Index.Vectors) > 0,
		CreatedAt:    sess.CreatedAt,
		LastAccessed: sess.LastAccessed,
	})
}

// DeleteSession 删除会话
// DELETE /api/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		h.sessionError(c, err)
		return
	}
	h.logger.Info("session deleted", "session", session.ShortID(id))
	c.Status(http.StatusNoContent)
}

func (h *Handler) sessionError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
		return
	}
	h.logger.Error("session store failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Session store unavailable"})
}
