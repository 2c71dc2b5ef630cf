package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"dcfassist/internal/document"
	"dcfassist/internal/model"
	"dcfassist/internal/session"
)

// UploadResponse 上传响应
type UploadResponse struct {
	SessionID  string          `json:"sessionId"`
	Summary    string          `json:"summary"`
	ChunkCount int             `json:"chunkCount"`
	ModelData  model.ModelData `json:"modelData"` // 生成的三表模型
}

// UploadPDF 上传 PDF，生成模型与摘要并建立会话
// POST /api/upload-pdf
func (h *Handler) UploadPDF(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "PDF file is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF file uploaded"})
		return
	}
	if !document.IsPDFName(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	ctx := c.Request.Context()
	text, err := h.extractor.Extract(ctx, content)
	if err != nil {
		h.logger.Warn("pdf extraction failed", "file", fileHeader.Filename, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to process PDF: " + err.Error()})
		return
	}
	if text == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to process PDF: " + document.ErrEmptyDocument.Error()})
		return
	}

	sess := h.assistant.IngestDocument(ctx, fileHeader.Filename, text)
	id, err := h.sessions.Create(ctx, sess)
	if err != nil {
		h.logger.Error("create session failed", "file", fileHeader.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store session"})
		return
	}

	h.logger.Info("pdf processed",
		"session", session.ShortID(id),
		"file", fileHeader.Filename,
		"chars", len([]rune(text)),
		"chunks", sess.ChunkCount(),
	)

	c.JSON(http.StatusOK, UploadResponse{
		SessionID:  id,
		Summary:    sess.Summary,
		ChunkCount: sess.ChunkCount(),
		ModelData:  sess.ModelData,
	})
}
